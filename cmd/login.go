package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"ratemyrecipe/internal/auth"
	"ratemyrecipe/internal/model"
	"ratemyrecipe/internal/ui"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var errCancelled = errors.New("cancelled")

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the credential",
	Long: `Sign in to the RateMyRecipe backend. The token is written to
~/.ratemyrecipe/credentials.json (mode 0600); a running browser picks it up
without restarting.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCredentialForm(cmd, false)
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCredentialForm(cmd, true)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

func runCredentialForm(cmd *cobra.Command, signup bool) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.cfg.Offline {
		return errors.New("cannot sign in while offline")
	}

	form, err := runForm(newCredentialForm(signup))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout())
	defer cancel()

	var session model.Session
	if signup {
		session, err = a.client.Signup(ctx, form.username(), form.email(), form.password())
	} else {
		session, err = a.client.Login(ctx, form.username(), form.password())
	}
	if err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}

	if err := a.store.Save(auth.FromSession(session)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", session.Username)
	return nil
}

func runForm(m credentialForm) (credentialForm, error) {
	prog := tea.NewProgram(m, tea.WithAltScreen())
	final, err := prog.Run()
	if err != nil {
		return credentialForm{}, fmt.Errorf("credential form failed: %w", err)
	}
	f, ok := final.(credentialForm)
	if !ok {
		return credentialForm{}, errors.New("unexpected credential form model type")
	}
	if f.cancelled {
		return credentialForm{}, errCancelled
	}
	return f, nil
}

// credentialForm asks for a username and password, plus an email address
// when signing up.
type credentialForm struct {
	signup    bool
	labels    []string
	inputs    []textinput.Model
	focused   int
	error     string
	cancelled bool
	submitted bool
	width     int
	height    int
}

func newCredentialForm(signup bool) credentialForm {
	labels := []string{"Username", "Password"}
	if signup {
		labels = []string{"Username", "Email", "Password"}
	}

	inputs := make([]textinput.Model, len(labels))
	for i, label := range labels {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 120
		in.TextStyle = lipgloss.NewStyle().Foreground(ui.ColorText)
		in.PlaceholderStyle = lipgloss.NewStyle().Foreground(ui.ColorMuted)
		if label == "Password" {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		inputs[i] = in
	}
	if user := os.Getenv("USER"); user != "" {
		inputs[0].Placeholder = user
	}
	inputs[0].Focus()

	return credentialForm{signup: signup, labels: labels, inputs: inputs}
}

func (m credentialForm) Init() tea.Cmd { return textinput.Blink }

func (m credentialForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "tab", "down":
			return m.focus(m.focused + 1), nil
		case "shift+tab", "up":
			return m.focus(m.focused - 1), nil
		case "enter":
			if m.focused < len(m.inputs)-1 {
				return m.focus(m.focused + 1), nil
			}
			if err := m.validate(); err != nil {
				m.error = err.Error()
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m credentialForm) focus(i int) credentialForm {
	n := len(m.inputs)
	m.inputs[m.focused].Blur()
	m.focused = (i%n + n) % n
	m.inputs[m.focused].Focus()
	return m
}

func (m credentialForm) validate() error {
	if m.username() == "" {
		return errors.New("username is required")
	}
	if m.signup && !strings.Contains(m.email(), "@") {
		return errors.New("a valid email is required")
	}
	if m.password() == "" {
		return errors.New("password is required")
	}
	return nil
}

func (m credentialForm) value(label string) string {
	for i, l := range m.labels {
		if l == label {
			return m.inputs[i].Value()
		}
	}
	return ""
}

func (m credentialForm) username() string {
	if v := strings.TrimSpace(m.value("Username")); v != "" {
		return v
	}
	return m.inputs[0].Placeholder
}

func (m credentialForm) email() string    { return strings.TrimSpace(m.value("Email")) }
func (m credentialForm) password() string { return m.value("Password") }

func (m credentialForm) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	height := m.height
	if height <= 0 {
		height = 20
	}

	title := "Sign in"
	if m.signup {
		title = "Create account"
	}

	rows := []string{ui.LabelStyle.Render(title), ""}
	for i, in := range m.inputs {
		label := ui.HelpDescStyle.Render(m.labels[i])
		if i == m.focused {
			label = ui.LabelStyle.Render("› " + m.labels[i])
		}
		rows = append(rows, label, "  "+in.View(), "")
	}
	if m.error != "" {
		rows = append(rows, ui.ErrorStyle.Render(m.error))
	}
	rows = append(rows, ui.HelpKeyStyle.Render("enter")+" "+ui.HelpDescStyle.Render("next/submit")+"  "+
		ui.HelpKeyStyle.Render("tab")+" "+ui.HelpDescStyle.Render("switch field")+"  "+
		ui.HelpKeyStyle.Render("esc")+" "+ui.HelpDescStyle.Render("cancel"))

	card := ui.PanelStyle.Width(min(60, width-4)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
