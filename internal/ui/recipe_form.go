package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ratemyrecipe/internal/collection"
	"ratemyrecipe/internal/model"
	"ratemyrecipe/internal/util"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldCategory
	fieldCookTime
	fieldServings
	fieldDifficulty
	fieldIngredients
	fieldInstructions
	fieldCount
)

var formLabels = [fieldCount]string{
	fieldTitle:        "Title *",
	fieldDescription:  "Description",
	fieldCategory:     "Category *",
	fieldCookTime:     "Cook time (45, 1h30m, 1:30)",
	fieldServings:     "Servings",
	fieldDifficulty:   "Difficulty (easy, medium, hard)",
	fieldIngredients:  "Ingredients (separate with ;)",
	fieldInstructions: "Instructions (separate steps with |)",
}

// RecipeFormModel is the create-recipe form.
type RecipeFormModel struct {
	backend      Backend
	auth         collection.AuthContext
	keys         FormKeyMap
	focusedField int
	inputs       []textinput.Model
	error        string
}

// NewRecipeFormModel creates an empty form. category preselects the
// category field unless it is "all".
func NewRecipeFormModel(backend Backend, auth collection.AuthContext, category model.Category) *RecipeFormModel {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 200
	}

	inputs[fieldTitle].Placeholder = "Pizza Margherita"
	inputs[fieldTitle].CharLimit = 100
	inputs[fieldTitle].Focus()

	inputs[fieldDescription].Placeholder = "A short description"

	names := make([]string, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		names = append(names, string(c))
	}
	inputs[fieldCategory].Placeholder = strings.Join(names, ", ")
	if category != model.CategoryAll && category.Valid() {
		inputs[fieldCategory].SetValue(string(category))
	}

	inputs[fieldCookTime].Placeholder = "30"
	inputs[fieldCookTime].CharLimit = 10
	inputs[fieldServings].Placeholder = "4"
	inputs[fieldServings].CharLimit = 4
	inputs[fieldDifficulty].Placeholder = string(model.DefaultDifficulty)
	inputs[fieldDifficulty].CharLimit = 10

	inputs[fieldIngredients].Placeholder = "200g flour; 1 egg; pinch of salt"
	inputs[fieldIngredients].CharLimit = 2000
	inputs[fieldInstructions].Placeholder = "Mix | Knead | Bake for 20 minutes"
	inputs[fieldInstructions].CharLimit = 4000

	return &RecipeFormModel{
		backend: backend,
		auth:    auth,
		keys:    DefaultFormKeyMap(),
		inputs:  inputs,
	}
}

// Update handles input.
func (m RecipeFormModel) Update(msg tea.Msg) (RecipeFormModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Cancel):
			return m, func() tea.Msg {
				return model.FormCancelledMsg{}
			}
		case key.Matches(keyMsg, m.keys.Save):
			return m, m.save()
		case key.Matches(keyMsg, m.keys.NextField):
			m.nextField()
			return m, nil
		case key.Matches(keyMsg, m.keys.PrevField):
			m.prevField()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
	return m, cmd
}

// SetError shows err under the fields.
func (m *RecipeFormModel) SetError(err error) {
	if err == nil {
		m.error = ""
		return
	}
	m.error = err.Error()
}

// View renders the form.
func (m *RecipeFormModel) View(width, height int) string {
	fields := make([]string, 0, fieldCount+2)
	for i := range m.inputs {
		fields = append(fields, renderFormField(formLabels[i], m.inputs[i], m.focusedField == i))
	}

	if m.error != "" {
		fields = append(fields, "", ErrorStyle.Render(m.error))
	}

	return PanelStyle.
		Width(width - 4).
		Height(height - 4).
		Render(strings.Join(fields, "\n"))
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	l := HelpDescStyle.Render(label)
	if focused {
		l = LabelStyle.Render(label)
	}
	return l + "\n" + input.View()
}

func (m *RecipeFormModel) nextField() {
	m.inputs[m.focusedField].Blur()
	m.focusedField = (m.focusedField + 1) % len(m.inputs)
	m.inputs[m.focusedField].Focus()
}

func (m *RecipeFormModel) prevField() {
	m.inputs[m.focusedField].Blur()
	m.focusedField--
	if m.focusedField < 0 {
		m.focusedField = len(m.inputs) - 1
	}
	m.inputs[m.focusedField].Focus()
}

func (m *RecipeFormModel) value(field int) string {
	return strings.TrimSpace(m.inputs[field].Value())
}

// recipe parses and validates the fields.
func (m *RecipeFormModel) recipe() (model.NewRecipe, error) {
	r := model.NewRecipe{
		Title:        m.value(fieldTitle),
		Description:  m.value(fieldDescription),
		Ingredients:  util.SplitList(m.inputs[fieldIngredients].Value(), ";"),
		Instructions: util.SplitList(m.inputs[fieldInstructions].Value(), "|"),
	}

	if s := m.value(fieldCategory); s != "" {
		c, err := model.ParseCategory(s)
		if err != nil {
			return r, err
		}
		r.Category = c
	}

	minutes, err := util.ParseMinutes(m.value(fieldCookTime))
	if err != nil {
		return r, err
	}
	r.CookTimeMinutes = minutes

	if s := m.value(fieldServings); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return r, fmt.Errorf("servings must be a number")
		}
		r.Servings = n
	}

	d, err := model.ParseDifficulty(m.value(fieldDifficulty))
	if err != nil {
		return r, err
	}
	r.Difficulty = d

	if err := model.ValidateNewRecipe(r); err != nil {
		return r, err
	}
	return r, nil
}

func (m *RecipeFormModel) save() tea.Cmd {
	r, err := m.recipe()
	if err != nil {
		m.error = err.Error()
		return nil
	}
	m.error = ""

	backend := m.backend
	auth := m.auth
	return func() tea.Msg {
		if backend == nil {
			return model.ErrorMsg{Err: errOffline}
		}
		credential, ok := credentialOf(auth)
		if !ok {
			return model.ErrorMsg{Err: collection.ErrUnauthenticated}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		id, err := backend.CreateRecipe(ctx, credential, r)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to create recipe: %w", err)}
		}
		return model.RecipeCreatedMsg{ID: id, Title: r.Title}
	}
}

func credentialOf(auth collection.AuthContext) (string, bool) {
	if auth == nil {
		return "", false
	}
	return auth.Credential()
}
