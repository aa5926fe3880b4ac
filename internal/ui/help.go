package ui

import (
	"strings"

	"ratemyrecipe/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(keys KeyMap, formKeys FormKeyMap, screen model.Screen, mode model.Mode, searching bool, width int) string {
	if mode == model.ModeInsert {
		return renderHelpLine([]string{
			bindingHelp(formKeys.NextField),
			bindingHelp(formKeys.PrevField),
			bindingHelp(formKeys.Save),
			bindingHelp(formKeys.Cancel),
		}, width)
	}
	if searching {
		return renderHelpLine([]string{
			helpKey("type", "filter"),
			helpKey("enter", "keep"),
			helpKey("esc", "clear"),
		}, width)
	}

	switch screen {
	case model.ScreenRecipes:
		return renderHelpLine([]string{
			helpKey("j/k", "navigate"),
			bindingHelp(keys.Search),
			helpKey("c/C/0", "category"),
			bindingHelp(keys.FavoritesOnly),
			bindingHelp(keys.Toggle),
			bindingHelp(keys.Open),
			bindingHelp(keys.Add),
			bindingHelp(keys.Reload),
			bindingHelp(keys.Undo),
			bindingHelp(keys.Help),
		}, width)
	case model.ScreenRecipeDetail:
		return renderHelpLine([]string{
			bindingHelp(keys.Back),
			helpKey("j/k", "scroll"),
			bindingHelp(keys.Favorite),
			bindingHelp(keys.Rate),
			bindingHelp(keys.Image),
		}, width)
	default:
		return renderHelpLine([]string{
			helpKey("j/k", "navigate"),
			helpKey("h/l", "back/select"),
			bindingHelp(keys.Quit),
		}, width)
	}
}

func bindingHelp(b key.Binding) string {
	h := b.Help()
	return helpKey(h.Key, h.Desc)
}

func helpKey(k, desc string) string {
	return HelpKeyStyle.Render(k) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(items []string, width int) string {
	line := strings.Join(items, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(keys KeyMap, width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]key.Binding{
			keys.Down, keys.Up, keys.Open, keys.Back,
			keys.Top, keys.Bottom, keys.HalfPageDown, keys.HalfPageUp,
			keys.NextColumn, keys.PrevColumn, keys.HideColumn, keys.ShowColumns,
			keys.Help, keys.Quit,
		}),
		titleSection("Recipes"),
		helpSection([]key.Binding{
			keys.Search, keys.NextCategory, keys.PrevCategory, keys.AllCategories,
			keys.FavoritesOnly, keys.Toggle, keys.Undo, keys.Redo,
			keys.Add, keys.Reload,
		}),
		titleSection("Recipe Detail"),
		helpSection([]key.Binding{
			keys.Favorite, keys.Rate, keys.Image, keys.Back,
		}),
		titleSection("New Recipe Form"),
		helpSection([]key.Binding{
			DefaultFormKeyMap().NextField,
			DefaultFormKeyMap().PrevField,
			DefaultFormKeyMap().Save,
			DefaultFormKeyMap().Cancel,
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(bindings []key.Binding) string {
	lines := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, "  "+HelpKeyStyle.Render(h.Key)+" - "+HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(lines, "\n")
}
