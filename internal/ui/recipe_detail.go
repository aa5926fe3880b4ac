package ui

import (
	"fmt"
	"strings"

	"ratemyrecipe/internal/model"
	"ratemyrecipe/internal/util"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// RecipeDetailModel is the recipe detail screen: the recipe as markdown in a
// scrollable viewport.
type RecipeDetailModel struct {
	recipe   model.Recipe
	favorite bool
	image    string

	viewport viewport.Model
	renderer *glamour.TermRenderer
	wrap     int
}

// NewRecipeDetailModel creates the detail screen for r.
func NewRecipeDetailModel(r model.Recipe, favorite bool) *RecipeDetailModel {
	return &RecipeDetailModel{
		recipe:   r,
		favorite: favorite,
		viewport: viewport.New(80, 20),
	}
}

// Recipe returns the recipe on screen.
func (m *RecipeDetailModel) Recipe() model.Recipe {
	return m.recipe
}

// SetRecipe swaps in a reloaded copy of the recipe.
func (m *RecipeDetailModel) SetRecipe(r model.Recipe, favorite bool) {
	m.recipe = r
	m.favorite = favorite
	m.refresh()
}

// SetFavorite updates the heart after a toggle.
func (m *RecipeDetailModel) SetFavorite(on bool) {
	if m.favorite == on {
		return
	}
	m.favorite = on
	m.refresh()
}

// SetImage attaches a rendered image preview.
func (m *RecipeDetailModel) SetImage(art string) {
	m.image = art
	m.refresh()
}

// Update scrolls the viewport.
func (m *RecipeDetailModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// View renders the recipe detail.
func (m *RecipeDetailModel) View(width, height int) string {
	w := max(20, width-4)
	h := max(3, height-2)
	if m.viewport.Width != w || m.viewport.Height != h || m.renderer == nil {
		m.viewport.Width = w
		m.viewport.Height = h
		m.refresh()
	}

	scroll := HelpDescStyle.Render(fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100))
	header := lipgloss.NewStyle().
		Width(w).
		Align(lipgloss.Right).
		Render(scroll)

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View())
}

func (m *RecipeDetailModel) refresh() {
	wrap := max(20, m.viewport.Width-2)
	if m.renderer == nil || m.wrap != wrap {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err == nil {
			m.renderer = r
			m.wrap = wrap
		}
	}

	doc := recipeMarkdown(m.recipe, m.favorite)
	content := doc
	if m.renderer != nil {
		if out, err := m.renderer.Render(doc); err == nil {
			content = out
		}
	}
	if m.image != "" {
		content = m.image + "\n" + content
	}
	m.viewport.SetContent(content)
}

// recipeMarkdown renders r as a markdown document.
func recipeMarkdown(r model.Recipe, favorite bool) string {
	var b strings.Builder

	title := r.Title
	if favorite {
		title += " ♥"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Description)
	}

	meta := []string{
		fmt.Sprintf("**Category** %s", r.Category.Label()),
		fmt.Sprintf("**Rating** %s %s", util.FormatRatingStars(r.Rating), ratingCountText(r)),
		fmt.Sprintf("**Time** %s", util.FormatCookTime(r.CookTimeMinutes)),
		fmt.Sprintf("**Serves** %s", util.FormatServings(r.Servings)),
		fmt.Sprintf("**Difficulty** %s", r.Difficulty.Label()),
	}
	if r.Author != "" {
		meta = append(meta, fmt.Sprintf("**By** %s", r.Author))
	}
	for _, line := range meta {
		fmt.Fprintf(&b, "- %s\n", line)
	}

	b.WriteString("\n## Ingredients\n\n")
	if len(r.Ingredients) == 0 {
		b.WriteString("_No ingredients listed._\n")
	}
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&b, "- %s\n", ing)
	}

	b.WriteString("\n## Instructions\n\n")
	if len(r.Instructions) == 0 {
		b.WriteString("_No instructions listed._\n")
	}
	for i, step := range r.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}

func ratingCountText(r model.Recipe) string {
	switch {
	case r.RatingCount == 1:
		return fmt.Sprintf("(%s, 1 rating)", util.FormatRating(r.Rating, 1))
	case r.RatingCount > 1:
		return fmt.Sprintf("(%s, %d ratings)", util.FormatRating(r.Rating, r.RatingCount), r.RatingCount)
	case r.Rating > 0:
		return fmt.Sprintf("(%s)", util.FormatRating(r.Rating, 0))
	default:
		return "(not rated yet)"
	}
}
