package ui

import (
	"fmt"
	"strings"

	"ratemyrecipe/internal/collection"
	"ratemyrecipe/internal/model"
	"ratemyrecipe/internal/util"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type recipeColumn struct {
	key    string
	label  string
	width  int
	hidden bool
}

// RecipesModel is the recipe list screen. Rows are always the view's
// VisibleRecipes; the model only adds a cursor and column layout.
type RecipesModel struct {
	view   *collection.View
	rows   []model.Recipe
	cursor int
	offset int

	viewportHeight int

	columns      []recipeColumn
	activeColumn int

	search    textinput.Model
	searching bool
	spinner   spinner.Model
}

// NewRecipesModel creates the list screen over view.
func NewRecipesModel(view *collection.View) *RecipesModel {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search title or description"
	search.CharLimit = 80
	search.SetValue(view.Filter().SearchText)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	m := &RecipesModel{
		view:    view,
		search:  search,
		spinner: sp,
		columns: []recipeColumn{
			{key: "fav", label: "♥", width: 2},
			{key: "title", label: "title", width: 28},
			{key: "category", label: "category", width: 12},
			{key: "rating", label: "rating", width: 8},
			{key: "time", label: "time", width: 8},
			{key: "servings", label: "servings", width: 11},
			{key: "difficulty", label: "difficulty", width: 10},
			{key: "author", label: "author", width: 12},
		},
		activeColumn: 1,
	}
	m.Refresh()
	return m
}

// Refresh re-reads the visible list, keeping the cursor on the same recipe
// when it is still visible.
func (m *RecipesModel) Refresh() {
	var selected int64
	if r, ok := m.Selected(); ok {
		selected = r.ID
	}
	m.rows = m.view.VisibleRecipes()
	if selected != 0 {
		for i, r := range m.rows {
			if r.ID == selected {
				m.cursor = i
				break
			}
		}
	}
	m.clampCursor()
}

// Selected returns the recipe under the cursor.
func (m *RecipesModel) Selected() (model.Recipe, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return model.Recipe{}, false
	}
	return m.rows[m.cursor], true
}

func (m *RecipesModel) ApplyPrefs(prefs TablePrefs) {
	hidden := make(map[string]bool, len(prefs.HiddenColumns))
	for _, c := range prefs.HiddenColumns {
		hidden[c] = true
	}
	for i := range m.columns {
		m.columns[i].hidden = hidden[m.columns[i].key]
	}
	if prefs.ActiveColumn != "" {
		for i, c := range m.columns {
			if c.key == prefs.ActiveColumn {
				m.activeColumn = i
				break
			}
		}
	}
	m.ensureVisibleActiveColumn()
}

func (m *RecipesModel) Prefs() TablePrefs {
	var hidden []string
	for _, c := range m.columns {
		if c.hidden {
			hidden = append(hidden, c.key)
		}
	}
	return TablePrefs{
		HiddenColumns: hidden,
		ActiveColumn:  m.columns[m.activeColumn].key,
	}
}

func (m *RecipesModel) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
	if vh := m.pageHeight(); m.cursor >= m.offset+vh {
		m.offset = m.cursor - vh + 1
	}
}

func (m *RecipesModel) pageHeight() int {
	if m.viewportHeight <= 0 {
		return 10
	}
	return m.viewportHeight
}

// Filters

// StartSearch focuses the search field.
func (m *RecipesModel) StartSearch() tea.Cmd {
	m.searching = true
	return m.search.Focus()
}

// Searching reports whether keystrokes go to the search field.
func (m *RecipesModel) Searching() bool {
	return m.searching
}

// UpdateSearch feeds a keystroke to the search field. The filter follows the
// field on every keystroke; enter keeps the text, esc clears it.
func (m *RecipesModel) UpdateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.view.SetSearchText("")
		m.Refresh()
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.view.SetSearchText(m.search.Value())
	m.Refresh()
	return cmd
}

// CycleCategory moves the category filter forward (delta > 0) or back.
func (m *RecipesModel) CycleCategory(delta int) model.Category {
	c := m.view.Filter().Category
	if delta < 0 {
		c = c.Prev()
	} else {
		c = c.Next()
	}
	m.view.SetCategory(c)
	m.Refresh()
	return c
}

// ResetCategory selects all categories.
func (m *RecipesModel) ResetCategory() {
	m.view.SetCategory(model.CategoryAll)
	m.Refresh()
}

// ToggleFavoritesOnly flips the favorites-only flag and returns the new value.
func (m *RecipesModel) ToggleFavoritesOnly() bool {
	on := !m.view.Filter().FavoritesOnly
	m.view.SetFavoritesOnly(on)
	m.Refresh()
	return on
}

// Spinner

func (m *RecipesModel) Tick() tea.Cmd {
	return m.spinner.Tick
}

func (m *RecipesModel) UpdateSpinner(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return cmd
}

// Columns

func (m *RecipesModel) visibleColumnIndexes() []int {
	var idxs []int
	for i, c := range m.columns {
		if !c.hidden {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (m *RecipesModel) ensureVisibleActiveColumn() {
	if !m.columns[m.activeColumn].hidden {
		return
	}
	for i := range m.columns {
		if !m.columns[i].hidden {
			m.activeColumn = i
			return
		}
	}
	m.columns[0].hidden = false
	m.activeColumn = 0
}

func (m *RecipesModel) NextColumn() {
	start := m.activeColumn
	for {
		m.activeColumn = (m.activeColumn + 1) % len(m.columns)
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *RecipesModel) PrevColumn() {
	start := m.activeColumn
	for {
		m.activeColumn--
		if m.activeColumn < 0 {
			m.activeColumn = len(m.columns) - 1
		}
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *RecipesModel) HideActiveColumn() bool {
	if len(m.visibleColumnIndexes()) <= 1 {
		return false
	}
	m.columns[m.activeColumn].hidden = true
	m.ensureVisibleActiveColumn()
	return true
}

func (m *RecipesModel) ShowAllColumns() {
	for i := range m.columns {
		m.columns[i].hidden = false
	}
}

func (m *RecipesModel) TableMeta() string {
	return "col " + strings.ToUpper(m.columns[m.activeColumn].label)
}

// filterSummary describes the active filter for the status bar.
func (m *RecipesModel) filterSummary() string {
	f := m.view.Filter()
	counts := m.view.CategoryCounts()

	parts := []string{fmt.Sprintf("%s (%d)", f.Category.Label(), counts[f.Category])}
	if f.FavoritesOnly {
		parts = append(parts, "♥ only")
	}
	if f.SearchText != "" {
		parts = append(parts, fmt.Sprintf("search %q", f.SearchText))
	}
	return strings.Join(parts, "  ·  ")
}

func (m *RecipesModel) cell(r model.Recipe, col recipeColumn) string {
	switch col.key {
	case "fav":
		if m.view.IsFavorite(r.ID) {
			return HeartStyle.Render("♥")
		}
		return " "
	case "title":
		return util.TruncateString(r.Title, col.width)
	case "category":
		return r.Category.Label()
	case "rating":
		s := util.FormatRatingWithStar(r.Rating, r.RatingCount)
		if s == "—" {
			return s
		}
		return RatingStyle.Render(s)
	case "time":
		return util.FormatCookTime(r.CookTimeMinutes)
	case "servings":
		return util.FormatServings(r.Servings)
	case "difficulty":
		return r.Difficulty.Label()
	case "author":
		if r.Author == "" {
			return "—"
		}
		return util.TruncateString(r.Author, col.width)
	}
	return ""
}

// View renders the recipe list.
func (m *RecipesModel) View(width, height int) string {
	var top []string
	if m.searching || m.search.Value() != "" {
		top = append(top, SearchStyle.Render(m.search.View()))
	}
	height -= len(top)

	body := m.renderBody(width, height)
	return lipgloss.JoinVertical(lipgloss.Left, append(top, body)...)
}

func (m *RecipesModel) renderBody(width, height int) string {
	switch m.view.State() {
	case collection.StateUnloaded, collection.StateLoading:
		return EmptyStateStyle.Width(width).Height(height).
			Render(m.spinner.View() + " Loading recipes…")
	case collection.StateLoadFailed:
		msg := "Could not load recipes."
		if err := m.view.Err(); err != nil {
			msg = err.Error()
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			ErrorStyle.Width(width).Render(msg),
			EmptyStateStyle.Width(width).Render("Press  r  to retry."),
		)
	}

	if len(m.rows) == 0 {
		return EmptyStateStyle.Width(width).Height(height).Render(m.emptyMessage())
	}

	visible := m.visibleColumnIndexes()
	widths := make([]int, 0, len(visible))
	headers := make([]string, 0, len(visible))
	totalFixed := 0
	for _, idx := range visible {
		col := m.columns[idx]
		label := formatHeaderLabel(col.label)
		if idx == m.activeColumn {
			label = renderActiveHeaderLabel(label)
		}
		cellWidth := max(col.width+2, lipgloss.Width(label)+2)
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}
	if len(widths) > 0 {
		sepTotal := (len(widths) - 1) * tableSeparatorWidth()
		extra := width - totalFixed - sepTotal - 2
		if extra > 0 {
			widths[len(widths)-1] += extra
		}
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)
	divider := renderTableDivider(widths)

	visibleHeight := max(1, height-3)
	m.viewportHeight = visibleHeight
	m.clampCursor()

	var rows []string
	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		r := m.rows[i]
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		cells := make([]string, 0, len(visible))
		for _, idx := range visible {
			cells = append(cells, m.cell(r, m.columns[idx]))
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	rowPos := fmt.Sprintf("  ·  row %d/%d", m.cursor+1, len(m.rows))
	status := StatusBarStyle.Render(fmt.Sprintf("%d/%d recipes%s  ·  %s  ·  %s",
		len(m.rows), m.view.Count(), rowPos, m.filterSummary(), m.TableMeta()))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		divider,
		strings.Join(rows, "\n"),
	)
	spacerHeight := max(0, height-lipgloss.Height(content)-lipgloss.Height(status))
	spacer := lipgloss.NewStyle().Height(spacerHeight).Render("")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		spacer,
		status,
	)
}

func (m *RecipesModel) emptyMessage() string {
	f := m.view.Filter()
	switch {
	case m.view.Count() == 0:
		return "No recipes yet.\nPress  a  to create the first one!"
	case f.FavoritesOnly && len(m.view.Favorites()) == 0:
		return "No favorites yet.\nPress  space  on a recipe to add one, or  f  to show all."
	default:
		return "No recipes match the current filter.\n" + m.filterSummary()
	}
}

// MoveDown moves the cursor down.
func (m *RecipesModel) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
		if m.cursor >= m.offset+m.pageHeight() {
			m.offset++
		}
	}
}

// MoveUp moves the cursor up.
func (m *RecipesModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		if m.cursor < m.offset {
			m.offset--
		}
	}
}

// JumpToTop jumps to the first item.
func (m *RecipesModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last item.
func (m *RecipesModel) JumpToBottom() {
	if len(m.rows) > 0 {
		m.cursor = len(m.rows) - 1
		if vh := m.pageHeight(); m.cursor >= vh {
			m.offset = m.cursor - vh + 1
		}
	}
}

// HalfPageDown moves down half a page.
func (m *RecipesModel) HalfPageDown(pageSize int) {
	m.cursor = min(m.cursor+pageSize/2, len(m.rows)-1)
	m.clampCursor()
}

// HalfPageUp moves up half a page.
func (m *RecipesModel) HalfPageUp(pageSize int) {
	m.cursor = max(m.cursor-pageSize/2, 0)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
}
