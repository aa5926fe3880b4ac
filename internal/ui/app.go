package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"ratemyrecipe/internal/collection"
	"ratemyrecipe/internal/model"
	"ratemyrecipe/internal/util"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

var errOffline = errors.New("not available offline; start without --offline to reach the backend")

// Backend is the part of the remote API the screens call directly. It is nil
// in offline mode.
type Backend interface {
	CreateRecipe(ctx context.Context, credential string, r model.NewRecipe) (int64, error)
	RateRecipe(ctx context.Context, credential string, r model.NewRating) error
	FetchImage(ctx context.Context, url string) (image.Image, error)
	GetRecipe(ctx context.Context, id int64) (model.Recipe, error)
}

// Options wires the root model.
type Options struct {
	View    *collection.View
	Backend Backend
	Auth    collection.AuthContext
	// Cache stores every successful load for offline use. nil disables it.
	Cache    func([]model.Recipe) error
	PrefsDir string
	Timeout  time.Duration
	Logger   *zap.Logger
	// SnapshotTime is when the offline snapshot was saved, shown in the header.
	SnapshotTime time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	view     *collection.View
	backend  Backend
	auth     collection.AuthContext
	cache    func([]model.Recipe) error
	prefsDir string
	timeout  time.Duration
	log      *zap.Logger
	snapshot time.Time
	now      func() time.Time
	// signedIn is refreshed when credentials change or a load finishes so
	// rendering never reads the credential store.
	signedIn bool

	screen model.Screen
	mode   model.Mode
	gState GState

	width  int
	height int

	error         string
	info          string
	showingHelp   bool
	reloadPending bool

	// Screen models
	recipes *RecipesModel
	detail  *RecipeDetailModel
	form    *RecipeFormModel

	keys      KeyMap
	formKeys  FormKeyMap
	prefs     UIPreferences
	undoStack []model.FavoriteChange
	redoStack []model.FavoriteChange
}

// New creates a new root model. Saved preferences are applied to the view's
// filter.
func New(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	prefs := loadUIPreferences(opts.PrefsDir)
	opts.View.SetCategory(prefs.Category)
	opts.View.SetFavoritesOnly(prefs.FavoritesOnly)

	recipes := NewRecipesModel(opts.View)
	recipes.ApplyPrefs(prefs.Recipes)

	return Model{
		view:     opts.View,
		backend:  opts.Backend,
		auth:     opts.Auth,
		cache:    opts.Cache,
		prefsDir: opts.PrefsDir,
		timeout:  opts.Timeout,
		log:      log.Named("ui"),
		snapshot: opts.SnapshotTime,
		now:      time.Now,
		signedIn: opts.View.SignedIn(),
		screen:   model.ScreenRecipes,
		mode:     model.ModeNav,
		gState:   GStateIdle,
		recipes:  recipes,
		keys:     DefaultKeyMap(),
		formKeys: DefaultFormKeyMap(),
		prefs:    prefs,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.recipes.Tick(), m.loadCmd())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if st := m.view.State(); st == collection.StateLoading || st == collection.StateUnloaded {
			return m, m.recipes.UpdateSpinner(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.mode == model.ModeInsert {
			return m.handleInsertMode(msg)
		}

		if m.screen == model.ScreenRecipes && m.recipes.Searching() {
			cmd := m.recipes.UpdateSearch(msg)
			return m, cmd
		}

		if key.Matches(msg, m.keys.Help) {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}

		return m.handleNavMode(msg)

	case model.RecipesLoadedMsg:
		return m, m.applyLoaded(msg)

	case model.FavoriteSyncedMsg:
		m.applyFavoriteSynced(msg)
		return m, nil

	case model.RatingSavedMsg:
		m.info = fmt.Sprintf("Rated %d ★", msg.Stars)
		m.error = ""
		return m, m.reloadCmd()

	case model.RecipeCreatedMsg:
		m.mode = model.ModeNav
		m.screen = model.ScreenRecipes
		m.form = nil
		m.info = fmt.Sprintf("Created %q", msg.Title)
		m.error = ""
		return m, m.reloadCmd()

	case model.FormCancelledMsg:
		m.mode = model.ModeNav
		m.screen = model.ScreenRecipes
		m.form = nil
		return m, nil

	case model.CredentialsChangedMsg:
		m.signedIn = m.view.SignedIn()
		m.undoStack = nil
		m.redoStack = nil
		m.info = "Credentials changed, reloading"
		return m, m.reloadCmd()

	case model.ErrorMsg:
		if m.mode == model.ModeInsert && m.form != nil {
			m.form.SetError(msg.Err)
			return m, nil
		}
		m.setError(msg.Err)
		return m, nil

	case model.RecipeFetchedMsg:
		m.applyRecipeFetched(msg)
		return m, nil

	case imageLoadedMsg:
		if m.detail != nil && m.detail.Recipe().ID == msg.recipeID {
			m.detail.SetImage(msg.art)
		}
		return m, nil
	}

	if m.mode == model.ModeInsert {
		return m.handleInsertMode(msg)
	}
	if m.screen == model.ScreenRecipeDetail && m.detail != nil {
		return m, m.detail.Update(msg)
	}
	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.keys, m.width, m.height)
	}

	var banners []string
	if m.error != "" {
		banners = append(banners, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		banners = append(banners, SuccessStyle.Width(m.width).Render(m.info))
	}

	// header (2 lines with border) + footer (2 lines with border) + banners
	contentHeight := max(1, m.height-4-len(banners))

	var content string
	breadcrumb := []string{"Recipes"}
	switch m.screen {
	case model.ScreenRecipes:
		content = m.recipes.View(m.width, contentHeight)
	case model.ScreenRecipeDetail:
		if m.detail != nil {
			breadcrumb = append(breadcrumb, m.detail.Recipe().Title)
			content = m.detail.View(m.width, contentHeight)
		}
	case model.ScreenRecipeForm:
		breadcrumb = append(breadcrumb, "New")
		if m.form != nil {
			content = m.form.View(m.width, contentHeight)
		}
	}

	header := renderHeader(breadcrumb, m.connectionStatus(), m.width)
	footer := RenderHelp(m.keys, m.formKeys, m.screen, m.mode, m.recipes.Searching(), m.width)

	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	parts := append([]string{header}, banners...)
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) connectionStatus() string {
	var parts []string
	if m.backend == nil {
		status := "offline"
		if !m.snapshot.IsZero() {
			status += " (saved " + util.FormatAge(m.snapshot, m.now()) + ")"
		}
		parts = append(parts, status)
	}
	if m.signedIn {
		parts = append(parts, "signed in")
	} else {
		parts = append(parts, "signed out")
	}
	return strings.Join(parts, " · ")
}

func renderHeader(breadcrumbParts []string, status string, width int) string {
	title := HeaderStyle.Render("ratemyrecipe")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb
	right := BreadcrumbStyle.Render(status+"  ·  "+time.Now().Format("Mon 02 Jan")) + "  "

	padding := max(0, width-2-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.info = ""

	// Handle "gg" state machine
	if key.Matches(msg, m.keys.Top) {
		if m.gState == GStateFirstG {
			m.gState = GStateIdle
			if m.screen == model.ScreenRecipes {
				m.recipes.JumpToTop()
			} else if m.detail != nil {
				m.detail.viewport.GotoTop()
			}
			return m, nil
		}
		m.gState = GStateFirstG
		return m, nil
	}
	m.gState = GStateIdle

	switch m.screen {
	case model.ScreenRecipes:
		return m.handleRecipesNav(msg)
	case model.ScreenRecipeDetail:
		return m.handleDetailNav(msg)
	}
	return m, nil
}

func (m *Model) currentTable() tableController {
	if m.screen == model.ScreenRecipes && m.recipes != nil {
		return m.recipes
	}
	return nil
}

func (m Model) handleRecipesNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if t := m.currentTable(); t != nil {
		switch {
		case key.Matches(msg, m.keys.NextColumn):
			t.NextColumn()
			m.persistPrefs()
			return m, nil
		case key.Matches(msg, m.keys.PrevColumn):
			t.PrevColumn()
			m.persistPrefs()
			return m, nil
		case key.Matches(msg, m.keys.HideColumn):
			if t.HideActiveColumn() {
				m.info = "Column hidden"
				m.persistPrefs()
			} else {
				m.info = "Cannot hide last visible column"
			}
			return m, nil
		case key.Matches(msg, m.keys.ShowColumns):
			t.ShowAllColumns()
			m.info = "All columns shown"
			m.persistPrefs()
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.persistPrefs()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		return m, m.recipes.StartSearch()
	case key.Matches(msg, m.keys.NextCategory):
		c := m.recipes.CycleCategory(1)
		m.info = "Category: " + c.Label()
		m.persistPrefs()
	case key.Matches(msg, m.keys.PrevCategory):
		c := m.recipes.CycleCategory(-1)
		m.info = "Category: " + c.Label()
		m.persistPrefs()
	case key.Matches(msg, m.keys.AllCategories):
		m.recipes.ResetCategory()
		m.info = "Category: All"
		m.persistPrefs()
	case key.Matches(msg, m.keys.FavoritesOnly):
		if m.recipes.ToggleFavoritesOnly() {
			m.info = "Showing favorites only"
		} else {
			m.info = "Showing all recipes"
		}
		m.persistPrefs()
	case key.Matches(msg, m.keys.Toggle):
		if r, ok := m.recipes.Selected(); ok {
			return m, m.toggleCmd(r.ID, model.ToggleUser)
		}
	case key.Matches(msg, m.keys.Open):
		if r, ok := m.recipes.Selected(); ok {
			m.detail = NewRecipeDetailModel(r, m.view.IsFavorite(r.ID))
			m.screen = model.ScreenRecipeDetail
			return m, m.fetchRecipeCmd(r.ID)
		}
	case key.Matches(msg, m.keys.Add):
		if m.backend == nil {
			m.setError(errOffline)
			return m, nil
		}
		m.form = NewRecipeFormModel(m.backend, m.auth, m.view.Filter().Category)
		m.mode = model.ModeInsert
		m.screen = model.ScreenRecipeForm
	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadCmd()
	case key.Matches(msg, m.keys.Undo):
		return m, m.undoCmd()
	case key.Matches(msg, m.keys.Redo):
		return m, m.redoCmd()
	case key.Matches(msg, m.keys.Down):
		m.recipes.MoveDown()
	case key.Matches(msg, m.keys.Up):
		m.recipes.MoveUp()
	case key.Matches(msg, m.keys.Bottom):
		m.recipes.JumpToBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.recipes.HalfPageDown(m.height / 2)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.recipes.HalfPageUp(m.height / 2)
	}
	return m, nil
}

func (m Model) handleDetailNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail == nil {
		m.screen = model.ScreenRecipes
		return m, nil
	}
	r := m.detail.Recipe()

	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = model.ScreenRecipes
		m.detail = nil
		return m, nil
	case key.Matches(msg, m.keys.Favorite):
		return m, m.toggleCmd(r.ID, model.ToggleUser)
	case key.Matches(msg, m.keys.Rate):
		stars, _ := strconv.Atoi(msg.String())
		return m, m.rateCmd(r.ID, stars)
	case key.Matches(msg, m.keys.Image):
		if r.ImageURL == "" {
			m.info = "This recipe has no image"
			return m, nil
		}
		if m.backend == nil {
			m.setError(errOffline)
			return m, nil
		}
		m.info = "Loading image…"
		return m, loadImageCmd(m.backend, r, m.width-8)
	}
	return m, m.detail.Update(msg)
}

// handleInsertMode routes input to the form.
func (m Model) handleInsertMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.mode = model.ModeNav
		return m, nil
	}
	newForm, cmd := m.form.Update(msg)
	m.form = &newForm
	return m, cmd
}

func (m *Model) setError(err error) {
	m.error = errorText(err)
	m.log.Debug("error shown", zap.Error(err))
}

func (m *Model) persistPrefs() {
	f := m.view.Filter()
	m.prefs.Recipes = m.recipes.Prefs()
	m.prefs.Category = f.Category
	m.prefs.FavoritesOnly = f.FavoritesOnly
	if err := saveUIPreferences(m.prefsDir, m.prefs); err != nil {
		m.log.Warn("failed to save preferences", zap.Error(err))
	}
}

// afterFavoriteChange redraws everything showing the favorite set.
func (m *Model) afterFavoriteChange() {
	m.recipes.Refresh()
	if m.detail != nil {
		m.detail.SetFavorite(m.view.IsFavorite(m.detail.Recipe().ID))
	}
}

// Commands

func contextWithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d)
}

// loadCmd moves the view to loading and returns the fetch. It returns nil
// when a load is already in flight.
func (m *Model) loadCmd() tea.Cmd {
	if err := m.view.BeginLoad(); err != nil {
		m.reloadPending = true
		return nil
	}
	view := m.view
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := contextWithTimeout(timeout)
		defer cancel()
		snap, err := view.Fetch(ctx)
		return model.RecipesLoadedMsg{Recipes: snap.Recipes, Favorites: snap.Favorites, Err: err}
	}
}

func (m *Model) reloadCmd() tea.Cmd {
	load := m.loadCmd()
	if load == nil {
		m.info = "Already loading"
		return nil
	}
	m.recipes.Refresh()
	return tea.Batch(m.recipes.Tick(), load)
}

func (m *Model) applyLoaded(msg model.RecipesLoadedMsg) tea.Cmd {
	err := m.view.FinishLoad(collection.Snapshot{Recipes: msg.Recipes, Favorites: msg.Favorites}, msg.Err)
	m.recipes.Refresh()
	m.signedIn = m.view.SignedIn()

	var cmds []tea.Cmd
	if err != nil {
		m.setError(err)
	} else {
		m.error = ""
		if m.detail != nil {
			id := m.detail.Recipe().ID
			if r, ok := m.view.Recipe(id); ok {
				m.detail.SetRecipe(r, m.view.IsFavorite(id))
			}
		}
		if m.cache != nil {
			cmds = append(cmds, m.cacheCmd(msg.Recipes))
		}
	}

	if m.reloadPending {
		m.reloadPending = false
		cmds = append(cmds, m.reloadCmd())
	}
	return tea.Batch(cmds...)
}

// fetchRecipeCmd asks the backend for the full record of an opened recipe.
// The list endpoint may return a trimmed record.
func (m *Model) fetchRecipeCmd(id int64) tea.Cmd {
	if m.backend == nil {
		return nil
	}
	backend := m.backend
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := contextWithTimeout(timeout)
		defer cancel()
		r, err := backend.GetRecipe(ctx, id)
		if err != nil {
			return model.RecipeFetchedMsg{Recipe: model.Recipe{ID: id}, Err: err}
		}
		return model.RecipeFetchedMsg{Recipe: r}
	}
}

func (m *Model) applyRecipeFetched(msg model.RecipeFetchedMsg) {
	if msg.Err != nil {
		m.log.Debug("failed to refresh recipe", zap.Int64("recipe_id", msg.Recipe.ID), zap.Error(msg.Err))
		return
	}
	if m.detail == nil || m.detail.Recipe().ID != msg.Recipe.ID {
		return
	}
	m.detail.SetRecipe(msg.Recipe, m.view.IsFavorite(msg.Recipe.ID))
}

func (m *Model) cacheCmd(recipes []model.Recipe) tea.Cmd {
	cache := m.cache
	log := m.log
	return func() tea.Msg {
		if err := cache(recipes); err != nil {
			log.Warn("failed to cache recipes", zap.Error(err))
			return nil
		}
		log.Debug("recipes cached", zap.Int("count", len(recipes)))
		return nil
	}
}

func (m *Model) rateCmd(recipeID int64, stars int) tea.Cmd {
	if m.backend == nil {
		m.setError(errOffline)
		return nil
	}
	credential, ok := credentialOf(m.auth)
	if !ok {
		m.setError(collection.ErrUnauthenticated)
		return nil
	}
	backend := m.backend
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := contextWithTimeout(timeout)
		defer cancel()
		err := backend.RateRecipe(ctx, credential, model.NewRating{RecipeID: recipeID, Stars: stars})
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to rate recipe: %w", err)}
		}
		return model.RatingSavedMsg{RecipeID: recipeID, Stars: stars}
	}
}
