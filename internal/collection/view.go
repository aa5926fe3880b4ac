// Package collection holds the recipe collection view model: the loaded
// recipe list, the user's favorite set and the active filter, from which the
// visible list is derived.
//
// The visible list is a pure function of (recipes, filter, favorites). Filter
// setters take effect immediately; nothing is cached between reads.
//
// Favorite toggles are two-phase. The local set is updated first, then the
// remote store is called. When the remote call fails the local change is kept
// and a *FavoriteSyncError is returned; the caller chooses whether to Revert
// or Retry.
package collection

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"ratemyrecipe/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State is the load state of a View.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
	StateLoadFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateLoadFailed:
		return "load failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Snapshot is the result of one fetch.
type Snapshot struct {
	Recipes   []model.Recipe
	Favorites []int64
}

// View is the recipe collection view model. It is safe for concurrent use,
// though it is meant to be driven from a single event loop.
type View struct {
	recipes   RecipeSource
	favorites FavoriteStore
	auth      AuthContext
	log       *zap.Logger

	mu     sync.RWMutex
	state  State
	list   []model.Recipe
	index  map[int64]int
	favs   map[int64]struct{}
	filter FilterState
	err    error
	// gen counts finished loads. Toggles carry it so a revert never undoes
	// favorites that a later load replaced.
	gen uint64
}

// Option configures a View.
type Option func(*View)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(v *View) {
		if l != nil {
			v.log = l.Named("collection")
		}
	}
}

// WithFilter sets the initial filter state.
func WithFilter(f FilterState) Option {
	return func(v *View) {
		f.Category = normalizeCategory(f.Category)
		v.filter = f
	}
}

// New creates an unloaded View. auth may be nil, in which case no credential
// is ever available.
func New(recipes RecipeSource, favorites FavoriteStore, auth AuthContext, opts ...Option) *View {
	v := &View{
		recipes:   recipes,
		favorites: favorites,
		auth:      auth,
		log:       zap.NewNop(),
		favs:      make(map[int64]struct{}),
		filter:    DefaultFilter(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load fetches recipes and favorites and replaces the collection. A call made
// while another load is in flight returns ErrLoadInProgress without fetching.
func (v *View) Load(ctx context.Context) error {
	if err := v.BeginLoad(); err != nil {
		return err
	}
	snap, err := v.Fetch(ctx)
	return v.FinishLoad(snap, err)
}

// BeginLoad moves the view to StateLoading.
func (v *View) BeginLoad() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == StateLoading {
		return ErrLoadInProgress
	}
	v.state = StateLoading
	v.err = nil
	return nil
}

// Fetch queries the collaborators without touching view state. Favorites are
// only requested when a credential is available.
func (v *View) Fetch(ctx context.Context) (Snapshot, error) {
	credential, signedIn := v.credential()

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recipes, err := v.recipes.ListRecipes(gctx)
		if err != nil {
			return &LoadError{Stage: StageRecipes, Err: err}
		}
		snap.Recipes = recipes
		return nil
	})
	if signedIn && v.favorites != nil {
		g.Go(func() error {
			ids, err := v.favorites.ListFavorites(gctx, credential)
			if err != nil {
				return &LoadError{Stage: StageFavorites, Err: err}
			}
			snap.Favorites = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	if err := validateRecipes(snap.Recipes); err != nil {
		return Snapshot{}, &LoadError{Stage: StageRecipes, Err: err}
	}
	return snap, nil
}

// FinishLoad applies the outcome of Fetch. On failure the collection is
// emptied and the view moves to StateLoadFailed; the error is returned as a
// *LoadError.
func (v *View) FinishLoad(snap Snapshot, err error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.gen++
	if err != nil {
		var le *LoadError
		if !errors.As(err, &le) {
			err = &LoadError{Stage: StageRecipes, Err: err}
		}
		v.state = StateLoadFailed
		v.list = nil
		v.index = nil
		v.favs = make(map[int64]struct{})
		v.err = err
		v.log.Warn("load failed", zap.Error(err))
		return err
	}

	v.list = append([]model.Recipe(nil), snap.Recipes...)
	v.index = make(map[int64]int, len(v.list))
	for i, r := range v.list {
		v.index[r.ID] = i
	}
	v.favs = make(map[int64]struct{}, len(snap.Favorites))
	for _, id := range snap.Favorites {
		v.favs[id] = struct{}{}
	}
	v.state = StateLoaded
	v.err = nil
	v.log.Debug("collection loaded",
		zap.Int("recipes", len(v.list)),
		zap.Int("favorites", len(v.favs)))
	return nil
}

// SetSearchText replaces the search text. The text is used verbatim.
func (v *View) SetSearchText(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.SearchText = text
}

// SetCategory replaces the category filter. Unknown values select all.
func (v *View) SetCategory(c model.Category) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.Category = normalizeCategory(c)
}

// SetCategoryName parses name and sets the category filter. Names that do not
// parse select all.
func (v *View) SetCategoryName(name string) {
	c, err := model.ParseCategory(name)
	if err != nil {
		c = model.CategoryAll
	}
	v.SetCategory(c)
}

// SetFavoritesOnly restricts the visible list to favorites.
func (v *View) SetFavoritesOnly(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.FavoritesOnly = on
}

// SetFilter replaces the whole filter state.
func (v *View) SetFilter(f FilterState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	f.Category = normalizeCategory(f.Category)
	v.filter = f
}

// Filter returns the current filter state.
func (v *View) Filter() FilterState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filter
}

// VisibleRecipes returns the recipes matching the current filter, in load
// order. It has no side effects. An unloaded view has no visible recipes.
func (v *View) VisibleRecipes() []model.Recipe {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]model.Recipe, 0, len(v.list))
	if v.state != StateLoaded {
		return out
	}
	m := newMatcher(v.filter, v.favs)
	for _, r := range v.list {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out
}

// ToggleFavorite flips recipeID in the favorite set and syncs the change to
// the store. Without a credential it returns ErrUnauthenticated and changes
// nothing. When the store call fails the local change is kept and a
// *FavoriteSyncError is returned together with the applied change.
func (v *View) ToggleFavorite(ctx context.Context, recipeID int64) (model.FavoriteChange, error) {
	change, credential, err := v.BeginToggle(recipeID)
	if err != nil {
		return change, err
	}
	return change, v.Sync(ctx, credential, change)
}

// BeginToggle applies a toggle to the local favorite set only and returns the
// change with the credential to sync it with.
func (v *View) BeginToggle(recipeID int64) (model.FavoriteChange, string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateLoaded {
		return model.FavoriteChange{}, "", ErrNotLoaded
	}
	credential, ok := v.credential()
	if !ok {
		return model.FavoriteChange{}, "", ErrUnauthenticated
	}

	change := model.FavoriteChange{RecipeID: recipeID, Op: model.FavoriteAdd, Generation: v.gen}
	if _, fav := v.favs[recipeID]; fav {
		change.Op = model.FavoriteRemove
	}
	v.apply(change)
	v.log.Debug("favorite toggled", zap.Int64("recipe_id", recipeID), zap.String("op", string(change.Op)))
	return change, credential, nil
}

// Sync performs the remote half of a toggle. It does not read or write view
// state, so it may run off the event loop.
func (v *View) Sync(ctx context.Context, credential string, change model.FavoriteChange) error {
	if v.favorites == nil {
		return nil
	}
	var err error
	switch change.Op {
	case model.FavoriteAdd:
		err = v.favorites.AddFavorite(ctx, credential, change.RecipeID)
	case model.FavoriteRemove:
		err = v.favorites.RemoveFavorite(ctx, credential, change.RecipeID)
	default:
		err = fmt.Errorf("unknown favorite op %q", change.Op)
	}
	if err != nil {
		v.log.Warn("favorite sync failed",
			zap.Int64("recipe_id", change.RecipeID),
			zap.String("op", string(change.Op)),
			zap.Error(err))
		return &FavoriteSyncError{RecipeID: change.RecipeID, Op: change.Op, Err: err}
	}
	return nil
}

// Revert undoes change in the local favorite set without calling the store.
// It reports false and changes nothing when a load has finished since the
// change was applied: the reloaded set already reflects the store.
func (v *View) Revert(change model.FavoriteChange) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if change.Generation != v.gen {
		v.log.Debug("stale favorite revert skipped",
			zap.Int64("recipe_id", change.RecipeID),
			zap.Uint64("change_gen", change.Generation),
			zap.Uint64("gen", v.gen))
		return false
	}
	v.apply(change.Inverse())
	v.log.Debug("favorite reverted", zap.Int64("recipe_id", change.RecipeID))
	return true
}

// Retry repeats the remote half of change with the current credential.
func (v *View) Retry(ctx context.Context, change model.FavoriteChange) error {
	credential, ok := v.credential()
	if !ok {
		return ErrUnauthenticated
	}
	return v.Sync(ctx, credential, change)
}

func (v *View) apply(change model.FavoriteChange) {
	if change.Op == model.FavoriteAdd {
		v.favs[change.RecipeID] = struct{}{}
	} else {
		delete(v.favs, change.RecipeID)
	}
}

// State returns the load state.
func (v *View) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Err returns the last load error, if the view is in StateLoadFailed.
func (v *View) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.err
}

// SignedIn reports whether a credential is available.
func (v *View) SignedIn() bool {
	_, ok := v.credential()
	return ok
}

// IsFavorite reports whether recipeID is in the favorite set.
func (v *View) IsFavorite(recipeID int64) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.favs[recipeID]
	return ok
}

// Favorites returns the favorite ids in ascending order.
func (v *View) Favorites() []int64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	ids := make([]int64, 0, len(v.favs))
	for id := range v.favs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Recipe looks up a loaded recipe by id.
func (v *View) Recipe(id int64) (model.Recipe, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	i, ok := v.index[id]
	if !ok {
		return model.Recipe{}, false
	}
	return v.list[i], true
}

// Count returns the number of loaded recipes.
func (v *View) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.list)
}

// CategoryCounts counts loaded recipes per category, ignoring the filter.
// CategoryAll holds the total.
func (v *View) CategoryCounts() map[model.Category]int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	counts := make(map[model.Category]int, len(model.Categories())+1)
	counts[model.CategoryAll] = len(v.list)
	for _, r := range v.list {
		counts[r.Category]++
	}
	return counts
}

func (v *View) credential() (string, bool) {
	if v.auth == nil {
		return "", false
	}
	return v.auth.Credential()
}

func validateRecipes(recipes []model.Recipe) error {
	seen := make(map[int64]struct{}, len(recipes))
	for _, r := range recipes {
		switch {
		case r.ID <= 0:
			return &model.ValidationError{RecipeID: r.ID, Field: "id", Reason: "must be positive"}
		case strings.TrimSpace(r.Title) == "":
			return &model.ValidationError{RecipeID: r.ID, Field: "title", Reason: "is required"}
		case r.Category == model.CategoryAll || !r.Category.Valid():
			return &model.ValidationError{RecipeID: r.ID, Field: "category", Reason: fmt.Sprintf("%q is not a known category", r.Category)}
		case r.Rating < 0 || r.Rating > 5:
			return &model.ValidationError{RecipeID: r.ID, Field: "rating", Reason: "is outside 0-5"}
		}
		if _, dup := seen[r.ID]; dup {
			return &model.ValidationError{RecipeID: r.ID, Field: "id", Reason: "is duplicated"}
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
