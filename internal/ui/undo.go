package ui

import (
	"errors"
	"fmt"

	"ratemyrecipe/internal/collection"
	"ratemyrecipe/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Favorite toggles are the only undoable action. Undoing a change toggles
// the same recipe again, which syncs the inverse change to the store.

func (m *Model) pushUndo(change model.FavoriteChange) {
	m.undoStack = append(m.undoStack, change)
	m.redoStack = nil
}

func (m *Model) undoCmd() tea.Cmd {
	if len(m.undoStack) == 0 {
		m.info = "Nothing to undo"
		return nil
	}
	change := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	return m.toggleCmd(change.RecipeID, model.ToggleUndo)
}

func (m *Model) redoCmd() tea.Cmd {
	if len(m.redoStack) == 0 {
		m.info = "Nothing to redo"
		return nil
	}
	change := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	return m.toggleCmd(change.RecipeID, model.ToggleRedo)
}

// toggleCmd applies the local half of a toggle and returns the command that
// syncs it.
func (m *Model) toggleCmd(recipeID int64, origin model.ToggleOrigin) tea.Cmd {
	change, credential, err := m.view.BeginToggle(recipeID)
	if err != nil {
		m.setError(err)
		return nil
	}
	m.afterFavoriteChange()

	view := m.view
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := contextWithTimeout(timeout)
		defer cancel()
		return model.FavoriteSyncedMsg{
			Change: change,
			Origin: origin,
			Err:    view.Sync(ctx, credential, change),
		}
	}
}

// applyFavoriteSynced settles a toggle. A failed sync is compensated by
// reverting the local change, unless a reload already replaced it.
func (m *Model) applyFavoriteSynced(msg model.FavoriteSyncedMsg) {
	if msg.Err != nil {
		if m.view.Revert(msg.Change) {
			m.afterFavoriteChange()
			m.setError(msg.Err)
			m.log.Debug("favorite reverted after sync failure")
			return
		}
		m.afterFavoriteChange()
		cause := msg.Err
		var syncErr *collection.FavoriteSyncError
		if errors.As(cause, &syncErr) {
			cause = syncErr.Err
		}
		m.error = fmt.Sprintf("Could not save favorite, kept the reloaded favorites: %v", cause)
		m.info = ""
		m.log.Debug("favorite sync failed after reload", zap.Error(msg.Err))
		return
	}

	title := fmt.Sprintf("recipe %d", msg.Change.RecipeID)
	if r, ok := m.view.Recipe(msg.Change.RecipeID); ok {
		title = r.Title
	}
	verb := "Added to favorites"
	if msg.Change.Op == model.FavoriteRemove {
		verb = "Removed from favorites"
	}

	switch msg.Origin {
	case model.ToggleUndo:
		m.redoStack = append(m.redoStack, msg.Change.Inverse())
		m.info = "Undid: " + verb + ": " + title
	case model.ToggleRedo:
		m.undoStack = append(m.undoStack, msg.Change)
		m.info = "Redid: " + verb + ": " + title
	default:
		m.pushUndo(msg.Change)
		m.info = verb + ": " + title + " (u to undo)"
	}
	m.error = ""
}

// errorText turns errors into something the user can act on.
func errorText(err error) string {
	var syncErr *collection.FavoriteSyncError
	switch {
	case errors.Is(err, collection.ErrUnauthenticated):
		return "Not signed in: log in with `ratemyrecipe login` to manage favorites"
	case errors.Is(err, collection.ErrNotLoaded):
		return "Recipes are not loaded yet"
	case errors.As(err, &syncErr):
		return fmt.Sprintf("Could not save favorite, change reverted: %v", syncErr.Err)
	}
	return err.Error()
}
