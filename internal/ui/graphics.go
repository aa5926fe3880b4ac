package ui

import (
	"context"
	"image"
	"os"
	"time"

	"ratemyrecipe/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/qeesung/image2ascii/convert"
)

// imageLoadedMsg carries a rendered recipe image preview.
type imageLoadedMsg struct {
	recipeID int64
	art      string
}

// colorTerminal reports whether ANSI colors are worth emitting.
func colorTerminal() bool {
	return os.Getenv("NO_COLOR") == "" && os.Getenv("TERM") != "dumb"
}

// renderImage converts img to ASCII art of the given size.
func renderImage(img image.Image, width, height int, colored bool) string {
	converter := convert.NewImageConverter()

	opts := convert.DefaultOptions
	opts.FixedWidth = width
	opts.FixedHeight = height
	opts.FitScreen = false
	opts.Colored = colored

	return converter.Image2ASCIIString(img, &opts)
}

func loadImageCmd(backend Backend, r model.Recipe, width int) tea.Cmd {
	return func() tea.Msg {
		if backend == nil {
			return model.ErrorMsg{Err: errOffline}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		img, err := backend.FetchImage(ctx, r.ImageURL)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		w := min(max(width, 20), 80)
		return imageLoadedMsg{recipeID: r.ID, art: renderImage(img, w, w/4, colorTerminal())}
	}
}
