package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"ratemyrecipe/internal/collection"
	"ratemyrecipe/internal/model"
	"ratemyrecipe/internal/util"

	"github.com/spf13/cobra"
)

var (
	listSearch    string
	listCategory  string
	listFavorites bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the filtered recipe list",
	Long: `Load the recipe list once and print the recipes that pass the filter,
in load order, as tab-separated columns.`,
	Example: `  ratemyrecipe list --search pizza
  ratemyrecipe list --category dessert --favorites`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		view := a.newView()
		if err := loadView(cmd.Context(), view, a.cfg.RequestTimeout()*2); err != nil {
			return err
		}
		applyListFilter(view, listSearch, listCategory, listFavorites)
		return printRecipes(cmd.OutOrStdout(), view)
	},
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite <recipe-id>",
	Short: "Toggle a recipe's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid recipe id %q", args[0])
		}

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		view := a.newView()
		if err := loadView(cmd.Context(), view, a.cfg.RequestTimeout()*2); err != nil {
			return err
		}
		if _, ok := view.Recipe(id); !ok {
			return fmt.Errorf("recipe %d not found", id)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout())
		defer cancel()
		change, err := view.ToggleFavorite(ctx, id)
		if err != nil {
			return err
		}
		return printChange(cmd.OutOrStdout(), view, change)
	},
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "case-insensitive title/description search")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "all", "category: all, main-course, starter, breakfast, dessert, vegetarian, vegan, fish, salad, soup (unknown names list all)")
	listCmd.Flags().BoolVarP(&listFavorites, "favorites", "f", false, "only favorites")
}

func loadView(parent context.Context, view *collection.View, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	return view.Load(ctx)
}

// applyListFilter sets the filter from the list flags. Category names are
// read like the browser reads them: unknown names mean all categories.
func applyListFilter(view *collection.View, search, category string, favoritesOnly bool) {
	view.SetFilter(collection.FilterState{
		SearchText:    search,
		Category:      model.Category(category),
		FavoritesOnly: favoritesOnly,
	})
}

func printRecipes(out io.Writer, view *collection.View) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFAV\tTITLE\tCATEGORY\tRATING\tTIME\tDIFFICULTY")
	for _, r := range view.VisibleRecipes() {
		fav := ""
		if view.IsFavorite(r.ID) {
			fav = "♥"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			fav,
			r.Title,
			r.Category.Label(),
			util.FormatRatingWithStar(r.Rating, r.RatingCount),
			util.FormatCookTime(r.CookTimeMinutes),
			r.Difficulty.Label(),
		)
	}
	return w.Flush()
}

func printChange(out io.Writer, view *collection.View, change model.FavoriteChange) error {
	r, _ := view.Recipe(change.RecipeID)
	verb := "Added to favorites"
	if change.Op == model.FavoriteRemove {
		verb = "Removed from favorites"
	}
	_, err := fmt.Fprintf(out, "%s: %s\n", verb, r.Title)
	return err
}
