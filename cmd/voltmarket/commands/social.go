package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tair/voltmarket/cmd/voltmarket/output"
	"github.com/tair/voltmarket/internal/app"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List your favorite products",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runFavorites)
	},
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Add a product to favorites, or remove it if it is one already",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app.App) error {
			return runFavorite(ctx, a, id)
		})
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <id>",
	Short: "Like a product, or take the like back",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app.App) error {
			return runLike(ctx, a, id)
		})
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <id> <text>...",
	Short: "Comment on a product",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		content := strings.Join(args[1:], " ")
		return withApp(func(ctx context.Context, a *app.App) error {
			return runComment(ctx, a, id, content)
		})
	},
}

func init() {
	rootCmd.AddCommand(favoritesCmd, favoriteCmd, likeCmd, commentCmd)
}

func runFavorites(ctx context.Context, a *app.App) error {
	c := a.Favorites()
	defer c.Close()

	if err := c.Load(ctx); err != nil {
		return failure(c.State().Error, err)
	}

	products := c.State().Products
	if len(products) == 0 {
		output.Info("You have no favorites yet")
		return nil
	}
	output.Section(fmt.Sprintf("Favorites (%d)", len(products)))
	for _, p := range products {
		printProductLine(p)
	}
	return nil
}

func runFavorite(ctx context.Context, a *app.App, id int64) error {
	c := a.Catalog()
	defer c.Close()

	// the toggle direction comes from the current status
	if err := c.CheckFavoriteStatus(ctx, id); err != nil {
		return failure(c.State().Error, err)
	}
	if err := c.ToggleFavorite(ctx, id); err != nil {
		return failure(c.State().Error, err)
	}
	output.Success("%s", c.State().SuccessMessage)
	return nil
}

func runLike(ctx context.Context, a *app.App, id int64) error {
	c := a.Catalog()
	defer c.Close()

	c.LoadLikes(ctx, id)
	if err := c.ToggleLike(ctx, id); err != nil {
		return failure(c.State().Error, err)
	}
	output.Success("%s", c.State().Likes.Text())
	return nil
}

func runComment(ctx context.Context, a *app.App, id int64, content string) error {
	c := a.Catalog()
	defer c.Close()

	if err := c.AddComment(ctx, id, content); err != nil {
		return failure(c.State().Error, err)
	}
	output.Success("Comment added (%d on this product)", len(c.State().Comments))
	return nil
}
