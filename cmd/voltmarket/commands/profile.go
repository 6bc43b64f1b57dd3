package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tair/voltmarket/cmd/voltmarket/output"
	"github.com/tair/voltmarket/internal/app"
	"github.com/tair/voltmarket/internal/domain"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runProfile)
	},
}

var myProductsCmd = &cobra.Command{
	Use:   "my-products",
	Short: "List the products you published",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runMyProducts)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd, myProductsCmd)
}

func runProfile(ctx context.Context, a *app.App) error {
	c := a.Profile()
	defer c.Close()

	if err := c.LoadStats(ctx); err != nil {
		return failure(c.State().Error, err)
	}

	s := c.State()
	output.Section(s.FullName)
	output.Field("Email", s.Email)
	output.Field("Favorites", strconv.Itoa(s.FavoritesCount))
	output.Field("Products", strconv.Itoa(s.ProductsCount))
	if s.Ratings != nil {
		output.Field("Rating", stars(*s.Ratings)+" "+s.Ratings.AverageFormatted()+" ("+s.Ratings.Text()+")")
	} else {
		output.Field("Rating", "unavailable")
	}
	return nil
}

func runMyProducts(ctx context.Context, a *app.App) error {
	c := a.MyProducts()
	defer c.Close()

	if err := c.Load(ctx); err != nil {
		return failure(c.State().Error, err)
	}

	products := c.State().Products
	if len(products) == 0 {
		output.Info("You have not published any products")
		return nil
	}
	output.Section(fmt.Sprintf("My products (%d)", len(products)))
	for _, p := range products {
		printProductLine(p)
	}
	return nil
}

func stars(r domain.RatingStats) string {
	full := r.FullStars()
	s := strings.Repeat("★", full)
	if r.HasHalfStar() {
		s += "½"
		full++
	}
	return s + strings.Repeat("☆", max(5-full, 0))
}
