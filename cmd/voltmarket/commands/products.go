package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tair/voltmarket/cmd/voltmarket/output"
	"github.com/tair/voltmarket/internal/app"
	"github.com/tair/voltmarket/internal/domain"
	"github.com/tair/voltmarket/internal/viewmodel"
)

var (
	searchText string
	categoryID int64

	draft       viewmodel.ProductDraft
	draftImage  string
	draftActive bool
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products, optionally searching by text or category",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runProducts)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runCategories)
	},
}

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Show, publish or delete a product",
}

var productShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a product with its likes and comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app.App) error {
			return runProductShow(ctx, a, id)
		})
	},
}

var productCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new product",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("category") {
			draft.CategoryID = &categoryID
		}
		draft.Active = draftActive
		return withApp(runProductCreate)
	},
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your products",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app.App) error {
			return runProductDelete(ctx, a, id)
		})
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a product image and print its URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app.App) error {
			return runUpload(ctx, a, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(productsCmd, categoriesCmd, productCmd, uploadCmd)
	productCmd.AddCommand(productShowCmd, productCreateCmd, productDeleteCmd)

	productsCmd.Flags().StringVarP(&searchText, "search", "s", "", "Search text")
	productsCmd.Flags().Int64VarP(&categoryID, "category", "c", 0, "Category id")

	f := productCreateCmd.Flags()
	f.StringVar(&draft.Name, "name", "", "Product name")
	f.StringVar(&draft.Description, "description", "", "Description")
	f.StringVar(&draft.Price, "price", "", "Price")
	f.StringVar(&draft.Stock, "stock", "", "Units in stock")
	f.StringVar(&draft.Brand, "brand", "", "Brand")
	f.StringVar(&draft.SKU, "sku", "", "SKU; generated by the backend when empty")
	f.StringVar(&draft.ImageURL, "image-url", "", "Image URL")
	f.StringVar(&draftImage, "image", "", "Local image file to upload first")
	f.Int64Var(&categoryID, "category", 0, "Category id")
	f.BoolVar(&draftActive, "active", true, "Publish as active")
}

func runProducts(ctx context.Context, a *app.App) error {
	c := a.Catalog()
	defer c.Close()

	var category *int64
	if categoryID != 0 {
		category = &categoryID
	}

	if err := c.SearchProducts(ctx, searchText, category); err != nil {
		return failure(c.State().Error, err)
	}

	products := c.State().Products
	if len(products) == 0 {
		output.Info("No products found")
		return nil
	}
	output.Section(fmt.Sprintf("Products (%d)", len(products)))
	for _, p := range products {
		printProductLine(p)
	}
	return nil
}

func runCategories(ctx context.Context, a *app.App) error {
	c := a.Catalog()
	defer c.Close()

	c.LoadCategories(ctx)
	categories := c.State().Categories
	if len(categories) == 0 {
		output.Info("No categories available")
		return nil
	}
	output.Section("Categories")
	for _, cat := range categories {
		output.Field(formatID(cat.ID), cat.Name)
	}
	return nil
}

func runProductShow(ctx context.Context, a *app.App, id int64) error {
	c := a.Catalog()
	defer c.Close()

	if err := c.LoadProductDetail(ctx, id); err != nil {
		return failure(c.State().Error, err)
	}
	c.LoadLikes(ctx, id)
	if err := c.LoadComments(ctx, id); err != nil {
		output.Warning("%s", c.State().Error)
	}

	s := c.State()
	if s.SelectedProduct == nil {
		return fmt.Errorf("product %d not found", id)
	}
	p := *s.SelectedProduct

	output.Section(p.Name)
	output.Field("Price", p.FormattedPrice())
	output.Field("Stock", strconv.Itoa(p.Stock)+" "+output.Availability(p.IsAvailable()))
	output.Field("Brand", deref(p.Brand))
	output.Field("Category", deref(p.CategoryName))
	output.Field("SKU", deref(p.SKU))
	output.Field("Likes", s.Likes.Text())
	if a.Sessions.LoggedIn() {
		output.Field("Favorite", strconv.FormatBool(s.IsFavorite))
	}
	if d := deref(p.Description); d != "" {
		fmt.Println()
		fmt.Println(d)
	}

	if len(s.Comments) > 0 {
		output.Section(fmt.Sprintf("Comments (%d)", len(s.Comments)))
		for _, cm := range s.Comments {
			author := "user " + formatID(cm.UserID)
			if cm.User != nil {
				author = cm.User.FullName()
			}
			output.Muted("%s · %s", author, cm.TimeAgo())
			fmt.Println(cm.Content)
		}
	}
	return nil
}

func runProductCreate(ctx context.Context, a *app.App) error {
	c := a.Catalog()
	defer c.Close()

	if draftImage != "" {
		url, err := uploadFile(ctx, c, draftImage)
		if err != nil {
			return err
		}
		draft.ImageURL = url
	}

	if err := c.CreateProduct(ctx, draft); err != nil {
		s := c.State()
		for _, msg := range []string{s.FormErrors.Name, s.FormErrors.Price, s.FormErrors.Stock, s.FormErrors.Category} {
			if msg != "" {
				output.Error("%s", msg)
			}
		}
		return failure(s.Error, err)
	}
	output.Success("%s", c.State().SuccessMessage)
	return nil
}

func runProductDelete(ctx context.Context, a *app.App, id int64) error {
	c := a.MyProducts()
	defer c.Close()

	if err := c.Delete(ctx, id); err != nil {
		return failure(c.State().Error, err)
	}
	output.Success("Product %d deleted", id)
	return nil
}

func runUpload(ctx context.Context, a *app.App, path string) error {
	c := a.Catalog()
	defer c.Close()

	url, err := uploadFile(ctx, c, path)
	if err != nil {
		return err
	}
	output.Success("Image uploaded")
	fmt.Println(url)
	return nil
}

func uploadFile(ctx context.Context, c *viewmodel.CatalogController, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	url, err := c.UploadImage(ctx, filepath.Base(path), f)
	if err != nil {
		return "", failure(c.State().Error, err)
	}
	return url, nil
}

func printProductLine(p domain.Product) {
	fmt.Printf("%s %-6s %-32s %12s  stock %d\n",
		output.Availability(p.IsAvailable()), formatID(p.ID), p.Name, p.FormattedPrice(), p.Stock)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func formatID(id int64) string {
	return "#" + strconv.FormatInt(id, 10)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
