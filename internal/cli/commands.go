package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"souvenir-shop/internal/catalogfile"
	"souvenir-shop/internal/domain"
	"souvenir-shop/internal/service/catalog"
)

func (a *app) productsCmd() *cobra.Command {
	var (
		f       catalog.Filters
		sort    string
		details bool
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products, optionally filtered and sorted",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&f.Search, "search", "", "match name or description")
	cmd.Flags().StringVar(&f.Category, "category", domain.AllKey, "category id")
	cmd.Flags().StringVar(&f.PriceRange, "price", domain.AllKey, "price range id")
	cmd.Flags().StringVar(&sort, "sort", string(catalog.SortFeatured), "featured, price-low, price-high, rating or popularity")
	cmd.Flags().BoolVar(&f.BestsellersOnly, "bestsellers", false, "only bestsellers")
	cmd.Flags().BoolVar(&f.InStockOnly, "in-stock", false, "only products in stock")
	cmd.Flags().BoolVar(&details, "details", false, "include descriptions")
	cmd.RunE = a.action(func(context.Context, []string) error {
		f.Sort = catalog.ParseSort(sort)
		a.text.details = details
		a.text.show(regionProducts)
		a.shop.ApplyFilters(f)
		return nil
	})
	return cmd
}

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories and price ranges",
		Args:  cobra.NoArgs,
		RunE: a.action(func(context.Context, []string) error {
			a.text.filterPanel(a.shop.FilterPanel())
			return nil
		}),
	}
}

func (a *app) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the saved cart",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: a.action(func(context.Context, []string) error {
			a.text.printCart(a.shop.CartPanel())
			return nil
		}),
	}
	add := &cobra.Command{
		Use:   "add ID",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: a.action(func(ctx context.Context, args []string) error {
			a.text.show(regionCart)
			_, err := a.shop.AddToCart(ctx, args[0])
			return a.productError(args[0], err)
		}),
	}
	set := &cobra.Command{
		Use:   "set ID QUANTITY",
		Short: "Set the quantity of a cart line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: a.action(func(ctx context.Context, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q is not a number", args[1])
			}
			a.text.show(regionCart)
			_, err = a.shop.SetCartQuantity(ctx, args[0], n)
			return a.productError(args[0], err)
		}),
	}
	inc := &cobra.Command{
		Use:   "inc ID",
		Short: "Increase a cart line by one",
		Args:  cobra.ExactArgs(1),
		RunE: a.action(func(ctx context.Context, args []string) error {
			a.text.show(regionCart)
			_, err := a.shop.IncreaseCartItem(ctx, args[0])
			return a.productError(args[0], err)
		}),
	}
	dec := &cobra.Command{
		Use:   "dec ID",
		Short: "Decrease a cart line by one",
		Args:  cobra.ExactArgs(1),
		RunE: a.action(func(ctx context.Context, args []string) error {
			a.text.show(regionCart)
			_, err := a.shop.DecreaseCartItem(ctx, args[0])
			return a.productError(args[0], err)
		}),
	}
	remove := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: a.action(func(ctx context.Context, args []string) error {
			if !a.inCart(args[0]) {
				return fmt.Errorf("%w %q", errUnknownProduct, args[0])
			}
			a.text.show(regionCart)
			a.shop.RemoveFromCart(ctx, args[0])
			return nil
		}),
	}
	clearCart := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: a.action(func(ctx context.Context, _ []string) error {
			a.text.show(regionCart)
			a.shop.ClearCart(ctx)
			return nil
		}),
	}

	cmd.AddCommand(show, add, set, inc, dec, remove, clearCart)
	return cmd
}

func (a *app) inCart(id string) bool {
	for _, line := range a.shop.CartPanel().Lines {
		if line.Product.ID == id {
			return true
		}
	}
	return false
}

// productError reports unknown products. A stock limit has already been announced and is not
// a command failure.
func (a *app) productError(id string, err error) error {
	switch {
	case err == nil, errors.Is(err, domain.ErrStockLimit):
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%w %q", errUnknownProduct, id)
	default:
		return err
	}
}

func (a *app) wishlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Show and change the saved wishlist",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the wishlist",
		Args:  cobra.NoArgs,
		RunE: a.action(func(context.Context, []string) error {
			a.text.printWishlist(a.shop.WishlistBadge())
			return nil
		}),
	}
	toggle := &cobra.Command{
		Use:   "toggle ID",
		Short: "Add a product to the wishlist, or remove it when already there",
		Args:  cobra.ExactArgs(1),
		RunE: a.action(func(ctx context.Context, args []string) error {
			a.text.show(regionWishlist)
			if _, err := a.shop.ToggleWishlist(ctx, args[0]); err != nil {
				return a.productError(args[0], err)
			}
			return nil
		}),
	}
	cmd.AddCommand(show, toggle)
	return cmd
}

func (a *app) checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Summarize the cart for checkout",
		Args:  cobra.NoArgs,
		RunE: a.action(func(context.Context, []string) error {
			a.shop.Checkout()
			return nil
		}),
	}
}

func (a *app) catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Catalog maintenance",
	}
	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the active catalog as YAML",
		Args:  cobra.NoArgs,
		RunE: a.action(func(context.Context, []string) error {
			cat := a.shop.Catalog()
			doc := catalogfile.FromCatalog(cat.Products(), cat.Categories(), cat.PriceRanges())
			if out == "" {
				return doc.Encode(a.out)
			}
			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := doc.Encode(file); err != nil {
				_ = file.Close()
				return fmt.Errorf("write %s: %w", out, err)
			}
			return file.Close()
		}),
	}
	export.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to stdout)")
	cmd.AddCommand(export)
	return cmd
}
