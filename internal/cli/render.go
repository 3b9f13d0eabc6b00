package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"souvenir-shop/internal/markup"
	"souvenir-shop/internal/notify"
	"souvenir-shop/internal/service/catalog"
	"souvenir-shop/internal/service/shop"
)

type region uint8

const (
	regionProducts region = 1 << iota
	regionCart
	regionWishlist
)

const descriptionWidth = 60

// textRenderer prints the regions a command asked for as tab-aligned tables. Updates to
// other regions are dropped, so opening a profile prints nothing.
type textRenderer struct {
	out      io.Writer
	catalog  *catalog.Catalog
	currency string
	md       *markup.Renderer
	regions  region
	details  bool
}

func newTextRenderer(out io.Writer, cat *catalog.Catalog, currency string, md *markup.Renderer) *textRenderer {
	return &textRenderer{out: out, catalog: cat, currency: currency, md: md}
}

func (r *textRenderer) show(rg region) {
	r.regions |= rg
}

func (r *textRenderer) ProductsLoading() {}

func (r *textRenderer) FilterBadge(n int) {
	if r.regions&regionProducts == 0 || n == 0 {
		return
	}
	fmt.Fprintf(r.out, "Active filters: %d\n", n)
}

func (r *textRenderer) Products(grid shop.ProductGrid) {
	if r.regions&regionProducts == 0 {
		return
	}
	fmt.Fprintln(r.out, grid.Title)
	if grid.Empty() {
		fmt.Fprintln(r.out, "No products found matching your filters.")
		return
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	header := "ID\tNAME\tPRICE\tWAS\tRATING\tSTOCK\tTAGS"
	if r.details {
		header += "\tDESCRIPTION"
	}
	fmt.Fprintln(tw, header)
	for _, card := range grid.Products {
		was := ""
		if card.Discounted() {
			was = fmt.Sprintf("%s (-%d%%)", shop.FormatMoney(r.currency, card.OriginalPrice), card.DiscountPercent)
		}
		row := []string{
			card.ID,
			card.Name,
			shop.FormatMoney(r.currency, card.Price),
			was,
			strings.Repeat("★", card.FullStars) + strings.Repeat("☆", card.EmptyStars) + " (" + strconv.Itoa(card.Reviews) + ")",
			stockLabel(card),
			tags(card),
		}
		if r.details {
			row = append(row, truncate(r.md.Plain(card.Description), descriptionWidth))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func stockLabel(card shop.ProductCard) string {
	switch {
	case !card.Available():
		return "out of stock"
	case card.LowStock:
		return fmt.Sprintf("only %d left", card.InStock)
	default:
		return strconv.Itoa(card.InStock)
	}
}

func tags(card shop.ProductCard) string {
	var out []string
	if card.Bestseller {
		out = append(out, "bestseller")
	}
	if card.Wishlisted {
		out = append(out, "wishlist")
	}
	return strings.Join(out, ",")
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func (r *textRenderer) Cart(panel shop.CartPanel) {
	if r.regions&regionCart != 0 {
		r.printCart(panel)
	}
}

func (r *textRenderer) printCart(panel shop.CartPanel) {
	fmt.Fprintln(r.out, panel.Title)
	if panel.Empty() {
		fmt.Fprintln(r.out, "Your cart is empty.")
		return
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tUNIT\tTOTAL\tSAVINGS")
	for _, line := range panel.Lines {
		qty := strconv.Itoa(line.Quantity)
		if line.AtLimit {
			qty += " (max)"
		}
		savings := ""
		if line.LineSavings.IsPositive() {
			savings = shop.FormatMoney(r.currency, line.LineSavings)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			line.Product.ID,
			line.Product.Name,
			qty,
			shop.FormatMoney(r.currency, line.Product.Price),
			shop.FormatMoney(r.currency, line.LineTotal),
			savings,
		)
	}
	_ = tw.Flush()
	fmt.Fprintf(r.out, "Subtotal: %s\n", shop.FormatMoney(r.currency, panel.Totals.Subtotal))
	if panel.ShowSavings {
		fmt.Fprintf(r.out, "You save: %s\n", shop.FormatMoney(r.currency, panel.Totals.Savings))
	}
	fmt.Fprintln(r.out, panel.BuyLabel)
}

func (r *textRenderer) Wishlist(badge shop.WishlistBadge) {
	if r.regions&regionWishlist != 0 {
		r.printWishlist(badge)
	}
}

func (r *textRenderer) printWishlist(badge shop.WishlistBadge) {
	fmt.Fprintf(r.out, "Wishlist (%d)\n", badge.Count)
	for _, id := range badge.IDs {
		name := id
		if p, ok := r.catalog.Product(id); ok {
			name = p.Name
		}
		fmt.Fprintf(r.out, "  %s  %s\n", id, name)
	}
}

func (r *textRenderer) filterPanel(panel shop.FilterPanel) {
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tNAME\tPRODUCTS")
	for _, c := range panel.Categories {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Key, c.Name, c.Count)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "PRICE RANGE\tNAME\t")
	for _, pr := range panel.PriceRanges {
		fmt.Fprintf(tw, "%s\t%s\t\n", pr.ID, pr.Name)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "SORT\tNAME\t")
	for _, s := range panel.Sorts {
		fmt.Fprintf(tw, "%s\t%s\t\n", s.ID, s.Label)
	}
	_ = tw.Flush()
}

// printNotifier prints notifications as they are raised. A terminal has nothing to
// dismiss, so notifications never expire.
type printNotifier struct {
	out io.Writer
	seq uint64
}

func (n *printNotifier) Show(message string, severity notify.Severity) notify.Notification {
	n.seq++
	mark := "✓"
	if severity == notify.Error {
		mark = "✗"
	}
	fmt.Fprintf(n.out, "%s %s\n", mark, message)
	return notify.Notification{Message: message, Severity: severity, Seq: n.seq}
}
