package httpserver

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"souvenir-shop/internal/notify"
	"souvenir-shop/internal/service/catalog"
	"souvenir-shop/internal/service/shop"
)

const (
	toastEvent   = "shop:toast"
	minPollDelay = 50 * time.Millisecond
)

// viewData feeds every template.
type viewData struct {
	Filters   shop.FilterPanel
	Loading   bool
	Grid      shop.ProductGrid
	Badge     int
	View      string
	Cart      shop.CartPanel
	Wishlist  shop.WishlistBadge
	Toast     *notify.Notification
	PollDelay string
	ToastTTL  string

	// OOB marks fragment responses that also swap the header badges.
	OOB       bool
	ResetForm bool
}

func moneyFunc(currency string) func(decimal.Decimal) string {
	return func(amount decimal.Decimal) string {
		return shop.FormatMoney(currency, amount)
	}
}

// htmxDelay formats d for hx-trigger modifiers.
func htmxDelay(d time.Duration) string {
	if d < minPollDelay {
		d = minPollDelay
	}
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}

func (h *handlers) view(s *session) viewData {
	st := s.frame.snapshot()
	data := viewData{
		Filters:   s.shop.FilterPanel(),
		Loading:   st.Loading,
		Grid:      st.Grid,
		Badge:     st.Badge,
		View:      s.view,
		Cart:      st.Cart,
		Wishlist:  st.Wishlist,
		PollDelay: htmxDelay(h.deps.Options.RenderDelay),
		ToastTTL:  htmxDelay(h.deps.Options.ToastTTL),
	}
	if n, ok := s.toasts.Current(); ok {
		data.Toast = &n
	}
	return data
}

func toastSeq(s *session) uint64 {
	if n, ok := s.toasts.Current(); ok {
		return n.Seq
	}
	return 0
}

// announce returns the notification raised since before, if any, and advertises it to
// htmx through the HX-Trigger header.
func announce(c *gin.Context, s *session, before uint64) *notify.Notification {
	n, ok := s.toasts.Current()
	if !ok || n.Seq <= before {
		return nil
	}
	payload, err := json.Marshal(map[string]notify.Notification{toastEvent: n})
	if err == nil {
		c.Header("HX-Trigger", string(payload))
	}
	return &n
}

// parseFilters reads filter criteria from form or query values.
func parseFilters(get func(string) string) catalog.Filters {
	return catalog.Filters{
		Category:        strings.TrimSpace(get("category")),
		PriceRange:      strings.TrimSpace(get("price")),
		Sort:            catalog.ParseSort(get("sort")),
		BestsellersOnly: formBool(get("bestsellers")),
		InStockOnly:     formBool(get("in_stock")),
		Search:          strings.TrimSpace(get("search")),
	}.Normalize()
}

func formBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

func parseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("quantity %q is not a number", raw)
	}
	return n, nil
}
