package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souvenir-shop/internal/domain"
)

func product(id, category string, price int64, rating float64, reviews, stock int, bestseller bool) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          "Product " + id,
		Description:   "Handmade item " + id,
		Price:         decimal.NewFromInt(price),
		OriginalPrice: decimal.NewFromInt(price + 100),
		Category:      category,
		Rating:        rating,
		Reviews:       reviews,
		InStock:       stock,
		Bestseller:    bestseller,
	}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	products := []domain.Product{
		product("thangka", "artwork", 850, 4.8, 23, 15, true),
		product("pagoda", "handicrafts", 450, 4.6, 18, 8, true),
		product("pashmina", "textiles", 320, 4.9, 34, 25, false),
		product("pottery", "pottery", 280, 4.7, 12, 0, false),
		product("jewelry", "jewelry", 650, 4.8, 29, 12, true),
		product("khukuri", "handicrafts", 480, 4.5, 16, 10, false),
		product("bowl", "handicrafts", 380, 4.9, 41, 18, true),
		product("mask", "artwork", 220, 4.4, 8, 22, false),
		product("prayer-flags", "textiles", 300, 4.6, 18, 3, false),
	}
	products[2].Description = "Premium cashmere with traditional patterns"
	categories := []domain.Category{
		{Key: "artwork", Name: "Artwork"},
		{Key: "handicrafts", Name: "Handicrafts"},
		{Key: "textiles", Name: "Textiles"},
		{Key: "pottery", Name: "Pottery"},
		{Key: "jewelry", Name: "Jewelry"},
	}
	c, err := New(products, categories, nil)
	require.NoError(t, err)
	return c
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	_, err := New([]domain.Product{{ID: "a"}, {ID: "a"}}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate product id")
}

func TestNewAddsAllCategoryAndCounts(t *testing.T) {
	c := testCatalog(t)
	cats := c.Categories()
	require.Equal(t, domain.AllKey, cats[0].Key)
	assert.Equal(t, 9, cats[0].Count)
	assert.Equal(t, "handicrafts", cats[2].Key)
	assert.Equal(t, 3, cats[2].Count)

	ranges := c.PriceRanges()
	assert.Equal(t, domain.AllKey, ranges[0].ID)
	assert.Len(t, ranges, 5)
}

func TestNewMovesAllRangeToFront(t *testing.T) {
	upper := decimal.NewFromInt(299)
	ranges := []domain.PriceRange{
		{ID: "cheap", Name: "Cheap", Max: &upper},
		{ID: domain.AllKey, Name: "Any Price"},
	}
	c, err := New([]domain.Product{product("mask", "artwork", 220, 4.4, 8, 22, false)}, nil, ranges)
	require.NoError(t, err)

	got := c.PriceRanges()
	require.Len(t, got, 2)
	assert.Equal(t, domain.AllKey, got[0].ID)
	assert.Equal(t, "Any Price", got[0].Name)
	assert.Equal(t, "cheap", got[1].ID)
}

func TestNewRejectsDuplicateRanges(t *testing.T) {
	ranges := []domain.PriceRange{{ID: "cheap"}, {ID: "cheap"}}
	_, err := New(nil, nil, ranges)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate price range")
}

func TestBestsellersKeepsCatalogOrder(t *testing.T) {
	c := testCatalog(t)
	assert.Equal(t, []string{"thangka", "pagoda", "jewelry", "bowl"}, ids(c.Bestsellers(4)))
	assert.Equal(t, []string{"thangka"}, ids(c.Bestsellers(1)))
}

func TestVisibleSearchIsCaseInsensitiveOverNameAndDescription(t *testing.T) {
	c := testCatalog(t)
	f := DefaultFilters()
	f.Search = "CASHMERE"
	assert.Equal(t, []string{"pashmina"}, ids(Visible(c, f)))

	f.Search = "product bowl"
	assert.Equal(t, []string{"bowl"}, ids(Visible(c, f)))
}

func TestVisibleEveryElementSatisfiesActivePredicates(t *testing.T) {
	c := testCatalog(t)
	var cases []Filters
	for _, cat := range c.Categories() {
		for _, r := range c.PriceRanges() {
			for _, s := range Sorts {
				for _, flags := range [][2]bool{{false, false}, {true, false}, {false, true}, {true, true}} {
					for _, search := range []string{"", "handmade item p", "zzz"} {
						cases = append(cases, Filters{
							Category:        cat.Key,
							PriceRange:      r.ID,
							Sort:            s.Sort,
							BestsellersOnly: flags[0],
							InStockOnly:     flags[1],
							Search:          search,
						})
					}
				}
			}
		}
	}

	for _, f := range cases {
		visible := Visible(c, f)
		assert.LessOrEqual(t, len(visible), c.Len())
		r, _ := c.PriceRange(f.PriceRange)
		for _, p := range visible {
			orig, ok := c.Product(p.ID)
			require.True(t, ok, "visible product must come from the catalog")
			assert.Equal(t, orig, p)
			if f.Category != domain.AllKey {
				assert.Equal(t, f.Category, p.Category)
			}
			if f.PriceRange != domain.AllKey {
				assert.True(t, r.Contains(p.Price), "price %s outside %s", p.Price, r.ID)
			}
			if f.BestsellersOnly {
				assert.True(t, p.Bestseller)
			}
			if f.InStockOnly {
				assert.Greater(t, p.InStock, 0)
			}
			if f.Search != "" {
				q := strings.ToLower(f.Search)
				assert.True(t, strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q))
			}
		}
	}
}

func TestVisibleSortIsStableForEqualKeys(t *testing.T) {
	c := testCatalog(t)
	position := make(map[string]int)
	for i, p := range c.Products() {
		position[p.ID] = i
	}
	key := map[Sort]func(domain.Product) string{
		SortPriceLow:   func(p domain.Product) string { return p.Price.String() },
		SortPriceHigh:  func(p domain.Product) string { return p.Price.String() },
		SortRating:     func(p domain.Product) string { return decimal.NewFromFloat(p.Rating).String() },
		SortPopularity: func(p domain.Product) string { return decimal.NewFromInt(int64(p.Reviews)).String() },
		SortFeatured: func(p domain.Product) string {
			return decimal.NewFromFloat(p.Rating).String() + map[bool]string{true: "/b", false: "/n"}[p.Bestseller]
		},
	}
	for _, s := range Sorts {
		f := DefaultFilters()
		f.Sort = s.Sort
		visible := Visible(c, f)
		for i := 0; i < len(visible); i++ {
			for j := i + 1; j < len(visible); j++ {
				if key[s.Sort](visible[i]) == key[s.Sort](visible[j]) {
					assert.Less(t, position[visible[i].ID], position[visible[j].ID], "sort %s reordered equal keys", s.Sort)
				}
			}
		}
	}
}

func TestVisibleFeaturedPrefersBestsellersOverRating(t *testing.T) {
	a := domain.Product{ID: "A", Price: decimal.NewFromInt(100), Bestseller: true, Rating: 4.5}
	b := domain.Product{ID: "B", Price: decimal.NewFromInt(50), Bestseller: false, Rating: 4.8}
	c, err := New([]domain.Product{b, a}, nil, nil)
	require.NoError(t, err)

	f := DefaultFilters()
	assert.Equal(t, []string{"A", "B"}, ids(Visible(c, f)))

	f.Sort = SortPriceLow
	assert.Equal(t, []string{"B", "A"}, ids(Visible(c, f)))
}

func TestVisibleSorts(t *testing.T) {
	c := testCatalog(t)
	f := DefaultFilters()

	assert.Equal(t, []string{"bowl", "thangka", "jewelry", "pagoda", "pashmina", "pottery", "prayer-flags", "khukuri", "mask"}, ids(Visible(c, f)))

	f.Sort = SortPriceHigh
	assert.Equal(t, "thangka", Visible(c, f)[0].ID)

	f.Sort = SortRating
	assert.Equal(t, []string{"pashmina", "bowl"}, ids(Visible(c, f))[:2])

	f.Sort = SortPopularity
	assert.Equal(t, "bowl", Visible(c, f)[0].ID)
}

func TestVisiblePriceRangeBoundsAreInclusive(t *testing.T) {
	c := testCatalog(t)
	f := DefaultFilters()
	f.PriceRange = "under-300"
	f.Sort = SortPriceLow
	assert.Equal(t, []string{"mask", "pottery", "prayer-flags"}, ids(Visible(c, f)))

	f.PriceRange = "300-500"
	assert.Equal(t, []string{"prayer-flags", "pashmina", "bowl", "pagoda", "khukuri"}, ids(Visible(c, f)))
}

func TestVisibleUnknownPriceRangeIsSkipped(t *testing.T) {
	c := testCatalog(t)
	f := DefaultFilters()
	f.PriceRange = "bogus"
	assert.Len(t, Visible(c, f), c.Len())
}

func TestVisibleStockAndBestsellerToggles(t *testing.T) {
	c := testCatalog(t)
	f := DefaultFilters()
	f.InStockOnly = true
	assert.NotContains(t, ids(Visible(c, f)), "pottery")

	f.BestsellersOnly = true
	f.Category = "handicrafts"
	assert.Equal(t, []string{"bowl", "pagoda"}, ids(Visible(c, f)))
}

func TestActiveCount(t *testing.T) {
	f := DefaultFilters()
	assert.Equal(t, 0, f.ActiveCount())

	f.Search = "x"
	assert.Equal(t, 1, f.ActiveCount())

	f = Filters{Category: "artwork", PriceRange: "700-plus", Sort: SortRating, BestsellersOnly: true, InStockOnly: true, Search: "mask"}
	assert.Equal(t, 6, f.ActiveCount())

	assert.Equal(t, 0, Filters{}.ActiveCount(), "zero value normalizes to defaults")
}

func TestParseSortFallsBackToFeatured(t *testing.T) {
	assert.Equal(t, SortPriceHigh, ParseSort("price-high"))
	assert.Equal(t, SortFeatured, ParseSort("newest"))
	assert.Equal(t, SortFeatured, ParseSort(""))
}

type stubSource struct {
	products []domain.Product
	err      error
}

func (s stubSource) Products(context.Context) ([]domain.Product, error) { return s.products, s.err }
func (s stubSource) Categories(context.Context) ([]domain.Category, error) {
	return nil, nil
}
func (s stubSource) PriceRanges(context.Context) ([]domain.PriceRange, error) {
	return nil, nil
}

func TestLoad(t *testing.T) {
	c, err := Load(context.Background(), stubSource{products: []domain.Product{{ID: "a"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = Load(context.Background(), stubSource{err: errors.New("boom")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load products: boom")
}
