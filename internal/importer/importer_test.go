package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"souvenir-shop/internal/domain"
)

type stubProductRepo struct {
	items     []domain.Product
	positions []int
}

type stubCategoryRepo struct {
	items []domain.Category
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product, position int) (*domain.Product, error) {
	s.items = append(s.items, p)
	s.positions = append(s.positions, position)
	return &p, nil
}

func (s *stubCategoryRepo) Upsert(_ context.Context, c domain.Category, _ int) (*domain.Category, error) {
	s.items = append(s.items, c)
	return &c, nil
}

func TestCSVImporter_RunProducts(t *testing.T) {
	csvData := `id,name,description,price,original_price,category,image,rating,reviews,in_stock,bestseller
thangka,Traditional Thangka Painting,Hand-painted,850,1200,artwork,https://example.com/t.jpg,4.8,23,15,true
,,,,,,,,,,
mask,Wood Carved Mask,Bhairav mask,220.50,,artwork,,4.4,8,22,false
bowl,Singing Bowl Set,Hand-forged,380,520,singing-bowls,,4.9,41,18,`

	repo := &stubProductRepo{}
	catRepo := &stubCategoryRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, catRepo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 products imported, got %d", count)
	}

	first := repo.items[0]
	if first.ID != "thangka" || !first.Price.Equal(decimal.NewFromInt(850)) || !first.Bestseller || first.InStock != 15 {
		t.Fatalf("unexpected product data: %+v", first)
	}
	mask := repo.items[1]
	if !mask.OriginalPrice.Equal(mask.Price) || mask.Price.String() != "220.5" {
		t.Fatalf("expected original price to default to price, got %+v", mask)
	}
	if repo.positions[2] != 2 {
		t.Fatalf("expected row order as position, got %v", repo.positions)
	}
	if len(catRepo.items) != 2 || catRepo.items[1].Name != "Singing Bowls" {
		t.Fatalf("expected inferred categories, got %+v", catRepo.items)
	}
}

func TestCSVImporter_RunRejectsBadRows(t *testing.T) {
	csvData := `id,name,price,in_stock
a,Item A,ten,1`
	_, err := NewCSVImporter(strings.NewReader(csvData), &stubProductRepo{}, nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected price error on line 2, got %v", err)
	}

	csvData = `id,name,price,in_stock
a,Item A,10,-3`
	_, err = NewCSVImporter(strings.NewReader(csvData), &stubProductRepo{}, nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "in_stock") {
		t.Fatalf("expected stock error, got %v", err)
	}
}

func TestCSVImporter_RunCategoriesFile(t *testing.T) {
	csvData := `id,name
artwork,Artwork
handicrafts,
`
	catRepo := &stubCategoryRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), nil, catRepo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 categories imported, got %d", count)
	}
	if catRepo.items[1].Name != "Handicrafts" {
		t.Fatalf("expected title-cased fallback name, got %+v", catRepo.items[1])
	}
}

func TestDetectKind(t *testing.T) {
	productCSV := `id,name,price
thangka,Thangka,850`
	categoryCSV := `id,name
artwork,Artwork`

	kind, err := DetectKind(strings.NewReader(productCSV))
	if err != nil {
		t.Fatalf("detect product kind: %v", err)
	}
	if kind != KindProducts {
		t.Fatalf("expected product kind, got %s", kind)
	}

	kind, err = DetectKind(strings.NewReader(categoryCSV))
	if err != nil {
		t.Fatalf("detect category kind: %v", err)
	}
	if kind != KindCategories {
		t.Fatalf("expected category kind, got %s", kind)
	}

	if _, err := DetectKind(strings.NewReader("foo,bar\n1,2")); err == nil {
		t.Fatalf("expected error for unknown header")
	}
}
