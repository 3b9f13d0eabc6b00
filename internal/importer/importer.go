package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"souvenir-shop/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product, position int) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, category domain.Category, position int) (*domain.Category, error)
}

// Kind is the kind of rows a CSV file holds.
type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

// DetectKind peeks at the header row. Product files carry a price column.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(bufio.NewReader(r)).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	idx := headerIndex(headers)
	if _, ok := idx["price"]; ok {
		return KindProducts, nil
	}
	if _, ok := idx["id"]; ok {
		if _, ok := idx["name"]; ok {
			return KindCategories, nil
		}
	}
	return "", errors.New("unrecognised csv header")
}

// CSVImporter reads product or category CSV files and upserts them. Row order becomes
// catalog order.
type CSVImporter struct {
	reader       *csv.Reader
	productRepo  ProductWriter
	categoryRepo CategoryWriter
	seenCategory map[string]bool
	categoryPos  int
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:       csvr,
		productRepo:  products,
		categoryRepo: categories,
		seenCategory: make(map[string]bool),
	}
}

// Run parses every row. Product files also upsert any category they reference that has
// not been seen yet, named after its id.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	_, hasPrice := index["price"]

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		if blank(record) {
			continue
		}

		if hasPrice {
			err = i.saveProduct(ctx, record, index, imported)
		} else {
			err = i.saveCategory(ctx, domain.Category{
				Key:  pick(record, index, "id"),
				Name: pick(record, index, "name"),
			})
		}
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) saveProduct(ctx context.Context, record []string, index map[string]int, position int) error {
	if i.productRepo == nil {
		return errors.New("product repository unavailable")
	}
	p, err := parseProduct(record, index)
	if err != nil {
		return err
	}
	if i.categoryRepo != nil && p.Category != "" && !i.seenCategory[p.Category] {
		if err := i.saveCategory(ctx, domain.Category{Key: p.Category, Name: titleCase(p.Category)}); err != nil {
			return err
		}
	}
	if _, err := i.productRepo.Upsert(ctx, p, position); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.ID, err)
	}
	return nil
}

func (i *CSVImporter) saveCategory(ctx context.Context, c domain.Category) error {
	if i.categoryRepo == nil {
		return errors.New("category repository unavailable")
	}
	if c.Key == "" {
		return errors.New("category id required")
	}
	if c.Name == "" {
		c.Name = titleCase(c.Key)
	}
	if _, err := i.categoryRepo.Upsert(ctx, c, i.categoryPos); err != nil {
		return fmt.Errorf("upsert category %q: %w", c.Key, err)
	}
	i.seenCategory[c.Key] = true
	i.categoryPos++
	return nil
}

func parseProduct(record []string, index map[string]int) (domain.Product, error) {
	p := domain.Product{
		ID:          pick(record, index, "id"),
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		Category:    pick(record, index, "category"),
		Image:       pick(record, index, "image"),
	}
	if p.ID == "" || p.Name == "" {
		return p, fmt.Errorf("invalid product row (missing id or name) for %q", p.Name)
	}

	var err error
	if p.Price, err = decimal.NewFromString(pick(record, index, "price")); err != nil {
		return p, fmt.Errorf("product %q: price: %w", p.ID, err)
	}
	p.OriginalPrice = p.Price
	if raw := pick(record, index, "original_price"); raw != "" {
		if p.OriginalPrice, err = decimal.NewFromString(raw); err != nil {
			return p, fmt.Errorf("product %q: original_price: %w", p.ID, err)
		}
	}
	if p.Price.IsNegative() || p.OriginalPrice.IsNegative() {
		return p, fmt.Errorf("product %q: negative price", p.ID)
	}
	if p.Rating, err = parseFloat(pick(record, index, "rating")); err != nil {
		return p, fmt.Errorf("product %q: rating: %w", p.ID, err)
	}
	if p.Reviews, err = parseInt(pick(record, index, "reviews")); err != nil {
		return p, fmt.Errorf("product %q: reviews: %w", p.ID, err)
	}
	if p.InStock, err = parseInt(pick(record, index, "in_stock")); err != nil {
		return p, fmt.Errorf("product %q: in_stock: %w", p.ID, err)
	}
	if raw := pick(record, index, "bestseller"); raw != "" {
		if p.Bestseller, err = strconv.ParseBool(raw); err != nil {
			return p, fmt.Errorf("product %q: bestseller: %w", p.ID, err)
		}
	}
	return p, nil
}

func parseInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}

func parseFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func titleCase(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
