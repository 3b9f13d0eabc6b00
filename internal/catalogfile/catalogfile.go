// Package catalogfile reads a storefront catalog from YAML.
package catalogfile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"souvenir-shop/internal/domain"
)

// Money is a decimal amount written as a plain YAML scalar (850, 99.50, "1200").
type Money struct {
	decimal.Decimal
}

func (m *Money) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: money must be a scalar", node.Line)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q: %w", node.Line, node.Value, err)
	}
	if d.IsNegative() {
		return fmt.Errorf("line %d: negative amount %q", node.Line, node.Value)
	}
	m.Decimal = d
	return nil
}

func (m Money) MarshalYAML() (any, error) {
	return m.String(), nil
}

type categoryEntry struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Count int    `yaml:"count,omitempty"`
}

type priceRangeEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Min  Money  `yaml:"min"`
	Max  *Money `yaml:"max,omitempty"`
}

type productEntry struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description"`
	Price         Money   `yaml:"price"`
	OriginalPrice *Money  `yaml:"original_price,omitempty"`
	Category      string  `yaml:"category"`
	Image         string  `yaml:"image"`
	Rating        float64 `yaml:"rating"`
	Reviews       int     `yaml:"reviews"`
	InStock       int     `yaml:"in_stock"`
	Bestseller    bool    `yaml:"bestseller"`
}

// Document is a parsed catalog file. It implements catalog.Source.
type Document struct {
	CategoryEntries []categoryEntry   `yaml:"categories"`
	RangeEntries    []priceRangeEntry `yaml:"price_ranges,omitempty"`
	ProductEntries  []productEntry    `yaml:"products"`
}

// Load reads and validates a catalog file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a catalog from memory.
func Parse(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a catalog document. Unknown fields are rejected.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) validate() error {
	categories := make(map[string]bool, len(d.CategoryEntries))
	for _, c := range d.CategoryEntries {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("category %q: id required", c.Name)
		}
		categories[c.ID] = true
	}
	products := make(map[string]bool, len(d.ProductEntries))
	for _, p := range d.ProductEntries {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("product %q: id required", p.Name)
		}
		if products[p.ID] {
			return fmt.Errorf("product %s: duplicate id", p.ID)
		}
		products[p.ID] = true
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("product %s: name required", p.ID)
		}
		if len(categories) > 0 && !categories[p.Category] {
			return fmt.Errorf("product %s: unknown category %q", p.ID, p.Category)
		}
		if p.InStock < 0 || p.Reviews < 0 {
			return fmt.Errorf("product %s: stock and reviews must not be negative", p.ID)
		}
		if p.Rating < 0 || p.Rating > 5 {
			return fmt.Errorf("product %s: rating %.1f outside 0-5", p.ID, p.Rating)
		}
	}
	ranges := make(map[string]bool, len(d.RangeEntries))
	for _, r := range d.RangeEntries {
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("price range %q: id required", r.Name)
		}
		if ranges[r.ID] {
			return fmt.Errorf("price range %s: duplicate id", r.ID)
		}
		ranges[r.ID] = true
		if r.Max != nil && r.Max.LessThan(r.Min.Decimal) {
			return fmt.Errorf("price range %s: max below min", r.ID)
		}
	}
	return nil
}

func (d *Document) Products(context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(d.ProductEntries))
	for _, p := range d.ProductEntries {
		original := p.Price.Decimal
		if p.OriginalPrice != nil {
			original = p.OriginalPrice.Decimal
		}
		out = append(out, domain.Product{
			ID:            p.ID,
			Name:          p.Name,
			Description:   p.Description,
			Price:         p.Price.Decimal,
			OriginalPrice: original,
			Category:      p.Category,
			Image:         p.Image,
			Rating:        p.Rating,
			Reviews:       p.Reviews,
			InStock:       p.InStock,
			Bestseller:    p.Bestseller,
		})
	}
	return out, nil
}

func (d *Document) Categories(context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(d.CategoryEntries))
	for _, c := range d.CategoryEntries {
		out = append(out, domain.Category{Key: c.ID, Name: c.Name, Count: c.Count})
	}
	return out, nil
}

// PriceRanges returns the file's ranges, or nil so the catalog applies its defaults.
func (d *Document) PriceRanges(context.Context) ([]domain.PriceRange, error) {
	if len(d.RangeEntries) == 0 {
		return nil, nil
	}
	out := make([]domain.PriceRange, 0, len(d.RangeEntries))
	for _, r := range d.RangeEntries {
		pr := domain.PriceRange{ID: r.ID, Name: r.Name, Min: r.Min.Decimal}
		if r.Max != nil {
			upper := r.Max.Decimal
			pr.Max = &upper
		}
		out = append(out, pr)
	}
	return out, nil
}

// FromCatalog builds a document from domain values, for writing a catalog back out. The
// "all" entries are left out since loading adds them back. Category counts are written only
// when they differ from the number of products in the category.
func FromCatalog(products []domain.Product, categories []domain.Category, ranges []domain.PriceRange) *Document {
	doc := &Document{}
	counts := make(map[string]int)
	for _, p := range products {
		counts[p.Category]++
	}
	for _, c := range categories {
		if c.Key == domain.AllKey {
			continue
		}
		entry := categoryEntry{ID: c.Key, Name: c.Name}
		if c.Count != counts[c.Key] {
			entry.Count = c.Count
		}
		doc.CategoryEntries = append(doc.CategoryEntries, entry)
	}
	for _, r := range ranges {
		if r.ID == domain.AllKey {
			continue
		}
		entry := priceRangeEntry{ID: r.ID, Name: r.Name, Min: Money{r.Min}}
		if r.Max != nil {
			entry.Max = &Money{*r.Max}
		}
		doc.RangeEntries = append(doc.RangeEntries, entry)
	}
	for _, p := range products {
		original := Money{p.OriginalPrice}
		doc.ProductEntries = append(doc.ProductEntries, productEntry{
			ID:            p.ID,
			Name:          p.Name,
			Description:   p.Description,
			Price:         Money{p.Price},
			OriginalPrice: &original,
			Category:      p.Category,
			Image:         p.Image,
			Rating:        p.Rating,
			Reviews:       p.Reviews,
			InStock:       p.InStock,
			Bestseller:    p.Bestseller,
		})
	}
	return doc
}

// Encode writes the document as YAML.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
