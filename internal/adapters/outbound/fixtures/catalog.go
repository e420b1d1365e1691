// Package fixtures implements the ContentCatalog port over YAML documents
// embedded in the binary.
package fixtures

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/ports/outbound"
)

// Compile-time check that Catalog implements outbound.ContentCatalog.
var _ outbound.ContentCatalog = (*Catalog)(nil)

//go:embed data/*.yaml
var embedded embed.FS

const (
	articlesFile = "articles.yaml"
	pricingFile  = "pricing.yaml"
)

type articlesDocument struct {
	Articles []entity.Article `yaml:"articles"`
}

type pricingDocument struct {
	Plans  []entity.Plan  `yaml:"plans"`
	AddOns []entity.AddOn `yaml:"add_ons"`
	FAQs   []entity.FAQ   `yaml:"faqs"`
}

// Catalog serves articles and pricing decoded once at construction.
// Returned slices are copies; the catalog itself is immutable.
type Catalog struct {
	articles []entity.Article
	pricing  pricingDocument
}

// NewCatalog decodes the embedded fixtures.
func NewCatalog() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("opening embedded fixtures: %w", err)
	}
	return NewCatalogFS(sub)
}

// NewCatalogFS decodes articles.yaml and pricing.yaml from fsys.
func NewCatalogFS(fsys fs.FS) (*Catalog, error) {
	var articles articlesDocument
	if err := decode(fsys, articlesFile, &articles); err != nil {
		return nil, err
	}
	var pricing pricingDocument
	if err := decode(fsys, pricingFile, &pricing); err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(articles.Articles))
	for _, a := range articles.Articles {
		if seen[a.ID] {
			return nil, fmt.Errorf("%s: duplicate article id %d", articlesFile, a.ID)
		}
		seen[a.ID] = true
	}

	return &Catalog{articles: articles.Articles, pricing: pricing}, nil
}

func decode(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

// Articles returns every article in catalog order.
func (c *Catalog) Articles(context.Context) ([]entity.Article, error) {
	return append([]entity.Article(nil), c.articles...), nil
}

// Plans returns the subscription tiers.
func (c *Catalog) Plans(context.Context) ([]entity.Plan, error) {
	return append([]entity.Plan(nil), c.pricing.Plans...), nil
}

// AddOns returns the optional extras.
func (c *Catalog) AddOns(context.Context) ([]entity.AddOn, error) {
	return append([]entity.AddOn(nil), c.pricing.AddOns...), nil
}

// FAQs returns the pricing questions.
func (c *Catalog) FAQs(context.Context) ([]entity.FAQ, error) {
	return append([]entity.FAQ(nil), c.pricing.FAQs...), nil
}
