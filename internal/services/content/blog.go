// Package content serves the static marketing pages: the news blog and the
// pricing tiers.
package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/ports/outbound"
)

// AllCategories selects every article.
const AllCategories = "all"

// longDateLayout renders publication dates, e.g. "January 15, 2024".
const longDateLayout = "January 2, 2006"

// Service reads the content catalog and applies the page filters.
type Service struct {
	catalog outbound.ContentCatalog
}

// NewService creates a new Service.
func NewService(catalog outbound.ContentCatalog) (*Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	return &Service{catalog: catalog}, nil
}

// BlogPage is the filtered article list plus the category choices.
type BlogPage struct {
	Articles   []entity.Article `json:"articles"`
	Categories []string         `json:"categories"`
	Category   string           `json:"category"`
	Query      string           `json:"query"`
}

// Blog returns the articles in category that match query.
func (s *Service) Blog(ctx context.Context, category, query string) (*BlogPage, error) {
	articles, err := s.catalog.Articles(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading articles: %w", err)
	}
	if category == "" {
		category = AllCategories
	}
	return &BlogPage{
		Articles:   FilterArticles(articles, category, query),
		Categories: Categories(articles),
		Category:   category,
		Query:      query,
	}, nil
}

// FilterArticles keeps the articles of category ("all" keeps every one) and
// then those whose title or excerpt contains query, ignoring case.
func FilterArticles(articles []entity.Article, category, query string) []entity.Article {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if category != "" && category != AllCategories && a.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(a.Title), query) &&
			!strings.Contains(strings.ToLower(a.Excerpt), query) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Categories returns "all" followed by each article category in order of
// first appearance.
func Categories(articles []entity.Article) []string {
	out := []string{AllCategories}
	seen := map[string]bool{AllCategories: true}
	for _, a := range articles {
		if !seen[a.Category] {
			seen[a.Category] = true
			out = append(out, a.Category)
		}
	}
	return out
}

// FormatDate renders t as a long US date in loc. A nil loc means UTC.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(longDateLayout)
}
