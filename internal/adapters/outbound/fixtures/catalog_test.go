package fixtures

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestNewCatalog_Embedded(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	ctx := context.Background()

	articles, _ := c.Articles(ctx)
	if len(articles) != 8 {
		t.Fatalf("expected 8 articles, got %d", len(articles))
	}
	first := articles[0]
	if first.Category != "bitcoin" || first.ReadTime != "5 min read" {
		t.Errorf("unexpected first article %+v", first)
	}
	if want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC); !first.PublishedAt.Equal(want) {
		t.Errorf("expected published %v, got %v", want, first.PublishedAt)
	}

	plans, _ := c.Plans(ctx)
	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}
	if plans[1].ID != "pro" || !plans[1].Popular || plans[1].MonthlyPrice != 29 || plans[1].YearlyPrice != 290 {
		t.Errorf("unexpected pro plan %+v", plans[1])
	}

	addOns, _ := c.AddOns(ctx)
	faqs, _ := c.FAQs(ctx)
	if len(addOns) != 4 || len(faqs) != 6 {
		t.Errorf("expected 4 add-ons and 6 faqs, got %d and %d", len(addOns), len(faqs))
	}
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	articles, _ := c.Articles(context.Background())
	articles[0].Title = "changed"

	again, _ := c.Articles(context.Background())
	if again[0].Title == "changed" {
		t.Error("catalog mutated through a returned slice")
	}
}

func TestNewCatalogFS_Errors(t *testing.T) {
	validPricing := &fstest.MapFile{Data: []byte("plans: []\nadd_ons: []\nfaqs: []\n")}

	tests := []struct {
		name    string
		fsys    fstest.MapFS
		wantErr string
	}{
		{
			name:    "missing articles",
			fsys:    fstest.MapFS{"pricing.yaml": validPricing},
			wantErr: "reading articles.yaml",
		},
		{
			name: "unknown field",
			fsys: fstest.MapFS{
				"articles.yaml": {Data: []byte("articles:\n  - id: 1\n    colour: red\n")},
				"pricing.yaml":  validPricing,
			},
			wantErr: "decoding articles.yaml",
		},
		{
			name: "duplicate id",
			fsys: fstest.MapFS{
				"articles.yaml": {Data: []byte("articles:\n  - id: 1\n  - id: 1\n")},
				"pricing.yaml":  validPricing,
			},
			wantErr: "duplicate article id 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalogFS(tt.fsys)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
