package entity

import (
	"fmt"
	"time"
)

// Article is a blog post from the static news catalog.
type Article struct {
	ID          int       `yaml:"id" json:"id"`
	Title       string    `yaml:"title" json:"title"`
	Excerpt     string    `yaml:"excerpt" json:"excerpt"`
	Content     string    `yaml:"content" json:"content"`
	Author      string    `yaml:"author" json:"author"`
	PublishedAt time.Time `yaml:"published_at" json:"published_at"`
	Category    string    `yaml:"category" json:"category"`
	Image       string    `yaml:"image" json:"image"`
	ReadTime    string    `yaml:"read_time" json:"read_time"`
}

// BillingCycle selects which price of a plan applies.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// ParseBillingCycle validates a billing cycle name. Empty means monthly.
func ParseBillingCycle(s string) (BillingCycle, error) {
	switch BillingCycle(s) {
	case "", BillingMonthly:
		return BillingMonthly, nil
	case BillingYearly:
		return BillingYearly, nil
	default:
		return "", fmt.Errorf("unknown billing cycle %q", s)
	}
}

// Plan is a subscription tier.
type Plan struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description" json:"description"`
	MonthlyPrice int      `yaml:"monthly_price" json:"monthly_price"`
	YearlyPrice  int      `yaml:"yearly_price" json:"yearly_price"`
	Popular      bool     `yaml:"popular" json:"popular"`
	Features     []string `yaml:"features" json:"features"`
	Limitations  []string `yaml:"limitations" json:"limitations"`
}

// AddOn is an optional paid extra.
type AddOn struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Price       int    `yaml:"price" json:"price"`
}

// FAQ is a question shown on the pricing page.
type FAQ struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}
