package outbound

import (
	"context"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
)

// ContentCatalog supplies the static marketing content: news articles and
// pricing tiers.
type ContentCatalog interface {
	Articles(ctx context.Context) ([]entity.Article, error)
	Plans(ctx context.Context) ([]entity.Plan, error)
	AddOns(ctx context.Context) ([]entity.AddOn, error)
	FAQs(ctx context.Context) ([]entity.FAQ, error)
}
