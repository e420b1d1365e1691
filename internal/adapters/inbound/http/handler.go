// handler.go provides the JSON API over the market services.
//
// Routes:
//   - GET  /api/currencies, GET/PUT /api/currency
//   - GET  /api/markets, POST /api/markets/retry, GET /api/markets/stats
//   - GET  /api/coins/:id
//   - GET  /api/blog, GET /api/pricing
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/ports/inbound"
	"github.com/archon-research/cryptoplace/internal/services/content"
	"github.com/archon-research/cryptoplace/internal/services/listing"
	"github.com/archon-research/cryptoplace/internal/services/market_data"
)

// maxPerPage caps the per_page query parameter.
const maxPerPage = 250

// ContentPages serves the blog and pricing pages.
type ContentPages interface {
	Blog(ctx context.Context, category, query string) (*content.BlogPage, error)
	Pricing(ctx context.Context, cycle entity.BillingCycle) (*content.PricingPage, error)
}

// HandlerConfig holds configuration for the Handler.
type HandlerConfig struct {
	// MarketPageSize is the default per_page of /api/markets.
	MarketPageSize int

	// Location renders chart labels and article dates. Defaults to UTC.
	Location *time.Location

	// Logger is the structured logger.
	Logger *slog.Logger
}

// HandlerConfigDefaults returns a config with default values.
func HandlerConfigDefaults() HandlerConfig {
	return HandlerConfig{
		MarketPageSize: listing.MarketPageSize,
		Location:       time.UTC,
		Logger:         slog.Default(),
	}
}

// Handler implements the API routes.
type Handler struct {
	config  HandlerConfig
	store   inbound.MarketStore
	coins   inbound.CoinDetailFetcher
	content ContentPages
	logger  *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(config HandlerConfig, store inbound.MarketStore, coins inbound.CoinDetailFetcher, pages ContentPages) (*Handler, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if coins == nil {
		return nil, fmt.Errorf("coin detail fetcher is required")
	}
	if pages == nil {
		return nil, fmt.Errorf("content pages are required")
	}

	defaults := HandlerConfigDefaults()
	if config.MarketPageSize <= 0 {
		config.MarketPageSize = defaults.MarketPageSize
	}
	if config.Location == nil {
		config.Location = defaults.Location
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}

	return &Handler{
		config:  config,
		store:   store,
		coins:   coins,
		content: pages,
		logger:  config.Logger.With("component", "api-handler"),
	}, nil
}

// RegisterRoutes registers the API routes on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/currencies", h.listCurrencies)
	api.GET("/currency", h.getCurrency)
	api.PUT("/currency", h.setCurrency)
	api.GET("/markets", h.listMarkets)
	api.POST("/markets/retry", h.retryMarkets)
	api.GET("/markets/stats", h.marketStats)
	api.GET("/coins/:id", h.getCoin)
	api.GET("/blog", h.getBlog)
	api.GET("/pricing", h.getPricing)
}

func (h *Handler) listCurrencies(c *gin.Context) {
	supported := entity.SupportedCurrencies()
	out := make([]currencyJSON, 0, len(supported))
	for _, cur := range supported {
		out = append(out, toCurrencyJSON(cur))
	}
	c.JSON(http.StatusOK, gin.H{
		"currencies": out,
		"active":     h.store.Currency().Name,
	})
}

func (h *Handler) getCurrency(c *gin.Context) {
	c.JSON(http.StatusOK, toCurrencyJSON(h.store.Currency()))
}

func (h *Handler) setCurrency(c *gin.Context) {
	var req struct {
		Currency string `json:"currency" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing currency field"})
		return
	}

	// The fetch updates shared state, so it outlives a client that hangs up.
	err := h.store.SetCurrency(context.WithoutCancel(c.Request.Context()), req.Currency)
	switch {
	case errors.Is(err, entity.ErrUnknownCurrency):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.respondFetchError(c, err)
		return
	}

	state := h.store.State()
	c.JSON(http.StatusOK, gin.H{
		"currency": toCurrencyJSON(state.Currency),
		"status":   toStatusJSON(state),
	})
}

func (h *Handler) listMarkets(c *gin.Context) {
	q, err := h.parseMarketQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state := h.store.State()
	page := listing.Derive(state.Coins, q)

	items := make([]coinJSON, 0, len(page.Items))
	for _, coin := range page.Items {
		items = append(items, toCoinJSON(coin, state.Currency))
	}

	c.JSON(http.StatusOK, gin.H{
		"currency":    toCurrencyJSON(state.Currency),
		"status":      toStatusJSON(state),
		"coins":       items,
		"page":        page.Number,
		"per_page":    page.Size,
		"total_pages": page.TotalPages,
		"total_items": page.TotalItems,
		"query": gin.H{
			"q":        q.Search,
			"category": q.Category,
			"sort":     q.Sort.Field,
			"dir":      q.Sort.Direction,
		},
	})
}

func (h *Handler) parseMarketQuery(c *gin.Context) (listing.Query, error) {
	q := listing.MarketQuery()
	q.PageSize = h.config.MarketPageSize
	q.Search = c.Query("q")

	category, err := listing.ParseCategory(c.Query("category"))
	if err != nil {
		return q, err
	}
	q.Category = category

	if raw, ok := c.GetQuery("sort"); ok {
		field, err := listing.ParseSortField(raw)
		if err != nil {
			return q, err
		}
		q.Sort.Field = field
	}
	dir, err := listing.ParseDirection(c.Query("dir"))
	if err != nil {
		return q, err
	}
	q.Sort.Direction = dir

	if q.Page, err = intParam(c, "page", 1); err != nil {
		return q, err
	}
	if q.PageSize, err = intParam(c, "per_page", q.PageSize); err != nil {
		return q, err
	}
	if q.PageSize < 1 || q.PageSize > maxPerPage {
		return q, fmt.Errorf("per_page must be between 1 and %d", maxPerPage)
	}
	return q, nil
}

func intParam(c *gin.Context, name string, fallback int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func (h *Handler) retryMarkets(c *gin.Context) {
	if err := h.store.Retry(context.WithoutCancel(c.Request.Context())); err != nil {
		h.respondFetchError(c, err)
		return
	}
	state := h.store.State()
	c.JSON(http.StatusOK, gin.H{
		"currency": toCurrencyJSON(state.Currency),
		"status":   toStatusJSON(state),
	})
}

func (h *Handler) marketStats(c *gin.Context) {
	state := h.store.State()
	c.JSON(http.StatusOK, gin.H{
		"currency": toCurrencyJSON(state.Currency),
		"status":   toStatusJSON(state),
		"stats":    toStatsJSON(listing.Stats(state.Coins), state.Currency),
	})
}

// respondFetchError maps a failed market list fetch. The store keeps any
// stale coins, so the current state is returned alongside the error.
func (h *Handler) respondFetchError(c *gin.Context, err error) {
	state := h.store.State()
	body := gin.H{
		"error":    err.Error(),
		"currency": toCurrencyJSON(state.Currency),
		"status":   toStatusJSON(state),
	}
	if errors.Is(err, market_data.ErrSuperseded) {
		c.JSON(http.StatusConflict, body)
		return
	}
	h.logger.Warn("market fetch failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadGateway, body)
}

func (h *Handler) getCoin(c *gin.Context) {
	currency := h.store.Currency()
	if raw := c.Query("currency"); raw != "" {
		parsed, err := entity.ParseCurrency(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		currency = parsed
	}

	id := c.Param("id")
	page, err := h.coins.Fetch(c.Request.Context(), id, currency)
	switch {
	case errors.Is(err, entity.ErrCoinNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "coin not found", "id": id})
		return
	case err != nil:
		h.logger.Warn("coin fetch failed", "coin", id, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toCoinPageJSON(page, h.config.Location))
}

func (h *Handler) getBlog(c *gin.Context) {
	page, err := h.content.Blog(c.Request.Context(), c.Query("category"), c.Query("q"))
	if err != nil {
		h.logger.Error("loading blog failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load articles"})
		return
	}

	articles := make([]articleJSON, 0, len(page.Articles))
	for _, a := range page.Articles {
		articles = append(articles, articleJSON{
			Article:          a,
			PublishedDisplay: content.FormatDate(a.PublishedAt, h.config.Location),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"articles":   articles,
		"categories": page.Categories,
		"category":   page.Category,
		"q":          page.Query,
	})
}

func (h *Handler) getPricing(c *gin.Context) {
	cycle, err := entity.ParseBillingCycle(c.Query("cycle"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := h.content.Pricing(c.Request.Context(), cycle)
	if err != nil {
		h.logger.Error("loading pricing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pricing"})
		return
	}
	c.JSON(http.StatusOK, page)
}
