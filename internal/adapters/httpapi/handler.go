// Package httpapi exposes the trade journal over a gin REST API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tradeJournal/internal/analytics"
	"tradeJournal/internal/app"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
	"tradeJournal/internal/utils"
)

// JournalService is the application API the handlers drive.
type JournalService interface {
	CreateTrade(ctx context.Context, trade *domain.Trade) (*domain.Trade, error)
	ListTrades(ctx context.Context) ([]*domain.Trade, error)
	GetTrade(ctx context.Context, id int64) (*domain.Trade, error)
	UpdateTrade(ctx context.Context, id int64, patch domain.TradePatch) (*domain.Trade, error)
	DeleteTrade(ctx context.Context, id int64) (*domain.Trade, error)
	TradeAnalytics(ctx context.Context, id int64) (analytics.TradeMetrics, error)
	TagSummary(ctx context.Context) (map[string]analytics.TagMetrics, error)
	Stats(ctx context.Context, filter analytics.StatsFilter) (analytics.Stats, error)
	Performance(ctx context.Context) (*analytics.PerformanceMetrics, error)
	Greeks(ctx context.Context, spot, strike, expiry, rate, vol float64, optionType string) (analytics.Greeks, error)
	LatestSnapshot() *app.Snapshot
}

// Handler serves the journal REST endpoints.
type Handler struct {
	svc    JournalService
	logger ports.Logger
}

// NewHandler creates the HTTP handler.
func NewHandler(svc JournalService, logger ports.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// NewRouter builds a gin engine with recovery, request logging and, when
// apiToken is set, bearer authentication on everything except /healthz.
func NewRouter(h *Handler, apiToken string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(h.logger))
	router.GET("/healthz", h.Health)

	api := router.Group("/")
	api.Use(BearerAuth(apiToken))
	h.RegisterRoutes(api)
	return router
}

// RegisterRoutes registers the journal routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	trades := router.Group("/trades")
	{
		trades.GET("", h.ListTrades)
		trades.POST("", h.CreateTrade)
		trades.GET("/:id", h.GetTrade)
		trades.PUT("/:id", h.UpdateTrade)
		trades.DELETE("/:id", h.DeleteTrade)
		trades.GET("/:id/analytics", h.TradeAnalytics)
	}
	an := router.Group("/analytics")
	{
		an.GET("/summary", h.TagSummary)
		an.GET("/summary.csv", h.TagSummaryCSV)
		an.GET("/performance", h.Performance)
		an.GET("/snapshot", h.Snapshot)
		an.POST("/greeks", h.Greeks)
	}
	router.GET("/stats", h.Stats)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListTrades returns every trade.
func (h *Handler) ListTrades(c *gin.Context) {
	trades, err := h.svc.ListTrades(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTradeResponses(trades))
}

// CreateTrade stores a new trade.
func (h *Handler) CreateTrade(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, badRequest(err))
		return
	}
	trade, err := req.toTrade()
	if err != nil {
		h.fail(c, badRequest(err))
		return
	}
	created, err := h.svc.CreateTrade(c.Request.Context(), trade)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTradeResponse(created))
}

// GetTrade returns one trade.
func (h *Handler) GetTrade(c *gin.Context) {
	id, ok := h.tradeID(c)
	if !ok {
		return
	}
	trade, err := h.svc.GetTrade(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTradeResponse(trade))
}

// UpdateTrade merges the supplied fields onto a stored trade.
func (h *Handler) UpdateTrade(c *gin.Context) {
	id, ok := h.tradeID(c)
	if !ok {
		return
	}
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, badRequest(err))
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		h.fail(c, badRequest(err))
		return
	}
	updated, err := h.svc.UpdateTrade(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTradeResponse(updated))
}

// DeleteTrade removes a trade and echoes it back.
func (h *Handler) DeleteTrade(c *gin.Context) {
	id, ok := h.tradeID(c)
	if !ok {
		return
	}
	removed, err := h.svc.DeleteTrade(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTradeResponse(removed))
}

// TradeAnalytics returns P&L and return for one trade.
func (h *Handler) TradeAnalytics(c *gin.Context) {
	id, ok := h.tradeID(c)
	if !ok {
		return
	}
	m, err := h.svc.TradeAnalytics(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, metricsResponse{PNL: Float(m.PNL), ReturnPct: Float(m.ReturnPct)})
}

// TagSummary returns per-tag aggregates.
func (h *Handler) TagSummary(c *gin.Context) {
	summary, err := h.svc.TagSummary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTagSummaryResponse(summary))
}

// TagSummaryCSV returns per-tag aggregates as CSV.
func (h *Handler) TagSummaryCSV(c *gin.Context) {
	summary, err := h.svc.TagSummary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="tag_summary.csv"`)
	c.Status(http.StatusOK)
	if err := utils.WriteTagSummaryCSV(c.Writer, summary); err != nil {
		h.logger.Error(c.Request.Context(), err, "Failed to write tag summary CSV")
	}
}

// Performance returns the equity-curve analysis of closed trades.
func (h *Handler) Performance(c *gin.Context) {
	perf, err := h.svc.Performance(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPerformanceResponse(perf))
}

// Snapshot returns the latest background recalculation.
func (h *Handler) Snapshot(c *gin.Context) {
	snap := h.svc.LatestSnapshot()
	if snap == nil {
		h.fail(c, fmt.Errorf("no recalculation has run yet: %w", ports.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, newSnapshotResponse(snap))
}

// Greeks computes option delta and gamma.
func (h *Handler) Greeks(c *gin.Context) {
	var req greeksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, badRequest(err))
		return
	}
	if req.Spot == nil || req.Strike == nil || req.Time == nil || req.Rate == nil || req.Volatility == nil {
		h.fail(c, badRequest(errors.New("spot, strike, time, rate and volatility are required")))
		return
	}
	g, err := h.svc.Greeks(c.Request.Context(), *req.Spot, *req.Strike, *req.Time, *req.Rate, *req.Volatility, req.OptionType)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, greeksResponse{Delta: Float(g.Delta), Gamma: Float(g.Gamma)})
}

// Stats returns filtered trade statistics.
func (h *Handler) Stats(c *gin.Context) {
	var filter analytics.StatsFilter
	var err error
	if v := c.Query("start"); v != "" {
		if filter.Start, err = utils.ParseTime(v); err != nil {
			h.fail(c, badRequest(fmt.Errorf("start: %w", err)))
			return
		}
	}
	if v := c.Query("end"); v != "" {
		if filter.End, err = parseEnd(v); err != nil {
			h.fail(c, badRequest(fmt.Errorf("end: %w", err)))
			return
		}
	}
	filter.Tags = domain.ParseTags(c.Query("tags"))

	stats, err := h.svc.Stats(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse{
		TradeCount:    stats.TradeCount,
		TotalQuantity: Float(stats.TotalQuantity),
		AveragePrice:  Float(stats.AveragePrice),
	})
}

// parseEnd treats a bare date as the whole day.
func parseEnd(v string) (time.Time, error) {
	ts, err := utils.ParseTime(v)
	if err != nil {
		return ts, err
	}
	if !strings.Contains(v, "T") && !strings.Contains(v, ":") {
		ts = ts.Add(24*time.Hour - time.Nanosecond)
	}
	return ts, nil
}

func (h *Handler) tradeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.fail(c, badRequest(fmt.Errorf("invalid trade id '%s'", c.Param("id"))))
		return 0, false
	}
	return id, true
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", ports.ErrInvalidRequest, err)
}

// fail maps err onto a status code and writes the error body.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	ctx := c.Request.Context()
	if status >= http.StatusInternalServerError {
		h.logger.Error(ctx, err, "Request failed", ports.Fields{"path": c.FullPath()})
	} else {
		h.logger.Debug(ctx, "Request rejected", ports.Fields{"path": c.FullPath(), "status": status, "reason": err.Error()})
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ports.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ports.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
