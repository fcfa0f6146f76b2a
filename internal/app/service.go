package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"tradeJournal/config"
	"tradeJournal/internal/analytics"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
	"tradeJournal/internal/trace"
)

// Snapshot is the result of a background recalculation over the whole journal.
type Snapshot struct {
	ComputedAt    time.Time
	TradeCount    int
	ClosedCount   int
	TotalQuantity float64
	Tags          map[string]analytics.TagMetrics
	Performance   *analytics.PerformanceMetrics
}

// JournalService orchestrates the trade journal use cases.
type JournalService struct {
	cfg    *config.Config
	logger ports.Logger
	repo   ports.TradeRepository
	now    func() time.Time

	mu       sync.RWMutex // Protects snapshot
	snapshot *Snapshot
}

// NewJournalService creates a new application service instance.
func NewJournalService(cfg *config.Config, logger ports.Logger, repo ports.TradeRepository) (*JournalService, error) {
	if cfg == nil || logger == nil || repo == nil {
		return nil, fmt.Errorf("missing required dependencies for JournalService")
	}
	if cfg.InitialBalance <= 0 {
		return nil, fmt.Errorf("configuration InitialBalance must be positive")
	}
	return &JournalService{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		now:    time.Now,
	}, nil
}

// endSpan records err on the span before ending it.
func endSpan(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ports.ErrInvalidRequest, err)
}

// CreateTrade validates and stores a new trade.
func (s *JournalService) CreateTrade(ctx context.Context, trade *domain.Trade) (_ *domain.Trade, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.CreateTrade")
	defer func() { endSpan(span, err) }()

	if trade == nil {
		return nil, invalid(fmt.Errorf("trade is required"))
	}
	trade.Side = domain.ParseSide(string(trade.Side))
	if err := trade.Validate(); err != nil {
		return nil, invalid(err)
	}

	id, err := s.repo.Create(ctx, trade)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to store trade", ports.Fields{"symbol": trade.Symbol})
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}
	trade.ID = id
	span.SetAttributes(attribute.Int64("trade.id", id))
	s.logger.Info(ctx, "Trade created", ports.Fields{"tradeID": id, "symbol": trade.Symbol, "side": string(trade.Side)})
	return trade, nil
}

// ListTrades returns every stored trade ordered by ID.
func (s *JournalService) ListTrades(ctx context.Context) (_ []*domain.Trade, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.ListTrades")
	defer func() { endSpan(span, err) }()

	trades, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// GetTrade returns the trade with the given ID or an error wrapping ports.ErrNotFound.
func (s *JournalService) GetTrade(ctx context.Context, id int64) (_ *domain.Trade, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.GetTrade", oteltrace.WithAttributes(attribute.Int64("trade.id", id)))
	defer func() { endSpan(span, err) }()

	return s.findTrade(ctx, id)
}

func (s *JournalService) findTrade(ctx context.Context, id int64) (*domain.Trade, error) {
	trade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load trade %d: %w", id, err)
	}
	if trade == nil {
		return nil, fmt.Errorf("trade %d: %w", id, ports.ErrNotFound)
	}
	return trade, nil
}

// UpdateTrade merges patch onto the stored trade, revalidates and persists it.
func (s *JournalService) UpdateTrade(ctx context.Context, id int64, patch domain.TradePatch) (_ *domain.Trade, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.UpdateTrade", oteltrace.WithAttributes(attribute.Int64("trade.id", id)))
	defer func() { endSpan(span, err) }()

	current, err := s.findTrade(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(*current)
	updated.ID = id
	updated.Side = domain.ParseSide(string(updated.Side))
	if err := updated.Validate(); err != nil {
		return nil, invalid(err)
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		s.logger.Error(ctx, err, "Failed to update trade", ports.Fields{"tradeID": id})
		return nil, fmt.Errorf("failed to update trade %d: %w", id, err)
	}
	s.logger.Info(ctx, "Trade updated", ports.Fields{"tradeID": id, "closed": updated.IsClosed()})
	return &updated, nil
}

// DeleteTrade removes a trade and returns what was stored.
func (s *JournalService) DeleteTrade(ctx context.Context, id int64) (_ *domain.Trade, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.DeleteTrade", oteltrace.WithAttributes(attribute.Int64("trade.id", id)))
	defer func() { endSpan(span, err) }()

	trade, err := s.findTrade(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete trade %d: %w", id, err)
	}
	s.logger.Info(ctx, "Trade deleted", ports.Fields{"tradeID": id})
	return trade, nil
}

// TradeAnalytics computes P&L and return for one stored trade.
func (s *JournalService) TradeAnalytics(ctx context.Context, id int64) (_ analytics.TradeMetrics, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.TradeAnalytics", oteltrace.WithAttributes(attribute.Int64("trade.id", id)))
	defer func() { endSpan(span, err) }()

	trade, err := s.findTrade(ctx, id)
	if err != nil {
		return analytics.TradeMetrics{}, err
	}
	metrics, err := analytics.ComputeTradeMetrics(trade)
	if err != nil {
		s.logger.Debug(ctx, "Trade analytics unavailable", ports.Fields{"tradeID": id, "reason": err.Error()})
		return analytics.TradeMetrics{}, err
	}
	return metrics, nil
}

// TagSummary aggregates every closed trade by tag.
func (s *JournalService) TagSummary(ctx context.Context) (_ map[string]analytics.TagMetrics, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.TagSummary")
	defer func() { endSpan(span, err) }()

	trades, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades for summary: %w", err)
	}
	return analytics.AggregateByTag(trades), nil
}

// Stats computes filtered trade statistics over the journal.
func (s *JournalService) Stats(ctx context.Context, filter analytics.StatsFilter) (_ analytics.Stats, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.Stats")
	defer func() { endSpan(span, err) }()

	if !filter.Start.IsZero() && !filter.End.IsZero() && filter.End.Before(filter.Start) {
		return analytics.Stats{}, invalid(fmt.Errorf("end %s is before start %s",
			filter.End.Format(time.RFC3339), filter.Start.Format(time.RFC3339)))
	}

	trades, err := s.repo.FindAll(ctx)
	if err != nil {
		return analytics.Stats{}, fmt.Errorf("failed to load trades for stats: %w", err)
	}
	return analytics.CalculateStats(trades, filter), nil
}

// Performance replays the closed trades as an equity curve from the configured initial balance.
func (s *JournalService) Performance(ctx context.Context) (_ *analytics.PerformanceMetrics, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.Performance")
	defer func() { endSpan(span, err) }()

	trades, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades for performance: %w", err)
	}
	return analytics.AnalyzePerformance(trades, s.cfg.InitialBalance), nil
}

// Greeks computes Black-Scholes delta and gamma.
func (s *JournalService) Greeks(ctx context.Context, spot, strike, expiry, rate, vol float64, optionType string) (_ analytics.Greeks, err error) {
	_, span := trace.StartSpan(ctx, "journal.Greeks")
	defer func() { endSpan(span, err) }()

	return analytics.OptionGreeks(spot, strike, expiry, rate, vol, optionType)
}

// Recalculate rebuilds the journal snapshot and keeps it as the latest one.
func (s *JournalService) Recalculate(ctx context.Context) (_ *Snapshot, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.Recalculate")
	defer func() { endSpan(span, err) }()

	start := s.now()
	trades, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades for recalculation: %w", err)
	}

	snap := &Snapshot{
		ComputedAt:  start,
		TradeCount:  len(trades),
		Tags:        analytics.AggregateByTag(trades),
		Performance: analytics.AnalyzePerformance(trades, s.cfg.InitialBalance),
	}
	for _, t := range trades {
		snap.TotalQuantity += t.Quantity
		if t.IsClosed() {
			snap.ClosedCount++
		}
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	s.logger.Info(ctx, "Journal recalculated", ports.Fields{
		"trades":   snap.TradeCount,
		"closed":   snap.ClosedCount,
		"tags":     len(snap.Tags),
		"duration": s.now().Sub(start).String(),
	})
	return snap, nil
}

// LatestSnapshot returns the most recent recalculation, or nil before the first run.
func (s *JournalService) LatestSnapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}
