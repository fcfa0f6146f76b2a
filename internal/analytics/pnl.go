// Package analytics holds the pure computations behind the journal: per-trade
// P&L, option Greeks, tag aggregation and trade statistics. Every function is
// synchronous, allocates no shared state and is safe for concurrent use.
package analytics

import (
	"fmt"
	"math"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// ErrMissingExitPrice is returned when P&L is requested for an open trade.
var ErrMissingExitPrice = fmt.Errorf("%w: exit price is required to compute P&L", ports.ErrInvalidRequest)

// TradeMetrics holds the P&L figures for a single closed trade.
type TradeMetrics struct {
	PNL       float64 // Net profit and loss after fees
	ReturnPct float64 // Net P&L over invested capital; NaN when nothing was invested
}

// ComputeTradeMetrics returns net P&L and return on capital for a closed trade.
// A zero invested capital yields a NaN return rather than an error.
func ComputeTradeMetrics(trade *domain.Trade) (TradeMetrics, error) {
	if trade == nil || trade.ExitPrice == nil {
		return TradeMetrics{}, ErrMissingExitPrice
	}

	gross := (*trade.ExitPrice - trade.EntryPrice) * trade.Quantity * trade.Side.Direction()
	net := gross - trade.FeesOrZero()
	invested := trade.EntryPrice * trade.Quantity

	ret := math.NaN()
	if invested != 0 {
		ret = net / invested
	}
	return TradeMetrics{PNL: net, ReturnPct: ret}, nil
}

// IsUndefined reports whether a computed ratio carries no meaningful value.
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}
