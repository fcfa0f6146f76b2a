package analytics

import (
	"time"

	"tradeJournal/internal/domain"
)

// StatsFilter narrows the trades considered by CalculateStats.
// Zero values disable the corresponding filter.
type StatsFilter struct {
	Start time.Time // Inclusive lower bound on entry time
	End   time.Time // Inclusive upper bound on entry time
	Tags  []string  // Every listed tag must be present on the trade
}

// Stats summarises a filtered set of trades.
type Stats struct {
	TradeCount    int
	TotalQuantity float64
	AveragePrice  float64 // Quantity-weighted average entry price
}

// CalculateStats filters trades and returns count, total quantity and the
// quantity-weighted average entry price. Open and closed trades both count.
func CalculateStats(trades []*domain.Trade, filter StatsFilter) Stats {
	var stats Stats
	var totalValue float64

	for _, trade := range filterTrades(trades, filter) {
		stats.TradeCount++
		stats.TotalQuantity += trade.Quantity
		totalValue += trade.EntryPrice * trade.Quantity
	}

	if stats.TotalQuantity != 0 {
		stats.AveragePrice = totalValue / stats.TotalQuantity
	}
	return stats
}

func filterTrades(trades []*domain.Trade, filter StatsFilter) []*domain.Trade {
	required := make(map[string]struct{}, len(filter.Tags))
	for _, tag := range filter.Tags {
		if tag != "" {
			required[tag] = struct{}{}
		}
	}

	result := make([]*domain.Trade, 0, len(trades))
	for _, trade := range trades {
		if trade == nil {
			continue
		}
		if !filter.Start.IsZero() && trade.EntryTime.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && trade.EntryTime.After(filter.End) {
			continue
		}
		if len(required) > 0 && !hasAllTags(trade, required) {
			continue
		}
		result = append(result, trade)
	}
	return result
}

func hasAllTags(trade *domain.Trade, required map[string]struct{}) bool {
	have := make(map[string]struct{})
	for _, tag := range trade.TagList() {
		have[tag] = struct{}{}
	}
	for tag := range required {
		if _, ok := have[tag]; !ok {
			return false
		}
	}
	return true
}
