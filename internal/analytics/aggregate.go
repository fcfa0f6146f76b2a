package analytics

import "tradeJournal/internal/domain"

// TagMetrics is the roll-up of closed trades carrying one tag.
type TagMetrics struct {
	Trades    int     // Number of closed trades carrying the tag
	PNL       float64 // Summed net P&L
	ReturnPct float64 // Mean return across the tag's trades
}

// AggregateByTag groups closed trades by tag. Open trades are skipped and
// trades without tags are bucketed under domain.UntaggedLabel. A trade with
// several tags contributes to each of them.
//
// A trade with zero invested capital has a NaN return, which is summed as-is
// and makes its tag's mean NaN as well.
func AggregateByTag(trades []*domain.Trade) map[string]TagMetrics {
	summary := make(map[string]TagMetrics)

	for _, trade := range trades {
		if trade == nil || !trade.IsClosed() {
			continue
		}
		metrics, err := ComputeTradeMetrics(trade)
		if err != nil {
			continue
		}

		tags := trade.TagList()
		if len(tags) == 0 {
			tags = []string{domain.UntaggedLabel}
		}
		for _, tag := range tags {
			m := summary[tag]
			m.Trades++
			m.PNL += metrics.PNL
			m.ReturnPct += metrics.ReturnPct
			summary[tag] = m
		}
	}

	// Convert summed returns into means
	for tag, m := range summary {
		if m.Trades > 0 {
			m.ReturnPct /= float64(m.Trades)
			summary[tag] = m
		}
	}
	return summary
}
