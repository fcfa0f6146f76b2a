package analytics

import (
	"sort"
	"time"

	"tradeJournal/internal/domain"
)

// PerformanceMetrics describes the equity path produced by a set of closed trades.
type PerformanceMetrics struct {
	// Basic Metrics
	TotalTrades        int
	WinningTrades      int
	LosingTrades       int
	WinRate            float64
	TotalProfit        float64
	AverageWin         float64
	AverageLoss        float64
	ProfitFactor       float64 // Gross profit over gross loss; 0 when there are no losses
	FinalBalance       float64
	ReturnOnInvestment float64

	// Path Metrics
	MaxDrawdown          float64 // Largest peak-to-trough fall as a fraction of the peak
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	AverageHoldingTime   time.Duration
	Expectancy           float64
	MonthlyPNL           map[string]float64 // Keyed by "2006-01" of the exit time
	EquityCurve          []EquityPoint
}

// EquityPoint is the balance after a trade closed.
type EquityPoint struct {
	Time     time.Time
	Value    float64
	Drawdown float64
}

// AnalyzePerformance replays closed trades in exit order starting from
// initialBalance. Open trades are ignored; the input slice is not reordered.
func AnalyzePerformance(trades []*domain.Trade, initialBalance float64) *PerformanceMetrics {
	metrics := &PerformanceMetrics{
		FinalBalance: initialBalance,
		MonthlyPNL:   make(map[string]float64),
		EquityCurve:  make([]EquityPoint, 0),
	}

	type closedTrade struct {
		trade    *domain.Trade
		pnl      float64
		closedAt time.Time
	}
	closed := make([]closedTrade, 0, len(trades))
	for _, trade := range trades {
		if trade == nil {
			continue
		}
		m, err := ComputeTradeMetrics(trade)
		if err != nil {
			continue
		}
		closedAt := trade.EntryTime
		if trade.ExitTime != nil {
			closedAt = *trade.ExitTime
		}
		closed = append(closed, closedTrade{trade: trade, pnl: m.PNL, closedAt: closedAt})
	}
	if len(closed) == 0 {
		return metrics
	}

	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].closedAt.Before(closed[j].closedAt)
	})

	balance := initialBalance
	peak := initialBalance
	var grossWin, grossLoss float64
	var consecutiveWins, consecutiveLosses int
	var totalHolding time.Duration
	var heldTrades int

	for _, c := range closed {
		metrics.TotalTrades++
		if c.pnl > 0 {
			metrics.WinningTrades++
			grossWin += c.pnl
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			metrics.LosingTrades++
			grossLoss += c.pnl
			consecutiveLosses++
			consecutiveWins = 0
		}
		if consecutiveWins > metrics.MaxConsecutiveWins {
			metrics.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > metrics.MaxConsecutiveLosses {
			metrics.MaxConsecutiveLosses = consecutiveLosses
		}

		balance += c.pnl
		metrics.TotalProfit += c.pnl
		metrics.MonthlyPNL[c.closedAt.Format("2006-01")] += c.pnl

		if balance > peak {
			peak = balance
		}
		var drawdown float64
		if peak > 0 {
			drawdown = (peak - balance) / peak
		}
		if drawdown > metrics.MaxDrawdown {
			metrics.MaxDrawdown = drawdown
		}
		metrics.EquityCurve = append(metrics.EquityCurve, EquityPoint{
			Time:     c.closedAt,
			Value:    balance,
			Drawdown: drawdown,
		})

		if c.trade.ExitTime != nil {
			totalHolding += c.trade.ExitTime.Sub(c.trade.EntryTime)
			heldTrades++
		}
	}

	metrics.FinalBalance = balance
	metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades)
	if metrics.WinningTrades > 0 {
		metrics.AverageWin = grossWin / float64(metrics.WinningTrades)
	}
	if metrics.LosingTrades > 0 {
		metrics.AverageLoss = grossLoss / float64(metrics.LosingTrades)
	}
	if grossLoss != 0 {
		metrics.ProfitFactor = grossWin / -grossLoss
	}
	if initialBalance != 0 {
		metrics.ReturnOnInvestment = metrics.TotalProfit / initialBalance
	}
	if heldTrades > 0 {
		metrics.AverageHoldingTime = totalHolding / time.Duration(heldTrades)
	}
	metrics.Expectancy = metrics.WinRate*metrics.AverageWin + (1-metrics.WinRate)*metrics.AverageLoss

	return metrics
}

// MonthlyReturn is the P&L realised in one calendar month.
type MonthlyReturn struct {
	Month time.Time
	PNL   float64
}

// MonthlyReturns returns MonthlyPNL as a slice sorted by month.
func (m *PerformanceMetrics) MonthlyReturns() []MonthlyReturn {
	returns := make([]MonthlyReturn, 0, len(m.MonthlyPNL))
	for month, pnl := range m.MonthlyPNL {
		date, _ := time.Parse("2006-01", month)
		returns = append(returns, MonthlyReturn{Month: date, PNL: pnl})
	}
	sort.Slice(returns, func(i, j int) bool {
		return returns[i].Month.Before(returns[j].Month)
	})
	return returns
}
