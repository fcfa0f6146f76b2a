package analytics

import (
	"testing"
	"time"

	"tradeJournal/internal/domain"
)

func tradeClosedAt(side domain.Side, qty, entry, exit float64, entryTime, exitTime time.Time) *domain.Trade {
	return &domain.Trade{
		Symbol:     "BTCUSD",
		Side:       side,
		Quantity:   qty,
		EntryPrice: entry,
		EntryTime:  entryTime,
		ExitPrice:  &exit,
		ExitTime:   &exitTime,
	}
}

func TestAnalyzePerformance(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	initialBalance := 10000.0
	trades := []*domain.Trade{
		// Listed out of order on purpose: +1000 closes first, -1000 second.
		tradeClosedAt(domain.SideLong, 0.1, 55000, 45000, base.Add(12*time.Hour), base.Add(18*time.Hour)),
		tradeClosedAt(domain.SideLong, 0.1, 50000, 60000, base, base.Add(6*time.Hour)),
	}

	metrics := AnalyzePerformance(trades, initialBalance)

	if metrics.TotalTrades != 2 {
		t.Errorf("Expected 2 total trades, got %d", metrics.TotalTrades)
	}
	if metrics.WinningTrades != 1 || metrics.LosingTrades != 1 {
		t.Errorf("Expected 1 win and 1 loss, got %d/%d", metrics.WinningTrades, metrics.LosingTrades)
	}
	if metrics.WinRate != 0.5 {
		t.Errorf("Expected 0.5 win rate, got %f", metrics.WinRate)
	}
	if metrics.TotalProfit != 0 {
		t.Errorf("Expected 0 total profit, got %f", metrics.TotalProfit)
	}
	if metrics.FinalBalance != initialBalance {
		t.Errorf("Expected final balance of %f, got %f", initialBalance, metrics.FinalBalance)
	}
	if metrics.AverageWin != 1000 || metrics.AverageLoss != -1000 {
		t.Errorf("Expected avg win/loss 1000/-1000, got %f/%f", metrics.AverageWin, metrics.AverageLoss)
	}
	if metrics.ProfitFactor != 1.0 {
		t.Errorf("Expected 1.0 profit factor, got %f", metrics.ProfitFactor)
	}
	if metrics.AverageHoldingTime != 6*time.Hour {
		t.Errorf("Expected 6h average holding time, got %s", metrics.AverageHoldingTime)
	}
	if len(metrics.EquityCurve) != 2 {
		t.Fatalf("Expected 2 equity curve points, got %d", len(metrics.EquityCurve))
	}
	if metrics.EquityCurve[0].Value != 11000 {
		t.Errorf("Expected the winning trade to be replayed first, got balance %f", metrics.EquityCurve[0].Value)
	}
	if got := len(metrics.MonthlyReturns()); got != 1 {
		t.Errorf("Expected 1 monthly return, got %d", got)
	}
	if trades[0].EntryPrice != 55000 {
		t.Errorf("Input slice must not be reordered")
	}
}

func TestAnalyzePerformanceSkipsOpenTrades(t *testing.T) {
	open := &domain.Trade{Symbol: "ETHUSD", Side: domain.SideLong, Quantity: 1, EntryPrice: 2000, EntryTime: time.Now()}
	metrics := AnalyzePerformance([]*domain.Trade{open}, 10000.0)
	if metrics.TotalTrades != 0 {
		t.Errorf("Expected 0 total trades, got %d", metrics.TotalTrades)
	}
	if metrics.FinalBalance != 10000.0 {
		t.Errorf("Expected final balance of 10000.0, got %f", metrics.FinalBalance)
	}
}

func TestAnalyzePerformanceDrawdown(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	trades := []*domain.Trade{
		tradeClosedAt(domain.SideLong, 0.1, 50000, 60000, base, base.Add(time.Hour)),
		tradeClosedAt(domain.SideShort, 0.2, 45000, 56000, base.Add(2*time.Hour), base.Add(3*time.Hour)),
	}

	metrics := AnalyzePerformance(trades, 10000.0)

	// Peak 11000, then -2200 -> 8800, a 20% drawdown.
	if diff := metrics.MaxDrawdown - 0.2; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected 0.2 max drawdown, got %f", metrics.MaxDrawdown)
	}
	if metrics.MaxConsecutiveLosses != 1 {
		t.Errorf("Expected 1 max consecutive losses, got %d", metrics.MaxConsecutiveLosses)
	}
}
