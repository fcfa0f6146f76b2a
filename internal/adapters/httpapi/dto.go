package httpapi

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"tradeJournal/internal/analytics"
	"tradeJournal/internal/app"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/utils"
)

// Float is a float64 that marshals NaN and infinities as JSON null.
type Float float64

// MarshalJSON writes null for NaN and ±Inf, which encoding/json rejects.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// tradeRequest is the body of POST /trades and PUT /trades/:id.
// On create every required field must be present; on update absent fields
// keep their stored values.
type tradeRequest struct {
	Symbol     *string  `json:"symbol"`
	Side       *string  `json:"side"`
	Qty        *float64 `json:"qty"`
	EntryPrice *float64 `json:"entry_price"`
	EntryTime  *string  `json:"entry_time"`
	ExitPrice  *float64 `json:"exit_price"`
	ExitTime   *string  `json:"exit_time"`
	Fees       *float64 `json:"fees"`
	Tags       *string  `json:"tags"`
	Notes      *string  `json:"notes"`
}

// toPatch converts the request into a domain patch, parsing timestamps.
func (r tradeRequest) toPatch() (domain.TradePatch, error) {
	p := domain.TradePatch{
		Symbol:     r.Symbol,
		Quantity:   r.Qty,
		EntryPrice: r.EntryPrice,
		ExitPrice:  r.ExitPrice,
		Fees:       r.Fees,
		Tags:       r.Tags,
		Notes:      r.Notes,
	}
	if r.Side != nil {
		side := domain.ParseSide(*r.Side)
		p.Side = &side
	}
	if r.EntryTime != nil {
		ts, err := utils.ParseTime(*r.EntryTime)
		if err != nil {
			return p, fmt.Errorf("entry_time: %w", err)
		}
		p.EntryTime = &ts
	}
	if r.ExitTime != nil {
		ts, err := utils.ParseTime(*r.ExitTime)
		if err != nil {
			return p, fmt.Errorf("exit_time: %w", err)
		}
		p.ExitTime = &ts
	}
	return p, nil
}

// toTrade builds a new trade. Missing required fields surface from Trade.Validate.
func (r tradeRequest) toTrade() (*domain.Trade, error) {
	if r.Symbol == nil || r.Side == nil || r.Qty == nil || r.EntryPrice == nil || r.EntryTime == nil {
		return nil, fmt.Errorf("symbol, side, qty, entry_price and entry_time are required")
	}
	patch, err := r.toPatch()
	if err != nil {
		return nil, err
	}
	t := patch.Apply(domain.Trade{})
	return &t, nil
}

type tradeResponse struct {
	ID         int64    `json:"id"`
	Symbol     string   `json:"symbol"`
	Side       string   `json:"side"`
	Qty        float64  `json:"qty"`
	EntryPrice float64  `json:"entry_price"`
	EntryTime  string   `json:"entry_time"`
	ExitPrice  *float64 `json:"exit_price"`
	ExitTime   *string  `json:"exit_time"`
	Fees       *float64 `json:"fees"`
	Tags       *string  `json:"tags"`
	Notes      *string  `json:"notes"`
}

func newTradeResponse(t *domain.Trade) tradeResponse {
	resp := tradeResponse{
		ID:         t.ID,
		Symbol:     t.Symbol,
		Side:       string(t.Side),
		Qty:        t.Quantity,
		EntryPrice: t.EntryPrice,
		EntryTime:  t.EntryTime.UTC().Format(time.RFC3339),
		ExitPrice:  t.ExitPrice,
		Fees:       t.Fees,
	}
	if t.ExitTime != nil {
		s := t.ExitTime.UTC().Format(time.RFC3339)
		resp.ExitTime = &s
	}
	if t.Tags != "" {
		resp.Tags = &t.Tags
	}
	if t.Notes != "" {
		resp.Notes = &t.Notes
	}
	return resp
}

func newTradeResponses(trades []*domain.Trade) []tradeResponse {
	out := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		out = append(out, newTradeResponse(t))
	}
	return out
}

type metricsResponse struct {
	PNL       Float `json:"pnl"`
	ReturnPct Float `json:"return_pct"`
}

type tagMetricsResponse struct {
	Trades    int   `json:"trades"`
	PNL       Float `json:"pnl"`
	ReturnPct Float `json:"return_pct"`
}

func newTagSummaryResponse(summary map[string]analytics.TagMetrics) map[string]tagMetricsResponse {
	out := make(map[string]tagMetricsResponse, len(summary))
	for tag, m := range summary {
		out[tag] = tagMetricsResponse{Trades: m.Trades, PNL: Float(m.PNL), ReturnPct: Float(m.ReturnPct)}
	}
	return out
}

type greeksRequest struct {
	Spot       *float64 `json:"spot"`
	Strike     *float64 `json:"strike"`
	Time       *float64 `json:"time"`
	Rate       *float64 `json:"rate"`
	Volatility *float64 `json:"volatility"`
	OptionType string   `json:"option_type"`
}

type greeksResponse struct {
	Delta Float `json:"delta"`
	Gamma Float `json:"gamma"`
}

type statsResponse struct {
	TradeCount    int   `json:"trade_count"`
	TotalQuantity Float `json:"total_quantity"`
	AveragePrice  Float `json:"average_price"`
}

type equityPointResponse struct {
	Time     string `json:"time"`
	Value    Float  `json:"value"`
	Drawdown Float  `json:"drawdown"`
}

type monthlyResponse struct {
	Month string `json:"month"`
	PNL   Float  `json:"pnl"`
}

type performanceResponse struct {
	TotalTrades          int                   `json:"total_trades"`
	WinningTrades        int                   `json:"winning_trades"`
	LosingTrades         int                   `json:"losing_trades"`
	WinRate              Float                 `json:"win_rate"`
	TotalProfit          Float                 `json:"total_profit"`
	AverageWin           Float                 `json:"average_win"`
	AverageLoss          Float                 `json:"average_loss"`
	ProfitFactor         Float                 `json:"profit_factor"`
	FinalBalance         Float                 `json:"final_balance"`
	ReturnOnInvestment   Float                 `json:"return_on_investment"`
	MaxDrawdown          Float                 `json:"max_drawdown"`
	MaxConsecutiveWins   int                   `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int                   `json:"max_consecutive_losses"`
	AverageHoldingTime   string                `json:"average_holding_time"`
	Expectancy           Float                 `json:"expectancy"`
	Monthly              []monthlyResponse     `json:"monthly"`
	EquityCurve          []equityPointResponse `json:"equity_curve"`
}

func newPerformanceResponse(m *analytics.PerformanceMetrics) performanceResponse {
	resp := performanceResponse{
		TotalTrades:          m.TotalTrades,
		WinningTrades:        m.WinningTrades,
		LosingTrades:         m.LosingTrades,
		WinRate:              Float(m.WinRate),
		TotalProfit:          Float(m.TotalProfit),
		AverageWin:           Float(m.AverageWin),
		AverageLoss:          Float(m.AverageLoss),
		ProfitFactor:         Float(m.ProfitFactor),
		FinalBalance:         Float(m.FinalBalance),
		ReturnOnInvestment:   Float(m.ReturnOnInvestment),
		MaxDrawdown:          Float(m.MaxDrawdown),
		MaxConsecutiveWins:   m.MaxConsecutiveWins,
		MaxConsecutiveLosses: m.MaxConsecutiveLosses,
		AverageHoldingTime:   m.AverageHoldingTime.String(),
		Expectancy:           Float(m.Expectancy),
		Monthly:              make([]monthlyResponse, 0, len(m.MonthlyPNL)),
		EquityCurve:          make([]equityPointResponse, 0, len(m.EquityCurve)),
	}
	for _, mr := range m.MonthlyReturns() {
		resp.Monthly = append(resp.Monthly, monthlyResponse{Month: mr.Month.Format("2006-01"), PNL: Float(mr.PNL)})
	}
	for _, p := range m.EquityCurve {
		resp.EquityCurve = append(resp.EquityCurve, equityPointResponse{
			Time:     p.Time.UTC().Format(time.RFC3339),
			Value:    Float(p.Value),
			Drawdown: Float(p.Drawdown),
		})
	}
	return resp
}

type snapshotResponse struct {
	ComputedAt    string                        `json:"computed_at"`
	TradeCount    int                           `json:"trade_count"`
	ClosedCount   int                           `json:"closed_count"`
	TotalQuantity Float                         `json:"total_quantity"`
	Tags          map[string]tagMetricsResponse `json:"tags"`
	Performance   *performanceResponse          `json:"performance,omitempty"`
}

func newSnapshotResponse(s *app.Snapshot) snapshotResponse {
	resp := snapshotResponse{
		ComputedAt:    s.ComputedAt.UTC().Format(time.RFC3339),
		TradeCount:    s.TradeCount,
		ClosedCount:   s.ClosedCount,
		TotalQuantity: Float(s.TotalQuantity),
		Tags:          newTagSummaryResponse(s.Tags),
	}
	if s.Performance != nil {
		perf := newPerformanceResponse(s.Performance)
		resp.Performance = &perf
	}
	return resp
}

type errorResponse struct {
	Error string `json:"error"`
}
