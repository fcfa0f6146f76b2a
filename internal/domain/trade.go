package domain

import (
	"errors"
	"strings"
	"time"
)

// Trade represents a journal entry. Optional fields are nil when absent.
type Trade struct {
	ID         int64      // Unique identifier for the trade (usually from DB)
	Symbol     string     // Traded instrument (e.g., "AAPL")
	Side       Side       // Long ("buy") or short ("sell")
	Quantity   float64    // Size of the trade
	EntryPrice float64    // Price at which the trade was entered
	EntryTime  time.Time  // Timestamp when the trade was entered
	ExitPrice  *float64   // Price at which the trade was exited (nil while open)
	ExitTime   *time.Time // Timestamp when the trade was exited
	Fees       *float64   // Total fees paid, nil means none recorded
	Tags       string     // Comma-separated labels, e.g. "breakout, swing"
	Notes      string     // Free-form notes
}

// IsClosed reports whether the trade has an exit price.
func (t *Trade) IsClosed() bool {
	return t.ExitPrice != nil
}

// FeesOrZero returns the recorded fees or 0 when none were recorded.
func (t *Trade) FeesOrZero() float64 {
	if t.Fees == nil {
		return 0
	}
	return *t.Fees
}

// TagList returns the trade's tags, trimmed and without empty segments.
func (t *Trade) TagList() []string {
	return ParseTags(t.Tags)
}

// Validate checks the fields every stored trade must have.
func (t *Trade) Validate() error {
	var errs []error
	if strings.TrimSpace(t.Symbol) == "" {
		errs = append(errs, errors.New("symbol is required"))
	}
	if t.Quantity <= 0 {
		errs = append(errs, errors.New("quantity must be positive"))
	}
	if t.EntryTime.IsZero() {
		errs = append(errs, errors.New("entry time is required"))
	}
	return errors.Join(errs...)
}

// ParseTags splits a comma-separated tag field, trims whitespace and drops
// empty segments.
func ParseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if tag := strings.TrimSpace(p); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// TradePatch carries a partial update. Nil fields leave the stored value untouched.
type TradePatch struct {
	Symbol     *string
	Side       *Side
	Quantity   *float64
	EntryPrice *float64
	EntryTime  *time.Time
	ExitPrice  *float64
	ExitTime   *time.Time
	Fees       *float64
	Tags       *string
	Notes      *string
}

// Apply returns a copy of t with the patch merged in.
func (p TradePatch) Apply(t Trade) Trade {
	if p.Symbol != nil {
		t.Symbol = *p.Symbol
	}
	if p.Side != nil {
		t.Side = *p.Side
	}
	if p.Quantity != nil {
		t.Quantity = *p.Quantity
	}
	if p.EntryPrice != nil {
		t.EntryPrice = *p.EntryPrice
	}
	if p.EntryTime != nil {
		t.EntryTime = *p.EntryTime
	}
	if p.ExitPrice != nil {
		v := *p.ExitPrice
		t.ExitPrice = &v
	}
	if p.ExitTime != nil {
		v := *p.ExitTime
		t.ExitTime = &v
	}
	if p.Fees != nil {
		v := *p.Fees
		t.Fees = &v
	}
	if p.Tags != nil {
		t.Tags = *p.Tags
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	return t
}
