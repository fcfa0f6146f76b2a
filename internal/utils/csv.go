package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradeJournal/internal/analytics"
	"tradeJournal/internal/domain"
)

// TradeCSVHeader is the column layout of journal CSV files.
var TradeCSVHeader = []string{"id", "symbol", "side", "qty", "entry_price", "entry_time", "exit_price", "exit_time", "fees", "tags", "notes"}

// ReadTradesFromCSV loads trades from a journal CSV file.
func ReadTradesFromCSV(filename string) ([]*domain.Trade, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadTrades(file)
}

// ReadTrades parses journal CSV rows. Columns are matched by header name;
// empty cells leave optional fields unset. Row numbers in errors are 1-based
// and count the header.
func ReadTrades(r io.Reader) ([]*domain.Trade, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty CSV: header row is required")
		}
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"symbol", "side", "qty", "entry_price", "entry_time"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("CSV header is missing column '%s'", required)
		}
	}

	trades := make([]*domain.Trade, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", line, err)
		}
		trade, err := parseTradeRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func parseTradeRecord(record []string, cols map[string]int) (*domain.Trade, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	t := &domain.Trade{
		Symbol: cell("symbol"),
		Side:   domain.ParseSide(cell("side")),
		Tags:   cell("tags"),
		Notes:  cell("notes"),
	}
	var err error
	if v := cell("id"); v != "" {
		if t.ID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid id '%s': %w", v, err)
		}
	}
	if t.Quantity, err = parseFloat("qty", cell("qty")); err != nil {
		return nil, err
	}
	if t.EntryPrice, err = parseFloat("entry_price", cell("entry_price")); err != nil {
		return nil, err
	}
	if t.EntryTime, err = ParseTime(cell("entry_time")); err != nil {
		return nil, fmt.Errorf("invalid entry_time: %w", err)
	}
	if v := cell("exit_price"); v != "" {
		f, err := parseFloat("exit_price", v)
		if err != nil {
			return nil, err
		}
		t.ExitPrice = &f
	}
	if v := cell("exit_time"); v != "" {
		ts, err := ParseTime(v)
		if err != nil {
			return nil, fmt.Errorf("invalid exit_time: %w", err)
		}
		t.ExitTime = &ts
	}
	if v := cell("fees"); v != "" {
		f, err := parseFloat("fees", v)
		if err != nil {
			return nil, err
		}
		t.Fees = &f
	}
	return t, nil
}

func parseFloat(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, v, err)
	}
	return f, nil
}

// ParseTime accepts RFC3339 timestamps, "2006-01-02 15:04:05" and plain dates (UTC).
func ParseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("timestamp is required")
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp '%s'", v)
}

// WriteTradesToCSV writes trades in the journal CSV layout.
func WriteTradesToCSV(w io.Writer, trades []*domain.Trade) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(TradeCSVHeader); err != nil {
		return err
	}
	for _, t := range trades {
		writer.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Symbol,
			string(t.Side),
			strconv.FormatFloat(t.Quantity, 'f', -1, 64),
			strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
			t.EntryTime.Format(time.RFC3339),
			optionalFloat(t.ExitPrice),
			optionalTime(t.ExitTime),
			optionalFloat(t.Fees),
			t.Tags,
			t.Notes,
		})
	}
	writer.Flush()
	return writer.Error()
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optionalTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(time.RFC3339)
}

// WriteTagSummaryCSV renders a tag summary sorted by tag. P&L is fixed to two
// decimals, returns to six; undefined returns are written as "NaN".
func WriteTagSummaryCSV(w io.Writer, summary map[string]analytics.TagMetrics) error {
	tags := make([]string, 0, len(summary))
	for tag := range summary {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"tag", "trades", "pnl", "return_pct"}); err != nil {
		return err
	}
	for _, tag := range tags {
		m := summary[tag]
		writer.Write([]string{
			tag,
			strconv.Itoa(m.Trades),
			FormatFixed(m.PNL, 2),
			FormatFixed(m.ReturnPct, 6),
		})
	}
	writer.Flush()
	return writer.Error()
}

// FormatFixed renders v with the given number of decimals without binary
// rounding artifacts. NaN and infinities are spelled out.
func FormatFixed(v float64, places int32) string {
	switch {
	case analytics.IsUndefined(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}
