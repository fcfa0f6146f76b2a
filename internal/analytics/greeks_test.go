package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/ports"
)

func TestOptionGreeks(t *testing.T) {
	tests := []struct {
		name       string
		rate       float64
		optionType string
		wantDelta  float64
		wantGamma  float64
	}{
		{name: "call r=5%", rate: 0.05, optionType: "call", wantDelta: 0.6368, wantGamma: 0.0188},
		{name: "put r=5%", rate: 0.05, optionType: "put", wantDelta: 0.6368 - 1, wantGamma: 0.0188},
		{name: "call r=1%", rate: 0.01, optionType: "CALL", wantDelta: 0.5596, wantGamma: 0.0197},
		{name: "default type is call", rate: 0.01, optionType: "", wantDelta: 0.5596, wantGamma: 0.0197},
		{name: "zero rate", rate: 0, optionType: "call", wantDelta: 0.5398, wantGamma: 0.0198},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OptionGreeks(100, 100, 1, tt.rate, 0.2, tt.optionType)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantDelta, got.Delta, 1e-4)
			assert.InDelta(t, tt.wantGamma, got.Gamma, 1e-4)
		})
	}
}

func TestOptionGreeks_PutCallParity(t *testing.T) {
	call, err := OptionGreeks(95, 105, 0.5, 0.03, 0.35, "call")
	require.NoError(t, err)
	put, err := OptionGreeks(95, 105, 0.5, 0.03, 0.35, "Put")
	require.NoError(t, err)

	assert.InDelta(t, call.Delta-1, put.Delta, 1e-12)
	assert.Equal(t, call.Gamma, put.Gamma)
}

func TestOptionGreeks_NegativeRateAllowed(t *testing.T) {
	_, err := OptionGreeks(100, 100, 1, -0.01, 0.2, "call")
	assert.NoError(t, err)
}

func TestOptionGreeks_InvalidInputs(t *testing.T) {
	tests := []struct {
		name                      string
		spot, strike, expiry, vol float64
	}{
		{name: "zero time", spot: 100, strike: 100, expiry: 0, vol: 0.2},
		{name: "zero volatility", spot: 100, strike: 100, expiry: 1, vol: 0},
		{name: "zero spot", spot: 0, strike: 100, expiry: 1, vol: 0.2},
		{name: "zero strike", spot: 100, strike: 0, expiry: 1, vol: 0.2},
		{name: "negative time", spot: 100, strike: 100, expiry: -1, vol: 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OptionGreeks(tt.spot, tt.strike, tt.expiry, 0.01, tt.vol, "call")
			assert.ErrorIs(t, err, ErrNonPositiveInput)
			assert.ErrorIs(t, err, ports.ErrInvalidRequest)
		})
	}
}
