package analytics

import (
	"fmt"
	"math"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// ErrNonPositiveInput is returned when spot, strike, time or volatility is not positive.
var ErrNonPositiveInput = fmt.Errorf("%w: spot, strike, time to expiry and volatility must be positive", ports.ErrInvalidRequest)

// Greeks holds Black-Scholes sensitivities of a European option.
type Greeks struct {
	Delta float64
	Gamma float64
}

// OptionGreeks computes Black-Scholes delta and gamma.
// expiry is in years; rate and vol are annualised decimals. The rate may be
// zero or negative.
func OptionGreeks(spot, strike, expiry, rate, vol float64, optionType string) (Greeks, error) {
	if expiry <= 0 || vol <= 0 || spot <= 0 || strike <= 0 {
		return Greeks{}, ErrNonPositiveInput
	}

	sqrtT := math.Sqrt(expiry)
	d1 := (math.Log(spot/strike) + (rate+0.5*vol*vol)*expiry) / (vol * sqrtT)

	delta := normCDF(d1)
	if domain.ParseOptionType(optionType) == domain.OptionPut {
		delta -= 1.0
	}
	gamma := normPDF(d1) / (spot * vol * sqrtT)

	return Greeks{Delta: delta, Gamma: gamma}, nil
}

func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
