// Package enrich derives the presentation fields (trend history, day change,
// rating) that exchanges do not publish, from a staking offer's current rate.
package enrich

import (
	"math"
	"math/rand/v2"
	"strconv"

	"cryptorewards-backend/internal/rewards"
)

const (
	// TrendFluctuation is the maximum relative deviation of a trend point from the base rate.
	TrendFluctuation = 0.05
	// MaxDayChange bounds the absolute value of a day change.
	MaxDayChange = 0.3

	minRating = 4.0
	maxRating = 5.0
)

// RandomAPI is an abstraction over any code that generates random values.
// This makes deterministic testing possible.
//
// note: fault injection point
type RandomAPI interface {
	// Float64 returns a number in [0.0, 1.0)
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 {
	return rand.Float64()
}

// Seeded returns a RandomAPI that produces the same sequence for the same seed.
// It is not safe for concurrent use.
func Seeded(seed uint64) RandomAPI {
	return rand.New(rand.NewPCG(seed, seed))
}

// Enricher derives presentation fields, the zero value uses the global
// random source.
type Enricher struct {
	rand RandomAPI
}

// New creates an Enricher, a nil RandomAPI uses the global random source.
func New(r RandomAPI) Enricher {
	if r == nil {
		r = globalRand{}
	}
	return Enricher{rand: r}
}

func (e Enricher) random() float64 {
	if e.rand == nil {
		return rand.Float64()
	}
	return e.rand.Float64()
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Trend produces a 7 point series with each point within ±5% of base.
func (e Enricher) Trend(base float64) []float64 {
	trend := make([]float64, rewards.TrendPoints)
	for i := range trend {
		fluctuation := base * TrendFluctuation * (e.random()*2 - 1)
		trend[i] = round(base+fluctuation, 2)
	}
	return trend
}

// DayChange produces a signed change in [-0.3, 0.3] formatted with one decimal.
func (e Enricher) DayChange() string {
	change := round(e.random()*2*MaxDayChange-MaxDayChange, 1)
	if change == 0 {
		// avoid "-0.0"
		change = 0
	}
	return strconv.FormatFloat(change, 'f', 1, 64)
}

// Rating is 4.0 + base/20 rounded to one decimal and clamped to [4.0, 5.0].
func Rating(base float64) float64 {
	rating := round(minRating+base/20, 1)
	return math.Max(minRating, math.Min(maxRating, rating))
}

// Apply fills in the derived fields of an offer from its APY, an unparsable
// APY is treated as 0.
func (e Enricher) Apply(offer *rewards.StakingOffer) {
	base, err := rewards.RateValue(offer.APY)
	if err != nil {
		base = 0
	}
	offer.APYTrend = e.Trend(base)
	offer.DayChange = e.DayChange()
	offer.Rating = Rating(base)
}
