package ecoimpact

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Conversion coefficients from donated yen to environmental metrics. Policy
// constants, not derived: 1000 yen plants 0.5 m² of forest.
var (
	forestPerYen = decimal.RequireFromString("0.0005") // m²
	waterPerYen  = decimal.RequireFromString("0.25")   // L
	co2PerYen    = decimal.RequireFromString("0.0125") // kg
)

// Campaign-wide targets each indicator is measured against. All three meet
// 100% at the same cumulative donation (200,000 yen).
var (
	targetForestArea   = decimal.NewFromInt(100)   // m²
	targetWaterSaved   = decimal.NewFromInt(50000) // L
	targetCo2Reduction = decimal.NewFromInt(2500)  // kg
)

// Rank labels derived from the cumulative donation total.
const (
	RankChampion  = "Champion"
	RankMeister   = "Meister"
	RankSupporter = "Supporter"
	RankBeginner  = "Beginner"
)

// Rank thresholds in yen, inclusive on the lower bound.
const (
	championThreshold  int64 = 50_000
	meisterThreshold   int64 = 20_000
	supporterThreshold int64 = 5_000
)

// Contribution is one donation-class event. When the metric overrides are
// nil they are derived from Amount via the fixed coefficients.
type Contribution struct {
	Amount       int64
	ForestArea   *decimal.Decimal
	WaterSaved   *decimal.Decimal
	Co2Reduction *decimal.Decimal
}

// State is a read snapshot of the cumulative eco impact.
type State struct {
	ForestArea      decimal.Decimal
	WaterSaved      decimal.Decimal
	Co2Reduction    decimal.Decimal
	TotalDonation   int64
	MonthlyDonation int64
	ProgressPercent float64
	Rank            string
}

// Aggregator accumulates environmental metrics from eco contributions. It
// performs no validation; callers are expected to have validated amounts
// upstream, and a zero or negative amount degrades without erroring.
type Aggregator struct {
	mu              sync.RWMutex
	forestArea      decimal.Decimal
	waterSaved      decimal.Decimal
	co2Reduction    decimal.Decimal
	totalDonation   int64
	monthlyDonation int64
}

// NewAggregator returns an aggregator with all metrics at zero.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AddContribution applies one contribution: metric overrides when supplied,
// coefficient-derived deltas otherwise. The donation totals always advance
// by Amount.
func (a *Aggregator) AddContribution(c Contribution) {
	amount := decimal.NewFromInt(c.Amount)

	forest := forestPerYen.Mul(amount)
	if c.ForestArea != nil {
		forest = *c.ForestArea
	}
	water := waterPerYen.Mul(amount)
	if c.WaterSaved != nil {
		water = *c.WaterSaved
	}
	co2 := co2PerYen.Mul(amount)
	if c.Co2Reduction != nil {
		co2 = *c.Co2Reduction
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.forestArea = a.forestArea.Add(forest)
	a.waterSaved = a.waterSaved.Add(water)
	a.co2Reduction = a.co2Reduction.Add(co2)
	a.totalDonation += c.Amount
	a.monthlyDonation += c.Amount
}

// Progress returns the unweighted average of the three indicator ratios,
// each clamped to [0,100] before averaging.
func (a *Aggregator) Progress() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	sum := indicatorPercent(a.forestArea, targetForestArea) +
		indicatorPercent(a.waterSaved, targetWaterSaved) +
		indicatorPercent(a.co2Reduction, targetCo2Reduction)
	return sum / 3
}

// Rank returns the contributor tier for the cumulative donation total.
func (a *Aggregator) Rank() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return DetermineRank(a.totalDonation)
}

// DetermineRank maps a cumulative donation total to its tier label.
func DetermineRank(totalDonation int64) string {
	switch {
	case totalDonation >= championThreshold:
		return RankChampion
	case totalDonation >= meisterThreshold:
		return RankMeister
	case totalDonation >= supporterThreshold:
		return RankSupporter
	default:
		return RankBeginner
	}
}

// Snapshot returns the current cumulative state with derived fields filled.
func (a *Aggregator) Snapshot() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	sum := indicatorPercent(a.forestArea, targetForestArea) +
		indicatorPercent(a.waterSaved, targetWaterSaved) +
		indicatorPercent(a.co2Reduction, targetCo2Reduction)
	return State{
		ForestArea:      a.forestArea,
		WaterSaved:      a.waterSaved,
		Co2Reduction:    a.co2Reduction,
		TotalDonation:   a.totalDonation,
		MonthlyDonation: a.monthlyDonation,
		ProgressPercent: sum / 3,
		Rank:            DetermineRank(a.totalDonation),
	}
}

// TotalDonation returns the cumulative donated amount.
func (a *Aggregator) TotalDonation() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.totalDonation
}

// ResetMonthly zeroes the monthly donation counter. Called by the monthly
// rollover job; cumulative metrics are untouched.
func (a *Aggregator) ResetMonthly() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.monthlyDonation = 0
}

func indicatorPercent(current, target decimal.Decimal) float64 {
	pct, _ := current.Div(target).Mul(decimal.NewFromInt(100)).Float64()
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
