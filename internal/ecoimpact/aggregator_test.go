package ecoimpact

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddContributionDerivesMetrics(t *testing.T) {
	a := NewAggregator()
	a.AddContribution(Contribution{Amount: 1000})

	state := a.Snapshot()
	assert.True(t, decimal.RequireFromString("0.5").Equal(state.ForestArea), "forest %s", state.ForestArea)
	assert.True(t, decimal.RequireFromString("250").Equal(state.WaterSaved), "water %s", state.WaterSaved)
	assert.True(t, decimal.RequireFromString("12.5").Equal(state.Co2Reduction), "co2 %s", state.Co2Reduction)
	assert.Equal(t, int64(1000), state.TotalDonation)
	assert.Equal(t, int64(1000), state.MonthlyDonation)
}

func TestAddContributionRoundTripAccumulates(t *testing.T) {
	a := NewAggregator()
	a.AddContribution(Contribution{Amount: 700})
	require.Equal(t, int64(700), a.TotalDonation())

	// Repeating the same amount adds again; no deduplication.
	a.AddContribution(Contribution{Amount: 700})
	assert.Equal(t, int64(1400), a.TotalDonation())
}

func TestAddContributionOverrides(t *testing.T) {
	a := NewAggregator()
	forest := decimal.NewFromInt(3)
	a.AddContribution(Contribution{Amount: 1000, ForestArea: &forest})

	state := a.Snapshot()
	assert.True(t, decimal.NewFromInt(3).Equal(state.ForestArea), "override replaces the derived delta")
	assert.True(t, decimal.NewFromInt(250).Equal(state.WaterSaved), "unoverridden metrics still derive")
	assert.Equal(t, int64(1000), state.TotalDonation, "totals advance regardless of overrides")
}

func TestDetermineRankThresholds(t *testing.T) {
	tests := []struct {
		total int64
		want  string
	}{
		{0, RankBeginner},
		{4_999, RankBeginner},
		{5_000, RankSupporter},
		{19_999, RankSupporter},
		{20_000, RankMeister},
		{49_999, RankMeister},
		{50_000, RankChampion},
		{120_000, RankChampion},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, DetermineRank(tc.total), "total %d", tc.total)
	}
}

func TestProgressAveragesClampedIndicators(t *testing.T) {
	a := NewAggregator()
	assert.Zero(t, a.Progress())

	// 200,000 yen hits every target exactly; more must not exceed 100.
	a.AddContribution(Contribution{Amount: 200_000})
	assert.InDelta(t, 100.0, a.Progress(), 1e-9)

	a.AddContribution(Contribution{Amount: 200_000})
	assert.InDelta(t, 100.0, a.Progress(), 1e-9)
}

func TestProgressPartial(t *testing.T) {
	a := NewAggregator()
	// Half of every target.
	a.AddContribution(Contribution{Amount: 100_000})
	assert.InDelta(t, 50.0, a.Progress(), 1e-9)
}

func TestZeroAmountDegradesGracefully(t *testing.T) {
	a := NewAggregator()
	a.AddContribution(Contribution{Amount: 0})

	state := a.Snapshot()
	assert.Zero(t, state.TotalDonation)
	assert.True(t, state.ForestArea.IsZero())
}

func TestResetMonthly(t *testing.T) {
	a := NewAggregator()
	a.AddContribution(Contribution{Amount: 3000})
	a.ResetMonthly()

	state := a.Snapshot()
	assert.Zero(t, state.MonthlyDonation)
	assert.Equal(t, int64(3000), state.TotalDonation, "cumulative total survives the rollover")
}
