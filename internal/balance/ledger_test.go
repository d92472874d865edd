package balance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalIsRegularPlusCampaigns(t *testing.T) {
	l := NewLedger(6000, Campaign{ID: "1", Amount: 2000, Label: "紹介ボーナス", ExpiresAt: time.Now().Add(24 * time.Hour)})

	assert.Equal(t, int64(6000), l.Regular())
	assert.Equal(t, int64(8000), l.Total())

	l.Credit(500)
	assert.Equal(t, int64(8500), l.Total())

	l.Debit(1000)
	assert.Equal(t, int64(5500), l.Regular())
	assert.Equal(t, int64(7500), l.Total())
}

func TestDebitClampsAtZero(t *testing.T) {
	l := NewLedger(300)
	l.Debit(1000)
	assert.Equal(t, int64(0), l.Regular())
	assert.Equal(t, int64(0), l.Total())
}

func TestDebitCampaignIsIsolated(t *testing.T) {
	expiry := time.Now().Add(24 * time.Hour)
	l := NewLedger(5000,
		Campaign{ID: "a", Amount: 1000, ExpiresAt: expiry},
		Campaign{ID: "b", Amount: 2000, ExpiresAt: expiry},
	)

	l.DebitCampaign("a", 400)

	campaigns := l.Campaigns()
	require.Len(t, campaigns, 2)
	assert.Equal(t, int64(600), campaigns[0].Amount)
	assert.Equal(t, int64(2000), campaigns[1].Amount)
	assert.Equal(t, int64(5000), l.Regular())

	// Clamp, and unknown ids are a no-op.
	l.DebitCampaign("a", 10_000)
	l.DebitCampaign("missing", 10_000)
	assert.Equal(t, int64(0), l.Campaigns()[0].Amount)
	assert.Equal(t, int64(7000), l.Total())
}

func TestExpiredPoolsAreReportedNotDeducted(t *testing.T) {
	now := time.Now().UTC()
	l := NewLedger(1000,
		Campaign{ID: "old", Amount: 500, Label: "旧キャンペーン", ExpiresAt: now.Add(-time.Hour)},
		Campaign{ID: "new", Amount: 700, ExpiresAt: now.Add(time.Hour)},
	)

	expired := l.Expired(now)
	require.Len(t, expired, 1)
	assert.Equal(t, "old", expired[0].ID)

	// Expired funds still count toward the total until swept.
	assert.Equal(t, int64(2200), l.Total())
}

func TestTakeExpired(t *testing.T) {
	now := time.Now().UTC()
	l := NewLedger(0,
		Campaign{ID: "old", Amount: 500, ExpiresAt: now.Add(-time.Hour)},
		Campaign{ID: "new", Amount: 700, ExpiresAt: now.Add(time.Hour)},
	)

	assert.Equal(t, int64(500), l.TakeExpired("old", now))
	assert.Equal(t, int64(0), l.TakeExpired("old", now), "second take is empty")
	assert.Equal(t, int64(0), l.TakeExpired("new", now), "active pools cannot be taken")
	assert.Equal(t, int64(700), l.Total())
}

func TestDaysLeft(t *testing.T) {
	now := time.Now().UTC()
	c := Campaign{ExpiresAt: now.AddDate(0, 0, 10)}
	assert.Equal(t, 10, c.DaysLeft(now))

	expired := Campaign{ExpiresAt: now.Add(-time.Hour)}
	assert.Equal(t, 0, expired.DaysLeft(now))
}

func TestNegativeSeedClampsToZero(t *testing.T) {
	l := NewLedger(-100)
	assert.Equal(t, int64(0), l.Regular())
}
