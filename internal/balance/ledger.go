package balance

import (
	"sync"
	"time"
)

// Campaign is a restricted, time-boxed credit pool granted by a promotional
// or referral event. Funds in an expired pool stay visible until the
// expiration sweep records them as expired.
type Campaign struct {
	ID         string
	Amount     int64
	Label      string
	ExpiresAt  time.Time
	Conditions string
}

// Expired reports whether the pool can no longer be spent as of now.
func (c Campaign) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// DaysLeft returns the whole days remaining before expiry, never negative.
func (c Campaign) DaysLeft(now time.Time) int {
	if c.Expired(now) {
		return 0
	}
	return int(c.ExpiresAt.Sub(now).Hours() / 24)
}

// Ledger owns the spendable funds of a single wallet: a regular balance plus
// an ordered set of campaign pools. It performs no business validation;
// amounts are assumed pre-validated by the caller. Debits clamp at zero
// instead of erroring, so the ledger itself never fails.
type Ledger struct {
	mu        sync.RWMutex
	regular   int64
	campaigns []Campaign
}

// NewLedger seeds a ledger with the session-start regular balance and any
// active campaign pools.
func NewLedger(regular int64, campaigns ...Campaign) *Ledger {
	if regular < 0 {
		regular = 0
	}
	l := &Ledger{regular: regular}
	l.campaigns = append(l.campaigns, campaigns...)
	return l
}

// Credit adds to the regular balance unconditionally.
func (l *Ledger) Credit(amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.regular += amount
}

// Debit subtracts from the regular balance, clamped at zero. Callers that
// disallow overdraft must check sufficiency before invoking.
func (l *Ledger) Debit(amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.regular -= amount
	if l.regular < 0 {
		l.regular = 0
	}
}

// DebitCampaign subtracts from the named campaign pool only, clamped at
// zero. Other pools and the regular balance are untouched. Unknown ids are
// a no-op.
func (l *Ledger) DebitCampaign(id string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.campaigns {
		if l.campaigns[i].ID != id {
			continue
		}
		l.campaigns[i].Amount -= amount
		if l.campaigns[i].Amount < 0 {
			l.campaigns[i].Amount = 0
		}
		return
	}
}

// AddCampaign appends a new promotional pool.
func (l *Ledger) AddCampaign(c Campaign) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c.Amount < 0 {
		c.Amount = 0
	}
	l.campaigns = append(l.campaigns, c)
}

// Regular returns the unrestricted portion of the balance.
func (l *Ledger) Regular() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.regular
}

// Total returns regular plus the sum of all campaign pools, expired ones
// included. Expired funds are reported, never silently dropped.
func (l *Ledger) Total() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := l.regular
	for _, c := range l.campaigns {
		total += c.Amount
	}
	return total
}

// Campaigns returns a snapshot of all campaign pools in grant order.
func (l *Ledger) Campaigns() []Campaign {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Campaign, len(l.campaigns))
	copy(out, l.campaigns)
	return out
}

// Expired returns the campaign pools whose expiry has passed and which still
// hold funds. The ledger never deducts these itself; the expiration sweep
// owns that.
func (l *Ledger) Expired(now time.Time) []Campaign {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Campaign
	for _, c := range l.campaigns {
		if c.Expired(now) && c.Amount > 0 {
			out = append(out, c)
		}
	}
	return out
}

// TakeExpired zeroes an expired pool and returns the amount removed. It
// returns 0 when the pool is unknown, empty, or not yet expired.
func (l *Ledger) TakeExpired(id string, now time.Time) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.campaigns {
		c := &l.campaigns[i]
		if c.ID != id || !c.Expired(now) {
			continue
		}
		taken := c.Amount
		c.Amount = 0
		return taken
	}
	return 0
}
