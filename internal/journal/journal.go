package journal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is the caller-supplied part of a transaction. The journal assigns
// the id and, when Date is zero, the insertion time.
type Entry struct {
	Type            Type
	Description     string
	Date            time.Time
	Amount          int64
	EcoContribution *EcoContribution
	Badges          []string
}

// Journal is the append-only, most-recent-first record of monetary events.
// There is no update or delete path; ids are generated at insertion and
// never reused.
type Journal struct {
	mu      sync.RWMutex
	entries []Transaction
}

// NewJournal returns an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Add records a new transaction at the head of the journal and returns its
// generated id.
func (j *Journal) Add(entry Entry) string {
	j.mu.Lock()
	defer j.mu.Unlock()

	tx := Transaction{
		ID:              uuid.NewString(),
		Type:            entry.Type,
		Description:     entry.Description,
		Date:            entry.Date,
		Amount:          entry.Amount,
		EcoContribution: entry.EcoContribution,
		Badges:          append([]string(nil), entry.Badges...),
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now().UTC()
	}

	j.entries = append([]Transaction{tx}, j.entries...)
	return tx.ID
}

// ByID returns the transaction with the given id.
func (j *Journal) ByID(id string) (Transaction, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for _, tx := range j.entries {
		if tx.ID == id {
			return tx, true
		}
	}
	return Transaction{}, false
}

// All returns every entry, most recent first.
func (j *Journal) All() []Transaction {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.snapshot()
}

// ByType returns the entries of one type, journal order preserved.
func (j *Journal) ByType(t Type) []Transaction {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []Transaction
	for _, tx := range j.entries {
		if tx.Type == t {
			out = append(out, tx)
		}
	}
	return out
}

// ByDateRange returns the entries whose calendar date falls within
// [start, end], both inclusive. Time-of-day is ignored.
func (j *Journal) ByDateRange(start, end time.Time) []Transaction {
	from := calendarDate(start)
	to := calendarDate(end)

	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []Transaction
	for _, tx := range j.entries {
		d := calendarDate(tx.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Recent returns the first limit entries in journal order. A non-positive
// limit yields an empty result.
func (j *Journal) Recent(limit int) []Transaction {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if limit <= 0 {
		return nil
	}
	if limit > len(j.entries) {
		limit = len(j.entries)
	}
	out := make([]Transaction, limit)
	copy(out, j.entries[:limit])
	return out
}

// WithEcoContribution returns the entries whose eco contribution is enabled.
func (j *Journal) WithEcoContribution() []Transaction {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []Transaction
	for _, tx := range j.entries {
		if tx.EcoContribution != nil && tx.EcoContribution.Enabled {
			out = append(out, tx)
		}
	}
	return out
}

// TotalEcoContribution sums the eco contribution amounts over enabled
// entries.
func (j *Journal) TotalEcoContribution() int64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var total int64
	for _, tx := range j.entries {
		if tx.EcoContribution != nil && tx.EcoContribution.Enabled {
			total += tx.EcoContribution.Amount
		}
	}
	return total
}

// Len returns the number of recorded transactions.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

func (j *Journal) snapshot() []Transaction {
	out := make([]Transaction, len(j.entries))
	copy(out, j.entries)
	return out
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
