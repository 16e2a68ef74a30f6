package inventory

import (
	"sort"
	"time"
)

// Reader is the read side of the ledger used by transition policy
type Reader interface {
	QuantityAt(locationID, itemID string) int
}

// Ledger is a plain accumulator of per-(location, item) balances.
// It does not enforce a lower bound; callers that must not overdraw check
// QuantityAt before adjusting. Ledger is not safe for concurrent use.
type Ledger struct {
	records map[Key]*Record
	now     func() time.Time
}

// NewLedger builds a ledger from existing records. Later records with the
// same key replace earlier ones.
func NewLedger(records []Record) *Ledger {
	l := &Ledger{
		records: make(map[Key]*Record, len(records)),
		now:     time.Now,
	}
	for _, r := range records {
		rec := r
		l.records[rec.Key()] = &rec
	}
	return l
}

// QuantityAt returns the balance for the pair, 0 when no record exists
func (l *Ledger) QuantityAt(locationID, itemID string) int {
	if r, ok := l.records[Key{LocationID: locationID, ItemID: itemID}]; ok {
		return r.Quantity
	}
	return 0
}

// Get returns the record for the pair if one exists
func (l *Ledger) Get(locationID, itemID string) (Record, bool) {
	r, ok := l.records[Key{LocationID: locationID, ItemID: itemID}]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Adjust adds delta to the pair's balance and returns the resulting record.
// A missing record is created only by a positive delta; any other delta on a
// missing pair stores nothing and returns an empty record. The result is not
// clamped.
func (l *Ledger) Adjust(locationID, itemID string, delta int) Record {
	k := Key{LocationID: locationID, ItemID: itemID}
	r, ok := l.records[k]
	if !ok {
		if delta <= 0 {
			return Record{ItemID: itemID, LocationID: locationID}
		}
		r = &Record{ItemID: itemID, LocationID: locationID}
		l.records[k] = r
	}
	r.Quantity += delta
	r.UpdatedAt = l.now()
	return *r
}

// Apply adjusts every delta in order and returns the records it touched.
// Deltas that would not create a missing record are left out.
func (l *Ledger) Apply(deltas []Delta) []Record {
	out := make([]Record, 0, len(deltas))
	for _, d := range deltas {
		if _, ok := l.records[d.Key()]; !ok && d.Amount <= 0 {
			continue
		}
		out = append(out, l.Adjust(d.LocationID, d.ItemID, d.Amount))
	}
	return out
}

// Preview returns the records Apply would produce, without changing the
// ledger
func (l *Ledger) Preview(deltas []Delta) []Record {
	pending := make(map[Key]int)
	out := make([]Record, 0, len(deltas))
	at := l.now()
	for _, d := range deltas {
		k := d.Key()
		if _, seen := pending[k]; !seen {
			if _, ok := l.records[k]; !ok && d.Amount <= 0 {
				continue
			}
			pending[k] = l.QuantityAt(d.LocationID, d.ItemID)
		}
		pending[k] += d.Amount
		out = append(out, Record{ItemID: d.ItemID, LocationID: d.LocationID, Quantity: pending[k], UpdatedAt: at})
	}
	return out
}

// AtLocations lists records held at any of the given locations, ordered by
// location then item
func (l *Ledger) AtLocations(locationIDs map[string]struct{}) []Record {
	out := make([]Record, 0)
	for k, r := range l.records {
		if _, ok := locationIDs[k.LocationID]; ok {
			out = append(out, *r)
		}
	}
	sortRecords(out)
	return out
}

// All returns a snapshot of every record
func (l *Ledger) All() []Record {
	out := make([]Record, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, *r)
	}
	sortRecords(out)
	return out
}

func sortRecords(rs []Record) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].LocationID != rs[j].LocationID {
			return rs[i].LocationID < rs[j].LocationID
		}
		return rs[i].ItemID < rs[j].ItemID
	})
}
