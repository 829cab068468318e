package diag

import (
	"math"
	"sort"

	"fortio.org/safecast"
)

// Bag collects diagnostics up to a limit. Severity counters keep counting
// after the limit is reached.
type Bag struct {
	items  []*Diagnostic
	max    uint16
	counts [SevError + 1]int
}

func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil {
		limit = math.MaxUint16
		if max < 0 {
			limit = 0
		}
	}
	return &Bag{
		items: make([]*Diagnostic, 0, min(int(limit), 64)),
		max:   limit,
	}
}

// Add stores d unless the bag is full.
// Returns false when d was counted but not stored.
func (b *Bag) Add(d *Diagnostic) bool {
	if d == nil {
		return false
	}
	if d.Severity <= SevError {
		b.counts[d.Severity]++
	}
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors reports whether at least one error was added.
func (b *Bag) HasErrors() bool {
	return b.counts[SevError] > 0
}

// Count returns how many diagnostics of sev were added, stored or not.
func (b *Bag) Count(sev Severity) int {
	if sev > SevError {
		return 0
	}
	return b.counts[sev]
}

// Dropped returns the number of diagnostics that exceeded the limit.
func (b *Bag) Dropped() int {
	total := 0
	for _, c := range b.counts {
		total += c
	}
	return total - len(b.items)
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the stored diagnostics. Do not modify the returned slice.
func (b *Bag) Items() []*Diagnostic {
	return b.items
}

// Merge appends diagnostics from other, growing the limit if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	newTotal := len(b.items) + len(other.items)
	if total, err := safecast.Conv[uint16](newTotal); err == nil && total > b.max {
		b.max = total
	}
	for sev := range b.counts {
		b.counts[sev] += other.counts[sev]
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by file, packet index, severity (desc) and code.
// File-level diagnostics sort before packet diagnostics of the same file.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i].Location, b.items[j].Location
		if di.File != dj.File {
			return di.File < dj.File
		}
		if di.HasPacket != dj.HasPacket {
			return !di.HasPacket
		}
		if di.Index != dj.Index {
			return di.Index < dj.Index
		}
		if b.items[i].Severity != b.items[j].Severity {
			return b.items[i].Severity > b.items[j].Severity
		}
		return b.items[i].Code < b.items[j].Code
	})
}
