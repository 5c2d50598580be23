package diag

import "sort"

// Bag collects diagnostics up to a fixed limit.
type Bag struct {
	items []Diagnostic
	max   int
	// dropped counts diagnostics rejected because the bag was full.
	dropped int
}

// NewBag returns a bag that keeps at most max diagnostics.
// A non-positive max means no limit.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add appends d, returning false when the limit is reached.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Errorf adds an error diagnostic.
func (b *Bag) Errorf(code Code, loc Location, src, msg string) bool {
	return b.Add(Diagnostic{Severity: SevError, Code: code, Loc: loc, Source: src, Message: msg})
}

// Warnf adds a warning diagnostic.
func (b *Bag) Warnf(code Code, loc Location, src, msg string) bool {
	return b.Add(Diagnostic{Severity: SevWarning, Code: code, Loc: loc, Source: src, Message: msg})
}

// HasErrors reports whether any diagnostic has SevError.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any diagnostic is at least a warning.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int { return len(b.items) }

// Dropped returns how many diagnostics did not fit.
func (b *Bag) Dropped() int { return b.dropped }

// Items returns the collected diagnostics. The slice must not be modified.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sort orders diagnostics by function, index, severity (desc) and code.
// Functions keep their first-seen order.
func (b *Bag) Sort() {
	order := make(map[string]int)
	for _, d := range b.items {
		if _, ok := order[d.Loc.Func]; !ok {
			order[d.Loc.Func] = len(order)
		}
	}
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Loc.Func != dj.Loc.Func {
			return order[di.Loc.Func] < order[dj.Loc.Func]
		}
		if di.Loc.Index != dj.Loc.Index {
			return di.Loc.Index < dj.Loc.Index
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
