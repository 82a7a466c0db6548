package compare

import "time"

// Window is an inclusive date range. Zero bounds are open: a Window with no
// From accepts everything up to To, and a fully zero Window accepts any
// instant.
type Window struct {
	From time.Time
	To   time.Time
}

// IsValid reports whether the window can match anything. A window whose From
// lies after its To is empty by definition, which callers treat as "return
// empty results", not as an error.
func (w Window) IsValid() bool {
	if w.From.IsZero() || w.To.IsZero() {
		return true
	}
	return !w.From.After(w.To)
}

// Contains reports whether t falls inside the window, bounds inclusive.
func (w Window) Contains(t time.Time) bool {
	if !w.IsValid() {
		return false
	}
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}

// IsBounded reports whether at least one bound is set.
func (w Window) IsBounded() bool {
	return !w.From.IsZero() || !w.To.IsZero()
}
