package restriction

import "time"

// Index groups restrictions by their from edge. It is immutable and safe for
// concurrent use; a nil *Index has no restrictions.
type Index struct {
	byFrom map[EdgeID][]*Restriction
	n      int
}

func NewIndex(rs []*Restriction) *Index {
	ix := &Index{byFrom: make(map[EdgeID][]*Restriction)}
	for _, r := range rs {
		if r == nil {
			continue
		}
		ix.byFrom[r.from] = append(ix.byFrom[r.from], r)
		ix.n++
	}
	return ix
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.n
}

// From returns the restrictions starting on edge e.
func (ix *Index) From(e EdgeID) []*Restriction {
	if ix == nil {
		return nil
	}
	rs := ix.byFrom[e]
	out := make([]*Restriction, len(rs))
	copy(out, rs)
	return out
}

// Blocking returns the first restriction that forbids from→to for mode at t, or nil.
func (ix *Index) Blocking(from, to EdgeID, mode Mode, t time.Time) *Restriction {
	if ix == nil {
		return nil
	}
	for _, r := range ix.byFrom[from] {
		if r.Forbids(to, mode, t) {
			return r
		}
	}
	return nil
}

// CanTurn is the traversal gate for a from→to transition.
func (ix *Index) CanTurn(from, to EdgeID, mode Mode, t time.Time) bool {
	return ix.Blocking(from, to, mode, t) == nil
}
