// Package restriction models turn restrictions between graph edges and the
// gate the traversal engine consults before following a from→to transition.
package restriction

import (
	"fmt"
	"strings"
	"time"

	"turn-restrictions/internal/timedomain"
)

// EdgeID identifies an edge in the external routing graph.
type EdgeID int64

type Type uint8

const (
	// NoTurn forbids moving from the from edge onto the to edge.
	NoTurn Type = iota
	// OnlyTurn forbids moving from the from edge onto any edge but the to edge.
	OnlyTurn
)

func (t Type) String() string {
	switch t {
	case NoTurn:
		return "NoTurn"
	case OnlyTurn:
		return "OnlyTurn"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType maps an OSM restriction value such as "no_left_turn" or
// "only_straight_on" to a Type.
func ParseType(tag string) (Type, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch {
	case strings.HasPrefix(tag, "no_"):
		return NoTurn, nil
	case strings.HasPrefix(tag, "only_"):
		return OnlyTurn, nil
	}
	return 0, fmt.Errorf("unsupported restriction %q", tag)
}

// Restriction is read-only once built.
type Restriction struct {
	typ     Type
	from    EdgeID
	to      EdgeID
	modes   ModeSet
	windows []timedomain.TimeDomain
}

func New(typ Type, from, to EdgeID, modes ModeSet, windows ...timedomain.TimeDomain) *Restriction {
	var ws []timedomain.TimeDomain
	for _, w := range windows {
		if w != nil {
			ws = append(ws, w)
		}
	}
	return &Restriction{typ: typ, from: from, to: to, modes: modes, windows: ws}
}

func (r *Restriction) Type() Type      { return r.typ }
func (r *Restriction) From() EdgeID    { return r.from }
func (r *Restriction) To() EdgeID      { return r.to }
func (r *Restriction) Modes() ModeSet  { return r.modes }
func (r *Restriction) NumWindows() int { return len(r.windows) }

// AppliesTo reports whether the restriction constrains travel by m.
func (r *Restriction) AppliesTo(m Mode) bool { return r.modes.Contains(m) }

// Active reports whether the restriction is in force at t: always when it has
// no windows, otherwise only when every window is active.
func (r *Restriction) Active(t time.Time) bool {
	for _, w := range r.windows {
		if !w.IsActiveAt(t) {
			return false
		}
	}
	return true
}

// ActiveMillis is Active for a Unix time in milliseconds.
func (r *Restriction) ActiveMillis(ms int64) bool { return r.Active(time.UnixMilli(ms)) }

// Forbids reports whether the restriction blocks from→to for mode at t.
func (r *Restriction) Forbids(to EdgeID, mode Mode, t time.Time) bool {
	if !r.AppliesTo(mode) {
		return false
	}
	switch r.typ {
	case NoTurn:
		if to != r.to {
			return false
		}
	case OnlyTurn:
		if to == r.to {
			return false
		}
	}
	return r.Active(t)
}

func (r *Restriction) String() string {
	return fmt.Sprintf("%s from %d to %d (%s)", r.typ, r.from, r.to, r.modes)
}
