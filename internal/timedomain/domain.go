// Package timedomain parses and evaluates the compact time-domain notation
// attached to conditional turn restrictions, e.g. "[(t2t3t4t5t6h11m30){h2m30}]".
//
// Parsing happens once while restrictions are loaded. The resulting values are
// immutable and may be evaluated from any number of goroutines without locking.
package timedomain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrUnsupportedDomainType is returned for text that is not a day-of-week
	// expression of the form (<start>){<duration>}.
	ErrUnsupportedDomainType = errors.New("unsupported time domain type")
	// ErrAmbiguousComponent is returned when a component repeats an hour,
	// minute or day-count token.
	ErrAmbiguousComponent = errors.New("ambiguous time domain component")
	// ErrUnsupportedDuration is returned for duration shapes other than an
	// hour/minute span or a single whole day starting at midnight.
	ErrUnsupportedDuration = errors.New("unsupported time domain duration")
	// ErrComponentRange is returned for a day code, hour or minute outside
	// its valid range.
	ErrComponentRange = errors.New("time domain component out of range")

	// ErrNoWeekday is returned for a start component without any day token.
	// Such a window could never be active. It wraps ErrUnsupportedDomainType.
	ErrNoWeekday = fmt.Errorf("%w: no day of week", ErrUnsupportedDomainType)
)

// ParseError describes a failed parse. It unwraps to one of the sentinel errors.
type ParseError struct {
	Expr       string
	Components Components
	Err        error
}

func (e *ParseError) Error() string {
	if e.Expr != "" {
		return fmt.Sprintf("time domain %q: %v", e.Expr, e.Err)
	}
	return fmt.Sprintf("time domain %s: %v", e.Components, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TimeDomain is a predicate over instants. The set of implementations is
// closed to this package.
type TimeDomain interface {
	IsActiveAt(t time.Time) bool
	isTimeDomain()
}

// Parse parses a single bracketed expression. One enclosing pair of square
// brackets is accepted and removed. zoneOffsetMinutes is the fixed UTC offset
// in which the expression's weekdays and times are interpreted.
func Parse(expr string, zoneOffsetMinutes int) (TimeDomain, error) {
	c, err := SplitComponents(stripBrackets(expr))
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Expr = expr
		}
		return nil, err
	}
	w, err := FromComponents(c, zoneOffsetMinutes)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Expr = expr
		}
		return nil, err
	}
	return w, nil
}

// ParseLenient is Parse for callers that prefer to skip bad input. Failures
// are logged at warn level and reported as ok == false; the caller must treat
// that as "no time domain produced", never as always or never active.
func ParseLenient(expr string, zoneOffsetMinutes int, logger *zap.Logger) (TimeDomain, bool) {
	d, err := Parse(expr, zoneOffsetMinutes)
	if err != nil {
		if logger != nil {
			logger.Warn("skipping time domain", zap.String("expr", expr), zap.Error(err))
		}
		return nil, false
	}
	return d, true
}

func stripBrackets(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return s
}

// Hook receives every evaluation of a traced domain.
type Hook func(t time.Time, active bool)

type traced struct {
	d    TimeDomain
	hook Hook
}

// Traced wraps d so that hook observes each evaluation. A nil hook returns d unchanged.
func Traced(d TimeDomain, hook Hook) TimeDomain {
	if hook == nil || d == nil {
		return d
	}
	return &traced{d: d, hook: hook}
}

func (t *traced) IsActiveAt(at time.Time) bool {
	active := t.d.IsActiveAt(at)
	t.hook(at, active)
	return active
}

func (t *traced) String() string { return fmt.Sprint(t.d) }

func (*traced) isTimeDomain() {}
