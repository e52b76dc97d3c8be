// Package build turns raw restriction records into restrictions at graph
// build time.
package build

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"turn-restrictions/internal/osm"
	"turn-restrictions/internal/restriction"
	"turn-restrictions/internal/timedomain"
)

var (
	ErrRestrictionType = errors.New("unsupported restriction type")
	ErrModes           = errors.New("invalid travel modes")
)

// Metrics receives build outcomes. Implementations must be safe for concurrent use.
type Metrics interface {
	ParseFailureInc(reason string)
	RestrictionBuiltInc()
}

type Builder struct {
	zoneOffset int
	logger     *zap.Logger
	metrics    Metrics
	hook       timedomain.Hook
}

type Option func(*Builder)

func WithLogger(l *zap.Logger) Option { return func(b *Builder) { b.logger = l } }

func WithMetrics(m Metrics) Option { return func(b *Builder) { b.metrics = m } }

// WithEvaluationHook attaches hook to every parsed time domain.
func WithEvaluationHook(h timedomain.Hook) Option { return func(b *Builder) { b.hook = h } }

// New returns a Builder interpreting time domains at zoneOffsetMinutes unless
// a record carries its own offset.
func New(zoneOffsetMinutes int, opts ...Option) *Builder {
	b := &Builder{zoneOffset: zoneOffsetMinutes}
	for _, o := range opts {
		o(b)
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// Build converts one record. Any unparsable part fails the whole record.
func (b *Builder) Build(rec osm.RestrictionRecord) (*restriction.Restriction, error) {
	typ, err := restriction.ParseType(rec.Restriction)
	if err != nil {
		return nil, fmt.Errorf("relation %d: %w: %v", rec.RelationID, ErrRestrictionType, err)
	}

	modes := restriction.DefaultModes
	if rec.Modes != "" {
		if modes, err = restriction.ParseModeSet(rec.Modes); err != nil {
			return nil, fmt.Errorf("relation %d: %w: %v", rec.RelationID, ErrModes, err)
		}
	}
	except, err := restriction.ParseModeSet(rec.Except)
	if err != nil {
		return nil, fmt.Errorf("relation %d: %w: %v", rec.RelationID, ErrModes, err)
	}
	modes = modes.Without(except)
	if modes.IsEmpty() {
		return nil, fmt.Errorf("relation %d: %w: no mode left after exceptions", rec.RelationID, ErrModes)
	}

	offset := b.zoneOffset
	if rec.ZoneOffsetMinutes != nil {
		offset = *rec.ZoneOffsetMinutes
	}
	windows := make([]timedomain.TimeDomain, 0, len(rec.TimeDomains))
	for _, expr := range rec.TimeDomains {
		d, err := timedomain.Parse(expr, offset)
		if err != nil {
			return nil, fmt.Errorf("relation %d: %w", rec.RelationID, err)
		}
		windows = append(windows, timedomain.Traced(d, b.hook))
	}

	return restriction.New(typ, restriction.EdgeID(rec.FromEdge), restriction.EdgeID(rec.ToEdge), modes, windows...), nil
}

// BuildAll converts every record it can. Records that fail are logged and
// dropped: a restriction whose time domain cannot be read is left out of the
// graph rather than applied unconditionally. The number dropped is returned.
func (b *Builder) BuildAll(recs []osm.RestrictionRecord) ([]*restriction.Restriction, int) {
	out := make([]*restriction.Restriction, 0, len(recs))
	dropped := 0
	for _, rec := range recs {
		r, err := b.Build(rec)
		if err != nil {
			dropped++
			b.logger.Warn("dropping turn restriction",
				zap.Int64("relation", rec.RelationID),
				zap.String("reason", Reason(err)),
				zap.Error(err))
			if b.metrics != nil {
				b.metrics.ParseFailureInc(Reason(err))
			}
			continue
		}
		if b.metrics != nil {
			b.metrics.RestrictionBuiltInc()
		}
		out = append(out, r)
	}
	return out, dropped
}

// Reason classifies a Build error into a short label.
func Reason(err error) string {
	switch {
	case errors.Is(err, timedomain.ErrUnsupportedDomainType):
		return "unsupported_domain_type"
	case errors.Is(err, timedomain.ErrAmbiguousComponent):
		return "ambiguous_component"
	case errors.Is(err, timedomain.ErrUnsupportedDuration):
		return "unsupported_duration"
	case errors.Is(err, timedomain.ErrComponentRange):
		return "component_range"
	case errors.Is(err, ErrRestrictionType):
		return "restriction_type"
	case errors.Is(err, ErrModes):
		return "modes"
	}
	return "other"
}
