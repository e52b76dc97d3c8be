package timedomain

import "regexp"

var (
	whitespace = regexp.MustCompile(`\s+`)
	// Only day-of-week domains: (start){duration}.
	dayOfWeekPattern = regexp.MustCompile(`^\(([thm0-9]+)\)\{([dhm0-9]+)\}$`)
)

// Components holds the raw start and duration parts of an expression.
type Components struct {
	Start    string
	Duration string
}

func (c Components) String() string {
	return "(start: " + c.Start + ", duration: " + c.Duration + ")"
}

// SplitComponents separates "(<start>){<duration>}" into its two parts.
// Whitespace anywhere in expr is ignored. Brackets around the whole
// expression must already have been removed.
func SplitComponents(expr string) (Components, error) {
	s := whitespace.ReplaceAllString(expr, "")
	m := dayOfWeekPattern.FindStringSubmatch(s)
	if m == nil {
		return Components{}, &ParseError{Expr: expr, Err: ErrUnsupportedDomainType}
	}
	return Components{Start: m[1], Duration: m[2]}, nil
}
