package timedomain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	// A component must consist of tokens only; digits are counted per token.
	startShape    = regexp.MustCompile(`^(?:[thm]\d+)*$`)
	durationShape = regexp.MustCompile(`^(?:[hmd]\d+)*$`)

	dayToken      = regexp.MustCompile(`t\d+`)
	hourToken     = regexp.MustCompile(`h\d+`)
	minuteToken   = regexp.MustCompile(`m\d+`)
	dayCountToken = regexp.MustCompile(`d\d+`)
)

const wholeDay = 24 * time.Hour

type start struct {
	days   []time.Weekday
	hour   int
	minute int
}

// parseStart reads day, hour and minute tokens. Missing hour or minute
// tokens default to zero.
func parseStart(s string) (start, error) {
	if !startShape.MatchString(s) {
		return start{}, fmt.Errorf("%w: malformed start %q", ErrUnsupportedDomainType, s)
	}
	var st start
	for _, tok := range dayToken.FindAllString(s, -1) {
		code, err := number(tok, 1)
		if err != nil {
			return start{}, err
		}
		if code < 1 || code > 7 {
			return start{}, fmt.Errorf("%w: day code %d", ErrComponentRange, code)
		}
		// 1 is Sunday, 2..7 Monday..Saturday.
		st.days = append(st.days, time.Weekday(code-1))
	}

	var err error
	if st.hour, _, err = single(hourToken, s, "hour"); err != nil {
		return start{}, err
	}
	if st.minute, _, err = single(minuteToken, s, "minute"); err != nil {
		return start{}, err
	}
	if st.hour > 23 {
		return start{}, fmt.Errorf("%w: start hour %d", ErrComponentRange, st.hour)
	}
	if st.minute > 59 {
		return start{}, fmt.Errorf("%w: start minute %d", ErrComponentRange, st.minute)
	}
	if len(st.days) == 0 {
		return start{}, fmt.Errorf("%w in start %q", ErrNoWeekday, s)
	}
	return st, nil
}

// parseDuration resolves the duration component against an already parsed start.
func parseDuration(s string, st start) (time.Duration, error) {
	if !durationShape.MatchString(s) {
		return 0, fmt.Errorf("%w: malformed duration %q", ErrUnsupportedDomainType, s)
	}
	hours, _, err := single(hourToken, s, "hour")
	if err != nil {
		return 0, err
	}
	minutes, _, err := single(minuteToken, s, "minute")
	if err != nil {
		return 0, err
	}
	days, hasDays, err := single(dayCountToken, s, "day")
	if err != nil {
		return 0, err
	}

	span := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	switch {
	case !hasDays && span > 0:
		if span > wholeDay {
			return 0, fmt.Errorf("%w: %s exceeds one day", ErrUnsupportedDuration, span)
		}
		return span, nil
	case hasDays && days == 1 && span == 0 && st.hour == 0 && st.minute == 0:
		return wholeDay, nil
	case hasDays:
		return 0, fmt.Errorf("%w: d%d needs start h0m0 and no hour or minute span", ErrUnsupportedDuration, days)
	default:
		return 0, fmt.Errorf("%w: empty span %q", ErrUnsupportedDuration, s)
	}
}

// single returns the numeric value of the only match of re in s.
func single(re *regexp.Regexp, s, what string) (int, bool, error) {
	toks := re.FindAllString(s, -1)
	switch len(toks) {
	case 0:
		return 0, false, nil
	case 1:
		v, err := number(toks[0], 2)
		if err != nil {
			return 0, false, err
		}
		return v, true, nil
	default:
		return 0, false, fmt.Errorf("%w: %d %s tokens in %q", ErrAmbiguousComponent, len(toks), what, s)
	}
}

// number returns the value of a token such as "h12", allowing at most
// maxDigits digits after the prefix letter.
func number(tok string, maxDigits int) (int, error) {
	digits := tok[1:]
	if len(digits) > maxDigits {
		return 0, fmt.Errorf("%w: %q has more than %d digits", ErrComponentRange, tok, maxDigits)
	}
	return strconv.Atoi(digits)
}
