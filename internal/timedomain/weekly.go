package timedomain

import (
	"fmt"
	"strings"
	"time"
)

// Weekly is a window that recurs on a set of weekdays, starting at a local
// time of day and lasting for a fixed duration, possibly past local midnight.
// A Weekly is never modified after construction.
type Weekly struct {
	days     uint8 // bit i set for time.Weekday(i)
	start    time.Duration
	duration time.Duration
	offset   int // minutes east of UTC
	loc      *time.Location
}

// NewWeekly builds a window from already validated parts. Durations longer
// than a day are not rejected here but only the previous day is considered
// during evaluation.
func NewWeekly(days []time.Weekday, startHour, startMinute int, duration time.Duration, zoneOffsetMinutes int) *Weekly {
	var mask uint8
	for _, d := range days {
		mask |= 1 << uint(d%7)
	}
	return &Weekly{
		days:     mask,
		start:    time.Duration(startHour)*time.Hour + time.Duration(startMinute)*time.Minute,
		duration: duration,
		offset:   zoneOffsetMinutes,
		loc:      time.FixedZone(zoneName(zoneOffsetMinutes), zoneOffsetMinutes*60),
	}
}

// FromComponents tokenizes split components into a Weekly.
func FromComponents(c Components, zoneOffsetMinutes int) (*Weekly, error) {
	st, err := parseStart(c.Start)
	if err != nil {
		return nil, &ParseError{Components: c, Err: err}
	}
	d, err := parseDuration(c.Duration, st)
	if err != nil {
		return nil, &ParseError{Components: c, Err: err}
	}
	return NewWeekly(st.days, st.hour, st.minute, d, zoneOffsetMinutes), nil
}

// IsActiveAt reports whether t falls inside the window that starts on t's
// local weekday, or inside the one that started the local day before.
// Both window ends are inclusive.
func (w *Weekly) IsActiveAt(t time.Time) bool {
	local := t.In(w.loc)
	y, m, d := local.Date()
	wd := local.Weekday()
	if w.on(wd) && w.covers(local, y, m, d) {
		return true
	}
	if w.on((wd+6)%7) && w.covers(local, y, m, d-1) {
		return true
	}
	return false
}

// IsActiveAtMillis is IsActiveAt for a Unix time in milliseconds.
func (w *Weekly) IsActiveAtMillis(ms int64) bool {
	return w.IsActiveAt(time.UnixMilli(ms))
}

func (w *Weekly) on(d time.Weekday) bool { return w.days&(1<<uint(d)) != 0 }

func (w *Weekly) covers(local time.Time, y int, m time.Month, d int) bool {
	from := time.Date(y, m, d, 0, 0, 0, 0, w.loc).Add(w.start)
	to := from.Add(w.duration)
	return !local.Before(from) && !local.After(to)
}

// Weekdays returns the active days in Sunday..Saturday order.
func (w *Weekly) Weekdays() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w.on(d) {
			out = append(out, d)
		}
	}
	return out
}

// Start returns the local start time of day.
func (w *Weekly) Start() (hour, minute int) {
	return int(w.start / time.Hour), int(w.start % time.Hour / time.Minute)
}

func (w *Weekly) Duration() time.Duration { return w.duration }

func (w *Weekly) ZoneOffsetMinutes() int { return w.offset }

// String renders the window back in expression form.
func (w *Weekly) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, d := range w.Weekdays() {
		fmt.Fprintf(&b, "t%d", int(d)+1)
	}
	h, m := w.Start()
	fmt.Fprintf(&b, "h%dm%d){", h, m)
	if w.duration == wholeDay && w.start == 0 {
		b.WriteString("d1")
	} else {
		fmt.Fprintf(&b, "h%dm%d", int(w.duration/time.Hour), int(w.duration%time.Hour/time.Minute))
	}
	b.WriteByte('}')
	return b.String()
}

func (*Weekly) isTimeDomain() {}

func zoneName(offsetMinutes int) string {
	sign := '+'
	if offsetMinutes < 0 {
		sign = '-'
		offsetMinutes = -offsetMinutes
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offsetMinutes/60, offsetMinutes%60)
}
