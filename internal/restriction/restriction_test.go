package restriction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turn-restrictions/internal/timedomain"
)

func mustParse(t *testing.T, expr string) timedomain.TimeDomain {
	t.Helper()
	d, err := timedomain.Parse(expr, 0)
	require.NoError(t, err)
	return d
}

// 2024-05-08 is a Wednesday, 2024-05-11 a Saturday.
var (
	wednesdayNoon = time.Date(2024, time.May, 8, 12, 0, 0, 0, time.UTC)
	saturdayNoon  = time.Date(2024, time.May, 11, 12, 0, 0, 0, time.UTC)
)

func TestRestrictionWithoutWindowsIsAlwaysActive(t *testing.T) {
	r := New(NoTurn, 1, 2, DefaultModes)
	assert.Equal(t, 0, r.NumWindows())

	at := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7*24*4; i++ {
		require.True(t, r.Active(at.Add(time.Duration(i)*15*time.Minute)))
	}
	assert.True(t, r.ActiveMillis(0))
}

func TestRestrictionNilWindowsAreIgnored(t *testing.T) {
	r := New(NoTurn, 1, 2, DefaultModes, nil, nil)
	assert.Equal(t, 0, r.NumWindows())
	assert.True(t, r.Active(saturdayNoon))
}

func TestRestrictionConjunction(t *testing.T) {
	weekdays := mustParse(t, "(t2t3t4t5t6h0m0){d1}")
	saturdays := mustParse(t, "(t7h0m0){d1}")

	r := New(NoTurn, 1, 2, DefaultModes, weekdays)
	assert.True(t, r.Active(wednesdayNoon))
	assert.False(t, r.Active(saturdayNoon))

	// The second window never overlaps the first at midday, so both must agree.
	both := New(NoTurn, 1, 2, DefaultModes, weekdays, saturdays)
	assert.Equal(t, 2, both.NumWindows())
	assert.False(t, both.Active(wednesdayNoon))
	assert.False(t, both.Active(saturdayNoon))

	rush := mustParse(t, "(t4h11m0){h2}")
	narrow := New(NoTurn, 1, 2, DefaultModes, weekdays, rush)
	assert.True(t, narrow.Active(wednesdayNoon))
	assert.False(t, narrow.Active(wednesdayNoon.Add(2*time.Hour)))
}

func TestRestrictionForbids(t *testing.T) {
	no := New(NoTurn, 1, 2, NewModeSet(Car))
	assert.True(t, no.Forbids(2, Car, wednesdayNoon))
	assert.False(t, no.Forbids(3, Car, wednesdayNoon))
	assert.False(t, no.Forbids(2, Bicycle, wednesdayNoon))

	only := New(OnlyTurn, 1, 2, NewModeSet(Car, Bicycle))
	assert.False(t, only.Forbids(2, Car, wednesdayNoon))
	assert.True(t, only.Forbids(3, Car, wednesdayNoon))
	assert.True(t, only.Forbids(4, Bicycle, wednesdayNoon))
	assert.False(t, only.Forbids(4, Walk, wednesdayNoon))

	timed := New(NoTurn, 1, 2, NewModeSet(Car), mustParse(t, "(t4h11m0){h2}"))
	assert.True(t, timed.Forbids(2, Car, wednesdayNoon))
	assert.False(t, timed.Forbids(2, Car, saturdayNoon))
}

func TestRestrictionString(t *testing.T) {
	r := New(NoTurn, 10, 20, NewModeSet(Bicycle, Car))
	assert.Equal(t, "NoTurn from 10 to 20 (bicycle,car)", r.String())
	assert.Equal(t, EdgeID(10), r.From())
	assert.Equal(t, EdgeID(20), r.To())
	assert.Equal(t, NoTurn, r.Type())
}

func TestParseType(t *testing.T) {
	for tag, want := range map[string]Type{
		"no_left_turn":     NoTurn,
		"no_u_turn":        NoTurn,
		"NO_RIGHT_TURN":    NoTurn,
		"only_straight_on": OnlyTurn,
		" only_left_turn ": OnlyTurn,
	} {
		got, err := ParseType(tag)
		require.NoError(t, err, tag)
		assert.Equal(t, want, got, tag)
	}
	_, err := ParseType("give_way")
	assert.Error(t, err)
}

func TestModeSet(t *testing.T) {
	s, err := ParseModeSet("motorcar; bicycle,psv")
	require.NoError(t, err)
	assert.True(t, s.Contains(Car))
	assert.True(t, s.Contains(Bicycle))
	assert.True(t, s.Contains(Bus))
	assert.False(t, s.Contains(Walk))
	assert.Equal(t, "bicycle,car,bus", s.String())

	assert.Equal(t, NewModeSet(Car), DefaultModes.Without(NewModeSet(Bicycle)))
	assert.True(t, DefaultModes.Without(DefaultModes).IsEmpty())

	empty, err := ParseModeSet("")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	_, err = ParseModeSet("car;hovercraft")
	assert.Error(t, err)

	for m := Walk; m < numModes; m++ {
		assert.True(t, AllModes.Contains(m), m.String())
	}
}
