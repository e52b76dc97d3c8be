package restriction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexCanTurn(t *testing.T) {
	rush := mustParse(t, "(t4h11m0){h2}")
	ix := NewIndex([]*Restriction{
		New(NoTurn, 1, 2, NewModeSet(Car)),
		New(NoTurn, 1, 3, NewModeSet(Car), rush),
		New(OnlyTurn, 5, 6, DefaultModes),
		nil,
	})
	assert.Equal(t, 3, ix.Len())
	assert.Len(t, ix.From(1), 2)
	assert.Empty(t, ix.From(9))

	assert.False(t, ix.CanTurn(1, 2, Car, saturdayNoon))
	assert.True(t, ix.CanTurn(1, 2, Walk, saturdayNoon))
	assert.False(t, ix.CanTurn(1, 3, Car, wednesdayNoon))
	assert.True(t, ix.CanTurn(1, 3, Car, saturdayNoon))
	assert.True(t, ix.CanTurn(1, 4, Car, wednesdayNoon))

	assert.True(t, ix.CanTurn(5, 6, Bicycle, saturdayNoon))
	assert.False(t, ix.CanTurn(5, 7, Bicycle, saturdayNoon))

	b := ix.Blocking(5, 7, Car, saturdayNoon)
	if assert.NotNil(t, b) {
		assert.Equal(t, OnlyTurn, b.Type())
	}
}

func TestIndexFromReturnsCopy(t *testing.T) {
	ix := NewIndex([]*Restriction{New(NoTurn, 1, 2, DefaultModes)})
	rs := ix.From(1)
	rs[0] = nil
	assert.NotNil(t, ix.From(1)[0])
}

func TestNilIndex(t *testing.T) {
	var ix *Index
	assert.Equal(t, 0, ix.Len())
	assert.Nil(t, ix.From(1))
	assert.True(t, ix.CanTurn(1, 2, Car, saturdayNoon))
}
