package transport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turn-restrictions/internal/restriction"
)

type indexGate struct{ ix *restriction.Index }

func (g indexGate) Check(from, to restriction.EdgeID, mode restriction.Mode, t time.Time) (bool, *restriction.Restriction) {
	r := g.ix.Blocking(from, to, mode, t)
	return r == nil, r
}

type countingMetrics struct {
	requests  map[string]int
	connected bool
}

func (c *countingMetrics) RequestInc(status string) { c.requests[status]++ }
func (c *countingMetrics) SetConnected(b bool)      { c.connected = b }

func newResponder(t *testing.T) (*Responder, *countingMetrics) {
	t.Helper()
	m := &countingMetrics{requests: map[string]int{}}
	ix := restriction.NewIndex([]*restriction.Restriction{
		restriction.New(restriction.NoTurn, 1, 2, restriction.NewModeSet(restriction.Car)),
	})
	r := &Responder{gate: indexGate{ix: ix}, metrics: m, now: func() time.Time {
		return time.Date(2024, time.May, 8, 12, 0, 0, 0, time.UTC)
	}}
	return r, m
}

func decode(t *testing.T, b []byte) CheckResponse {
	t.Helper()
	var resp CheckResponse
	require.NoError(t, json.Unmarshal(b, &resp))
	return resp
}

func TestAnswer(t *testing.T) {
	r, m := newResponder(t)

	resp := decode(t, r.Answer([]byte(`{"from":1,"to":2,"mode":"car"}`)))
	assert.False(t, resp.Allowed)
	assert.Equal(t, "NoTurn from 1 to 2 (car)", resp.Restriction)

	resp = decode(t, r.Answer([]byte(`{"from":1,"to":2,"mode":"bicycle","time":"2024-05-08T12:00:00Z"}`)))
	assert.True(t, resp.Allowed)
	assert.Empty(t, resp.Restriction)

	resp = decode(t, r.Answer([]byte(`{"from":1,"to":2,"mode":"hovercraft"}`)))
	assert.False(t, resp.Allowed)
	assert.Contains(t, resp.Error, "hovercraft")

	resp = decode(t, r.Answer([]byte(`not json`)))
	assert.Contains(t, resp.Error, "invalid request")

	assert.Equal(t, map[string]int{"forbidden": 1, "allowed": 1, "bad_request": 2}, m.requests)
}
