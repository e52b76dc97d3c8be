package osm

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
restrictions:
  - relation: 101
    restriction: no_left_turn
    from: 10
    to: 11
    modes: car
    time_domains:
      - "[(t2t3t4t5t6h7m0){h2}]"
  - relation: 102
    restriction: only_straight_on
    from: 12
    to: 13
    except: bicycle
    zone_offset_minutes: -300
`

func TestDecode(t *testing.T) {
	recs, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, int64(101), recs[0].RelationID)
	assert.Equal(t, "no_left_turn", recs[0].Restriction)
	assert.Equal(t, []string{"[(t2t3t4t5t6h7m0){h2}]"}, recs[0].TimeDomains)
	assert.Nil(t, recs[0].ZoneOffsetMinutes)

	assert.Equal(t, "bicycle", recs[1].Except)
	require.NotNil(t, recs[1].ZoneOffsetMinutes)
	assert.Equal(t, -300, *recs[1].ZoneOffsetMinutes)
}

func TestDecodeEmpty(t *testing.T) {
	recs, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDecodeRejectsInvalidRecords(t *testing.T) {
	for name, doc := range map[string]string{
		"missing relation": "restrictions:\n  - restriction: no_u_turn\n    from: 1\n    to: 2\n",
		"bad tag":          "restrictions:\n  - relation: 1\n    restriction: give_way\n",
		"empty domain":     "restrictions:\n  - relation: 1\n    restriction: no_u_turn\n    time_domains: [\"\"]\n",
		"offset too large": "restrictions:\n  - relation: 1\n    restriction: no_u_turn\n    zone_offset_minutes: 5000\n",
		"not yaml":         "restrictions: [[[",
	} {
		_, err := Decode(strings.NewReader(doc))
		assert.Error(t, err, name)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restrictions.yml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	recs, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.yml")}.Load(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FileSource{Path: path}.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
