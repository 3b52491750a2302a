package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sent_ids.json")
	l := LoadFile(path, 100, nil)

	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Contains("edinet_S100ABCD"))
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sent_ids.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	l := LoadFile(path, 100, nil)
	assert.Equal(t, 0, l.Len())
}

func TestPersistReloadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sent_ids.json")

	l := LoadFile(path, 100, nil)
	l.Add("edinet_S100AAAA")
	l.Add("tdnet_20260829_7203")
	require.NoError(t, l.Persist())

	reloaded := LoadFile(path, 100, nil)
	assert.Equal(t, 2, reloaded.Len())
	assert.True(t, reloaded.Contains("edinet_S100AAAA"))
	assert.True(t, reloaded.Contains("tdnet_20260829_7203"))

	// Published file is the documented single-object shape.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var state struct {
		IDs []string `json:"ids"`
	}
	require.NoError(t, json.Unmarshal(raw, &state))
	assert.Equal(t, []string{"edinet_S100AAAA", "tdnet_20260829_7203"}, state.IDs)
}

func TestCapacityKeepsMostRecent(t *testing.T) {
	t.Parallel()

	const capacity = 10
	l := NewMemory(capacity)

	for i := 0; i < capacity+5; i++ {
		l.Add(fmt.Sprintf("edinet_S%04d", i))
	}

	assert.Equal(t, capacity, l.Len())
	for i := 0; i < 5; i++ {
		assert.False(t, l.Contains(fmt.Sprintf("edinet_S%04d", i)), "oldest keys evicted")
	}
	for i := 5; i < capacity+5; i++ {
		assert.True(t, l.Contains(fmt.Sprintf("edinet_S%04d", i)), "recent keys retained")
	}
}

func TestCapacityAppliesOnLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sent_ids.json")

	big := LoadFile(path, 50, nil)
	for i := 0; i < 50; i++ {
		big.Add(fmt.Sprintf("edinet_S%04d", i))
	}
	require.NoError(t, big.Persist())

	// Reloading with a smaller bound trims to the most recent entries.
	small := LoadFile(path, 20, nil)
	assert.Equal(t, 20, small.Len())
	assert.False(t, small.Contains("edinet_S0029"))
	assert.True(t, small.Contains("edinet_S0030"))
	assert.True(t, small.Contains("edinet_S0049"))
}

func TestAddIsIdempotent(t *testing.T) {
	t.Parallel()

	l := NewMemory(10)
	l.Add("edinet_S100AAAA")
	l.Add("edinet_S100AAAA")
	l.Add("")

	assert.Equal(t, 1, l.Len())
}
