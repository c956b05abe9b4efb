package keycodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum_MapOrderIndependent(t *testing.T) {
	a := map[string]interface{}{
		"collection": "docs",
		"query":      "find things",
		"filters":    map[string]interface{}{"b": 2, "a": 1},
	}
	b := map[string]interface{}{
		"filters":    map[string]interface{}{"a": 1, "b": 2},
		"query":      "find things",
		"collection": "docs",
	}

	ka, err := Sum(a)
	require.NoError(t, err)
	kb, err := Sum(b)
	require.NoError(t, err)

	assert.Equal(t, ka, kb)
	assert.Len(t, ka, 64)
}

func TestSum_DistinctValues(t *testing.T) {
	ka, err := Sum(map[string]string{"query": "a"})
	require.NoError(t, err)
	kb, err := Sum(map[string]string{"query": "b"})
	require.NoError(t, err)

	assert.NotEqual(t, ka, kb)
}

func TestSum_Unserializable(t *testing.T) {
	_, err := Sum(make(chan int))
	assert.Error(t, err)
}

func TestQueryKey_Deterministic(t *testing.T) {
	k1 := QueryKey("what is memgate", "docs", "proj-1")
	k2 := QueryKey("what is memgate", "docs", "proj-1")
	assert.Equal(t, k1, k2)

	// Any component change produces a different key.
	assert.NotEqual(t, k1, QueryKey("what is memgate", "docs", "proj-2"))
	assert.NotEqual(t, k1, QueryKey("what is memgate", "other", "proj-1"))
	assert.NotEqual(t, k1, QueryKey("something else", "docs", "proj-1"))
}

func TestTrailID_Shape(t *testing.T) {
	id := TrailID("query", "docs", "recent errors")
	assert.Len(t, id, 16)
	assert.Equal(t, id, TrailID("query", "docs", "recent errors"))
	assert.NotEqual(t, id, TrailID("insert", "docs", "recent errors"))
}
