package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainGraph builds A -r1-> B -r2-> C with no other edges.
func chainGraph() *Graph {
	g := New()
	g.AddEntity("A", "node", nil)
	g.AddEntity("B", "node", nil)
	g.AddEntity("C", "node", nil)
	g.AddRelationship("r1", "A", "B", "link", nil)
	g.AddRelationship("r2", "B", "C", "link", nil)
	return g
}

func TestFindPath_Chain(t *testing.T) {
	g := chainGraph()

	path, ok := g.FindPath("A", "C", 5)
	require.True(t, ok)
	assert.Equal(t, []PathStep{
		{EntityID: "A", RelationshipID: "r1"},
		{EntityID: "B", RelationshipID: "r2"},
		{EntityID: "C", RelationshipID: ""},
	}, path)
}

func TestFindPath_DepthBound(t *testing.T) {
	g := chainGraph()

	_, ok := g.FindPath("A", "C", 1)
	assert.False(t, ok)

	path, ok := g.FindPath("A", "C", 2)
	require.True(t, ok)
	assert.Len(t, path, 3)
}

func TestFindPath_SelfIsEmpty(t *testing.T) {
	g := chainGraph()

	path, ok := g.FindPath("A", "A", 0)
	require.True(t, ok)
	assert.Empty(t, path)
}

func TestFindPath_MissingEndpoints(t *testing.T) {
	g := chainGraph()

	_, ok := g.FindPath("A", "ghost", 5)
	assert.False(t, ok)
	_, ok = g.FindPath("ghost", "C", 5)
	assert.False(t, ok)
}

func TestFindPath_Undirected(t *testing.T) {
	g := chainGraph()

	// Relationships are traversable against their direction.
	path, ok := g.FindPath("C", "A", 5)
	require.True(t, ok)
	assert.Equal(t, []PathStep{
		{EntityID: "C", RelationshipID: "r2"},
		{EntityID: "B", RelationshipID: "r1"},
		{EntityID: "A", RelationshipID: ""},
	}, path)
}

func TestFindPath_Disconnected(t *testing.T) {
	g := chainGraph()
	g.AddEntity("island", "node", nil)

	_, ok := g.FindPath("A", "island", 10)
	assert.False(t, ok)
}

func TestFindPath_PrefersFewerHops(t *testing.T) {
	g := chainGraph()
	// A direct A->C shortcut added after the chain.
	g.AddRelationship("short", "A", "C", "link", nil)

	path, ok := g.FindPath("A", "C", 5)
	require.True(t, ok)
	assert.Equal(t, []PathStep{
		{EntityID: "A", RelationshipID: "short"},
		{EntityID: "C", RelationshipID: ""},
	}, path)
}

func TestFindPath_CycleTerminates(t *testing.T) {
	g := New()
	const n = 6
	for i := 0; i < n; i++ {
		g.AddEntity(fmt.Sprintf("n%d", i), "node", nil)
	}
	for i := 0; i < n; i++ {
		g.AddRelationship(fmt.Sprintf("r%d", i), fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", (i+1)%n), "ring", nil)
	}

	// Around the ring the shorter arc wins.
	path, ok := g.FindPath("n0", "n4", n)
	require.True(t, ok)
	assert.Len(t, path, 3) // n0 -r5- n5 -r4- n4 ... two hops plus terminal step
}
