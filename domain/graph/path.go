package graph

// queueItem is one BFS frontier element: an entity and the path that
// reached it.
type queueItem struct {
	entityID string
	path     []PathStep
}

// FindPath searches for a path between two entities with breadth-first
// search over the undirected view of the graph: a relationship is
// traversable from either endpoint. The first path found is returned, so
// the result is shortest in hop count, with ties broken by the attachment
// order of relationships on each entity. The number of hops is bounded by
// maxDepth. Identical endpoints yield an empty, found path; a missing
// endpoint yields not-found.
func (g *Graph) FindPath(sourceID, targetID string, maxDepth int) ([]PathStep, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.entities[sourceID]; !ok {
		return nil, false
	}
	if _, ok := g.entities[targetID]; !ok {
		return nil, false
	}
	if sourceID == targetID {
		return []PathStep{}, true
	}

	visited := make(map[string]struct{})
	queue := []queueItem{{entityID: sourceID}}

	// The frontier is consumed by advancing head instead of re-slicing the
	// front off, keeping dequeue O(1).
	for head := 0; head < len(queue); head++ {
		current := queue[head]

		if len(current.path) >= maxDepth {
			continue
		}
		if _, seen := visited[current.entityID]; seen {
			continue
		}
		visited[current.entityID] = struct{}{}

		for _, conn := range g.connectedLocked(current.entityID, "") {
			step := PathStep{EntityID: current.entityID, RelationshipID: conn.Relationship.ID}
			next := make([]PathStep, len(current.path), len(current.path)+2)
			copy(next, current.path)
			next = append(next, step)

			if conn.Entity.ID == targetID {
				return append(next, PathStep{EntityID: targetID}), true
			}
			queue = append(queue, queueItem{entityID: conn.Entity.ID, path: next})
		}
	}

	return nil, false
}
