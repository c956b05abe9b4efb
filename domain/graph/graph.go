// Package graph maintains the in-process entity-relationship graph: typed
// entities, directed typed relationships, type and endpoint-pair indices,
// and bounded-depth path search over the undirected view. The graph is a
// process-wide singleton with no persistence; export/import exists only to
// move snapshots through the adapter layer.
package graph

import "sync"

// pairKey indexes relationships by their directed endpoint pair.
type pairKey struct {
	source string
	target string
}

// Statistics summarizes graph contents by type.
type Statistics struct {
	TotalEntities      int            `json:"total_entities"`
	TotalRelationships int            `json:"total_relationships"`
	EntityTypes        map[string]int `json:"entity_types"`
	RelationshipTypes  map[string]int `json:"relationship_types"`
}

// ExportData is the serialized form of the whole graph.
type ExportData struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}

// Graph is the aggregate holding the primary entity and relationship maps
// together with their indices. Every mutating operation keeps the indices
// consistent with the primary maps; a single RWMutex serializes mutation
// against concurrent readers.
type Graph struct {
	mu            sync.RWMutex
	entities      map[string]*entityRecord
	relationships map[string]*Relationship
	typeIndex     map[string]map[string]struct{}
	pairIndex     map[pairKey]map[string]struct{}
	entityOrder   []string
	relOrder      []string
}

// New creates an empty graph.
func New() *Graph {
	g := &Graph{}
	g.reset()
	return g
}

func (g *Graph) reset() {
	g.entities = make(map[string]*entityRecord)
	g.relationships = make(map[string]*Relationship)
	g.typeIndex = make(map[string]map[string]struct{})
	g.pairIndex = make(map[pairKey]map[string]struct{})
	g.entityOrder = nil
	g.relOrder = nil
}

// AddEntity inserts an entity, replacing any prior record under the same id.
// Replacement starts from an empty relationship set; the relationship map
// and indices retain whatever was already recorded against the id.
func (g *Graph) AddEntity(id, entityType string, properties map[string]interface{}) Entity {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addEntityLocked(id, entityType, properties)
}

func (g *Graph) addEntityLocked(id, entityType string, properties map[string]interface{}) Entity {
	if _, exists := g.entities[id]; !exists {
		g.entityOrder = append(g.entityOrder, id)
	}
	record := newEntityRecord(id, entityType, properties)
	g.entities[id] = record

	ids, ok := g.typeIndex[entityType]
	if !ok {
		ids = make(map[string]struct{})
		g.typeIndex[entityType] = ids
	}
	ids[id] = struct{}{}

	return record.snapshot()
}

// AddRelationship inserts a directed relationship between two existing
// entities. It reports false, inserting nothing, when either endpoint is
// absent. On success the relationship is registered in both endpoint
// entities and in the (source, target) index.
func (g *Graph) AddRelationship(id, sourceID, targetID, relationshipType string, properties map[string]interface{}) (Relationship, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addRelationshipLocked(id, sourceID, targetID, relationshipType, properties)
}

func (g *Graph) addRelationshipLocked(id, sourceID, targetID, relationshipType string, properties map[string]interface{}) (Relationship, bool) {
	source, sourceOK := g.entities[sourceID]
	target, targetOK := g.entities[targetID]
	if !sourceOK || !targetOK {
		return Relationship{}, false
	}

	if _, exists := g.relationships[id]; !exists {
		g.relOrder = append(g.relOrder, id)
	}
	rel := &Relationship{
		ID:         id,
		SourceID:   sourceID,
		TargetID:   targetID,
		Type:       relationshipType,
		Properties: copyProperties(properties),
	}
	g.relationships[id] = rel

	key := pairKey{source: sourceID, target: targetID}
	ids, ok := g.pairIndex[key]
	if !ok {
		ids = make(map[string]struct{})
		g.pairIndex[key] = ids
	}
	ids[id] = struct{}{}

	source.attach(id)
	target.attach(id)

	return *rel, true
}

// GetEntity returns a snapshot of the entity with the given id.
func (g *Graph) GetEntity(id string) (Entity, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	record, ok := g.entities[id]
	if !ok {
		return Entity{}, false
	}
	return record.snapshot(), true
}

// GetEntitiesByType returns snapshots of every entity indexed under the
// given type.
func (g *Graph) GetEntitiesByType(entityType string) []Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := g.typeIndex[entityType]
	out := make([]Entity, 0, len(ids))
	for _, id := range g.entityOrder {
		if _, ok := ids[id]; !ok {
			continue
		}
		if record, ok := g.entities[id]; ok {
			out = append(out, record.snapshot())
		}
	}
	return out
}

// GetRelationship returns the relationship with the given id.
func (g *Graph) GetRelationship(id string) (Relationship, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rel, ok := g.relationships[id]
	if !ok {
		return Relationship{}, false
	}
	return *rel, true
}

// GetRelationshipsBetween returns every relationship directed from sourceID
// to targetID.
func (g *Graph) GetRelationshipsBetween(sourceID, targetID string) []Relationship {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := g.pairIndex[pairKey{source: sourceID, target: targetID}]
	out := make([]Relationship, 0, len(ids))
	for _, id := range g.relOrder {
		if _, ok := ids[id]; !ok {
			continue
		}
		if rel, ok := g.relationships[id]; ok {
			out = append(out, *rel)
		}
	}
	return out
}

// GetConnected resolves the neighbors of an entity across its incident
// relationships, in attachment order. When relationshipType is non-empty,
// relationships of other types are skipped. Pairs whose other endpoint
// cannot be resolved are skipped as well.
func (g *Graph) GetConnected(entityID, relationshipType string) []Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.connectedLocked(entityID, relationshipType)
}

func (g *Graph) connectedLocked(entityID, relationshipType string) []Connection {
	record, ok := g.entities[entityID]
	if !ok {
		return nil
	}

	var out []Connection
	for _, relID := range record.relIDs {
		rel, ok := g.relationships[relID]
		if !ok {
			continue
		}
		if relationshipType != "" && rel.Type != relationshipType {
			continue
		}

		otherID := rel.TargetID
		if rel.SourceID != entityID {
			otherID = rel.SourceID
		}
		other, ok := g.entities[otherID]
		if !ok {
			continue
		}
		out = append(out, Connection{Entity: other.snapshot(), Relationship: *rel})
	}
	return out
}

// Statistics reports entity and relationship counts by type.
func (g *Graph) Statistics() Statistics {
	g.mu.RLock()
	defer g.mu.RUnlock()

	stats := Statistics{
		TotalEntities:      len(g.entities),
		TotalRelationships: len(g.relationships),
		EntityTypes:        make(map[string]int, len(g.typeIndex)),
		RelationshipTypes:  make(map[string]int),
	}
	for entityType, ids := range g.typeIndex {
		stats.EntityTypes[entityType] = len(ids)
	}
	for _, rel := range g.relationships {
		stats.RelationshipTypes[rel.Type]++
	}
	return stats
}

// Export serializes the whole graph in insertion order.
func (g *Graph) Export() ExportData {
	g.mu.RLock()
	defer g.mu.RUnlock()

	data := ExportData{
		Entities:      make([]Entity, 0, len(g.entities)),
		Relationships: make([]Relationship, 0, len(g.relationships)),
	}
	for _, id := range g.entityOrder {
		if record, ok := g.entities[id]; ok {
			data.Entities = append(data.Entities, record.snapshot())
		}
	}
	for _, id := range g.relOrder {
		if rel, ok := g.relationships[id]; ok {
			data.Relationships = append(data.Relationships, *rel)
		}
	}
	return data
}

// Import atomically replaces the entire graph with the given snapshot.
// Every relationship is re-validated against the freshly inserted entities;
// relationships whose endpoints do not resolve are silently dropped, the
// same contract AddRelationship applies.
func (g *Graph) Import(data ExportData) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.reset()
	for _, entity := range data.Entities {
		g.addEntityLocked(entity.ID, entity.Type, entity.Properties)
	}
	for _, rel := range data.Relationships {
		g.addRelationshipLocked(rel.ID, rel.SourceID, rel.TargetID, rel.Type, rel.Properties)
	}
}
