package graph

// Entity is a snapshot of a node in the relationship graph. Relationships
// lists the ids of every relationship incident to the entity, in the order
// they were attached.
type Entity struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Properties    map[string]interface{} `json:"properties,omitempty"`
	Relationships []string               `json:"relationships"`
}

// Relationship is a directed, typed edge between two entities. Relationships
// are immutable once created.
type Relationship struct {
	ID         string                 `json:"id"`
	SourceID   string                 `json:"source"`
	TargetID   string                 `json:"target"`
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Connection pairs a neighboring entity with the relationship that reaches
// it.
type Connection struct {
	Entity       Entity       `json:"entity"`
	Relationship Relationship `json:"relationship"`
}

// PathStep is one hop of a path: the entity the search stood on and the
// relationship it left through. The final step carries an empty
// RelationshipID.
type PathStep struct {
	EntityID       string `json:"entity_id"`
	RelationshipID string `json:"relationship_id"`
}

// entityRecord is the mutable, internally owned form of an entity. relIDs
// preserves attachment order; relSeen deduplicates.
type entityRecord struct {
	id      string
	etype   string
	props   map[string]interface{}
	relIDs  []string
	relSeen map[string]struct{}
}

func newEntityRecord(id, entityType string, properties map[string]interface{}) *entityRecord {
	return &entityRecord{
		id:      id,
		etype:   entityType,
		props:   copyProperties(properties),
		relSeen: make(map[string]struct{}),
	}
}

func (r *entityRecord) attach(relationshipID string) {
	if _, ok := r.relSeen[relationshipID]; ok {
		return
	}
	r.relSeen[relationshipID] = struct{}{}
	r.relIDs = append(r.relIDs, relationshipID)
}

// snapshot returns a caller-owned copy.
func (r *entityRecord) snapshot() Entity {
	rels := make([]string, len(r.relIDs))
	copy(rels, r.relIDs)
	return Entity{
		ID:            r.id,
		Type:          r.etype,
		Properties:    copyProperties(r.props),
		Relationships: rels,
	}
}

// copyProperties shallow-copies a property map. Values follow JSON
// semantics (scalars, slices, nested maps); nested containers are shared,
// which is acceptable because the graph never mutates property values after
// insertion.
func copyProperties(properties map[string]interface{}) map[string]interface{} {
	if properties == nil {
		return nil
	}
	out := make(map[string]interface{}, len(properties))
	for k, v := range properties {
		out[k] = v
	}
	return out
}
