// Package keycodec derives stable content-hash identities from structured
// values. Both the memory cache and the swarm tracker key their stores on
// these digests, so the serialization must be canonical: two semantically
// equal inputs always produce the same key regardless of map ordering.
package keycodec

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Sum returns the SHA-256 hex digest of the canonical JSON form of v.
// encoding/json sorts map keys, so map-like inputs hash identically no
// matter the order their keys were inserted in.
func Sum(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("keycodec: value is not serializable: %w", err)
	}
	digest := sha256.Sum256(raw)
	return hex.EncodeToString(digest[:]), nil
}

// QueryKey derives the cache key for a query result from the
// (query, collection, project) triple. The empty project string denotes the
// global scope; there is no separate "absent" tenant.
func QueryKey(query, collection, project string) string {
	key, _ := Sum(map[string]string{
		"query":      query,
		"collection": collection,
		"project":    project,
	})
	return key
}

// TrailID derives the identity of a pheromone trail from the
// (operation, collection, query) triple. Trail ids are truncated to 16 hex
// characters; collisions at that length are acceptable for a best-effort
// ranking structure.
func TrailID(operation, collection, query string) string {
	digest := sha256.Sum256([]byte(operation + ":" + collection + ":" + query))
	return hex.EncodeToString(digest[:])[:16]
}
