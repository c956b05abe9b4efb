package ports

import (
	"context"
)

// Document is a single stored item in a collection.
type Document struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// QueryMatch is a document returned from a semantic query together
// with its match score.
type QueryMatch struct {
	Document
	Score float64 `json:"score"`
}

// CollectionInfo describes a collection and its size.
type CollectionInfo struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	DocumentCount int64  `json:"document_count"`
}

// VectorStore defines the interface for the backing vector database.
// This is a port in hexagonal architecture - the application doesn't
// know about the implementation.
type VectorStore interface {
	// ListCollections returns all known collections.
	ListCollections(ctx context.Context) ([]CollectionInfo, error)

	// CreateCollection creates a new collection.
	CreateCollection(ctx context.Context, name, description string) error

	// GetCollection returns info for a single collection.
	GetCollection(ctx context.Context, name string) (*CollectionInfo, error)

	// DeleteCollection removes a collection and all its documents.
	DeleteCollection(ctx context.Context, name string) error

	// CountDocuments returns the number of documents in a collection.
	CountDocuments(ctx context.Context, collection string) (int64, error)

	// AddDocuments inserts documents into a collection, returning the
	// IDs assigned to them.
	AddDocuments(ctx context.Context, collection string, docs []Document) ([]string, error)

	// QueryDocuments performs a semantic search over a collection.
	QueryDocuments(ctx context.Context, collection, query string, limit int) ([]QueryMatch, error)

	// PeekDocuments returns up to limit documents from a collection in
	// store order, without a query.
	PeekDocuments(ctx context.Context, collection string, limit int) ([]Document, error)

	// ForkCollection copies a collection and its documents under a new
	// name, returning the number of documents copied.
	ForkCollection(ctx context.Context, source, target string) (int64, error)

	// GetDocument retrieves a single document by ID.
	GetDocument(ctx context.Context, collection, id string) (*Document, error)

	// UpdateDocument replaces a document's content and metadata.
	UpdateDocument(ctx context.Context, collection string, doc Document) error

	// DeleteDocument removes a document by ID.
	DeleteDocument(ctx context.Context, collection, id string) error

	// Ping checks connectivity to the store.
	Ping(ctx context.Context) error
}
