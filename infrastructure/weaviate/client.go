// Package weaviate adapts the Weaviate vector database to the
// application's VectorStore port. All calls go through a circuit
// breaker so a struggling store fails fast instead of piling up
// blocked requests.
package weaviate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	clientschema "github.com/weaviate/weaviate-go-client/v5/weaviate/schema"
	"github.com/weaviate/weaviate/entities/models"
	"go.uber.org/zap"

	"memgate/application/ports"
	appErrors "memgate/pkg/errors"
)

// Store implements ports.VectorStore on top of Weaviate.
type Store struct {
	client  *weaviate.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// Config holds connection settings for the store.
type Config struct {
	Host   string
	Scheme string
}

// NewStore creates a Store connected to the given Weaviate instance.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("weaviate host is required")
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   cfg.Host,
		Scheme: cfg.Scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weaviate",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Store{
		client:  client,
		breaker: breaker,
		logger:  logger,
	}, nil
}

// className maps a collection name to a Weaviate class name. Weaviate
// requires class names to start with an uppercase letter.
func className(collection string) string {
	if collection == "" {
		return collection
	}
	return strings.ToUpper(collection[:1]) + collection[1:]
}

func (s *Store) execute(op func() (interface{}, error)) (interface{}, error) {
	result, err := s.breaker.Execute(op)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, appErrors.NewUnavailableError("vector store temporarily unavailable").WithCause(err)
	}
	return result, err
}

// Ping checks connectivity to the store.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.execute(func() (interface{}, error) {
		ready, err := s.client.Misc().ReadyChecker().Do(ctx)
		if err != nil {
			return nil, err
		}
		if !ready {
			return nil, fmt.Errorf("weaviate not ready")
		}
		return nil, nil
	})
	return err
}

// ListCollections returns all known collections.
func (s *Store) ListCollections(ctx context.Context) ([]ports.CollectionInfo, error) {
	result, err := s.execute(func() (interface{}, error) {
		return s.client.Schema().Getter().Do(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	schema := result.(*clientschema.Dump)
	infos := make([]ports.CollectionInfo, 0, len(schema.Classes))
	for _, class := range schema.Classes {
		count, err := s.CountDocuments(ctx, class.Class)
		if err != nil {
			s.logger.Warn("failed to count documents",
				zap.String("collection", class.Class),
				zap.Error(err))
			count = -1
		}
		infos = append(infos, ports.CollectionInfo{
			Name:          class.Class,
			Description:   class.Description,
			DocumentCount: count,
		})
	}
	return infos, nil
}

// CreateCollection creates a new collection.
func (s *Store) CreateCollection(ctx context.Context, name, description string) error {
	class := &models.Class{
		Class:       className(name),
		Description: description,
		Vectorizer:  "text2vec-transformers",
		Properties: []*models.Property{
			{
				Name:        "content",
				DataType:    []string{"text"},
				Description: "The document body.",
			},
			{
				Name:         "meta",
				DataType:     []string{"text"},
				Description:  "Document metadata encoded as JSON.",
				Tokenization: "field",
			},
		},
	}

	_, err := s.execute(func() (interface{}, error) {
		return nil, s.client.Schema().ClassCreator().WithClass(class).Do(ctx)
	})
	if err != nil {
		if isAlreadyExists(err) {
			return appErrors.NewConflictError(fmt.Sprintf("collection %s already exists", name))
		}
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	return nil
}

// GetCollection returns info for a single collection.
func (s *Store) GetCollection(ctx context.Context, name string) (*ports.CollectionInfo, error) {
	result, err := s.execute(func() (interface{}, error) {
		return s.client.Schema().ClassGetter().WithClassName(className(name)).Do(ctx)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.NewNotFoundError(fmt.Sprintf("collection %s not found", name))
		}
		return nil, fmt.Errorf("get collection %s: %w", name, err)
	}

	class := result.(*models.Class)
	count, err := s.CountDocuments(ctx, name)
	if err != nil {
		return nil, err
	}
	return &ports.CollectionInfo{
		Name:          class.Class,
		Description:   class.Description,
		DocumentCount: count,
	}, nil
}

// DeleteCollection removes a collection and all its documents.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.client.Schema().ClassDeleter().WithClassName(className(name)).Do(ctx)
	})
	if err != nil {
		if isNotFound(err) {
			return appErrors.NewNotFoundError(fmt.Sprintf("collection %s not found", name))
		}
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	return nil
}

// CountDocuments returns the number of documents in a collection.
func (s *Store) CountDocuments(ctx context.Context, collection string) (int64, error) {
	class := className(collection)
	result, err := s.execute(func() (interface{}, error) {
		return s.client.GraphQL().Aggregate().
			WithClassName(class).
			WithFields(graphql.Field{
				Name:   "meta",
				Fields: []graphql.Field{{Name: "count"}},
			}).
			Do(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("count documents in %s: %w", collection, err)
	}

	resp := result.(*models.GraphQLResponse)
	if len(resp.Errors) > 0 {
		return 0, fmt.Errorf("count documents in %s: %s", collection, resp.Errors[0].Message)
	}

	aggMap, ok := resp.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("count documents in %s: unexpected response shape", collection)
	}
	groups, ok := aggMap[class].([]interface{})
	if !ok || len(groups) == 0 {
		return 0, nil
	}
	group, ok := groups[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := group["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)
	return int64(count), nil
}

// AddDocuments inserts documents into a collection, returning the IDs
// assigned to them.
func (s *Store) AddDocuments(ctx context.Context, collection string, docs []ports.Document) ([]string, error) {
	class := className(collection)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.New().String()
		}

		props := map[string]interface{}{
			"content": doc.Content,
		}
		if len(doc.Metadata) > 0 {
			encoded, err := json.Marshal(doc.Metadata)
			if err != nil {
				return ids, fmt.Errorf("encode metadata: %w", err)
			}
			props["meta"] = string(encoded)
		}

		_, err := s.execute(func() (interface{}, error) {
			return s.client.Data().Creator().
				WithClassName(class).
				WithID(id).
				WithProperties(props).
				Do(ctx)
		})
		if err != nil {
			return ids, fmt.Errorf("add document to %s: %w", collection, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// QueryDocuments performs a semantic search over a collection.
func (s *Store) QueryDocuments(ctx context.Context, collection, query string, limit int) ([]ports.QueryMatch, error) {
	if limit <= 0 {
		limit = 10
	}
	class := className(collection)

	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "meta"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "id"},
			{Name: "certainty"},
		}},
	}

	result, err := s.execute(func() (interface{}, error) {
		return s.client.GraphQL().Get().
			WithClassName(class).
			WithFields(fields...).
			WithNearText(nearText).
			WithLimit(limit).
			Do(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}

	resp := result.(*models.GraphQLResponse)
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("query %s: %s", collection, resp.Errors[0].Message)
	}

	getMap, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("query %s: unexpected response shape", collection)
	}
	items, ok := getMap[class].([]interface{})
	if !ok {
		return []ports.QueryMatch{}, nil
	}

	matches := make([]ports.QueryMatch, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		match := ports.QueryMatch{}
		match.Content, _ = obj["content"].(string)
		if raw, ok := obj["meta"].(string); ok && raw != "" {
			_ = json.Unmarshal([]byte(raw), &match.Metadata)
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			match.ID, _ = additional["id"].(string)
			match.Score, _ = additional["certainty"].(float64)
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// PeekDocuments returns up to limit documents from a collection in
// store order.
func (s *Store) PeekDocuments(ctx context.Context, collection string, limit int) ([]ports.Document, error) {
	if limit <= 0 {
		limit = 5
	}
	docs, err := s.listPage(ctx, collection, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("peek %s: %w", collection, err)
	}
	return docs, nil
}

// forkPageSize is how many documents a fork copies per round trip.
const forkPageSize = 100

// ForkCollection copies a collection's schema and documents under a new
// name. Weaviate has no server-side fork, so the documents are replayed
// through the client page by page; a fork of a collection receiving
// concurrent writes is not a point-in-time snapshot.
func (s *Store) ForkCollection(ctx context.Context, source, target string) (int64, error) {
	result, err := s.execute(func() (interface{}, error) {
		return s.client.Schema().ClassGetter().WithClassName(className(source)).Do(ctx)
	})
	if err != nil {
		if isNotFound(err) {
			return 0, appErrors.NewNotFoundError(fmt.Sprintf("collection %s not found", source))
		}
		return 0, fmt.Errorf("fork %s: %w", source, err)
	}
	sourceClass := result.(*models.Class)

	if err := s.CreateCollection(ctx, target, sourceClass.Description); err != nil {
		return 0, err
	}

	var copied int64
	for offset := 0; ; offset += forkPageSize {
		page, err := s.listPage(ctx, source, forkPageSize, offset)
		if err != nil {
			return copied, fmt.Errorf("fork %s: %w", source, err)
		}
		if len(page) == 0 {
			break
		}
		if _, err := s.AddDocuments(ctx, target, page); err != nil {
			return copied, fmt.Errorf("fork %s into %s: %w", source, target, err)
		}
		copied += int64(len(page))
		if len(page) < forkPageSize {
			break
		}
	}
	return copied, nil
}

// listPage fetches one page of documents from a collection in store
// order.
func (s *Store) listPage(ctx context.Context, collection string, limit, offset int) ([]ports.Document, error) {
	class := className(collection)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "meta"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}}},
	}

	result, err := s.execute(func() (interface{}, error) {
		return s.client.GraphQL().Get().
			WithClassName(class).
			WithFields(fields...).
			WithLimit(limit).
			WithOffset(offset).
			Do(ctx)
	})
	if err != nil {
		return nil, err
	}

	resp := result.(*models.GraphQLResponse)
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%s", resp.Errors[0].Message)
	}

	getMap, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected response shape")
	}
	items, ok := getMap[class].([]interface{})
	if !ok {
		return []ports.Document{}, nil
	}

	docs := make([]ports.Document, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		doc := ports.Document{}
		doc.Content, _ = obj["content"].(string)
		if raw, ok := obj["meta"].(string); ok && raw != "" {
			_ = json.Unmarshal([]byte(raw), &doc.Metadata)
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			doc.ID, _ = additional["id"].(string)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// GetDocument retrieves a single document by ID.
func (s *Store) GetDocument(ctx context.Context, collection, id string) (*ports.Document, error) {
	result, err := s.execute(func() (interface{}, error) {
		return s.client.Data().ObjectsGetter().
			WithClassName(className(collection)).
			WithID(id).
			Do(ctx)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.NewNotFoundError(fmt.Sprintf("document %s not found in %s", id, collection))
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}

	objects := result.([]*models.Object)
	if len(objects) == 0 {
		return nil, appErrors.NewNotFoundError(fmt.Sprintf("document %s not found in %s", id, collection))
	}

	doc := &ports.Document{ID: id}
	if props, ok := objects[0].Properties.(map[string]interface{}); ok {
		doc.Content, _ = props["content"].(string)
		if raw, ok := props["meta"].(string); ok && raw != "" {
			_ = json.Unmarshal([]byte(raw), &doc.Metadata)
		}
	}
	return doc, nil
}

// UpdateDocument replaces a document's content and metadata.
func (s *Store) UpdateDocument(ctx context.Context, collection string, doc ports.Document) error {
	props := map[string]interface{}{
		"content": doc.Content,
	}
	if len(doc.Metadata) > 0 {
		encoded, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		props["meta"] = string(encoded)
	}

	_, err := s.execute(func() (interface{}, error) {
		return nil, s.client.Data().Updater().
			WithClassName(className(collection)).
			WithID(doc.ID).
			WithProperties(props).
			WithMerge().
			Do(ctx)
	})
	if err != nil {
		if isNotFound(err) {
			return appErrors.NewNotFoundError(fmt.Sprintf("document %s not found in %s", doc.ID, collection))
		}
		return fmt.Errorf("update document %s: %w", doc.ID, err)
	}
	return nil
}

// DeleteDocument removes a document by ID.
func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.client.Data().Deleter().
			WithClassName(className(collection)).
			WithID(id).
			Do(ctx)
	})
	if err != nil {
		if isNotFound(err) {
			return appErrors.NewNotFoundError(fmt.Sprintf("document %s not found in %s", id, collection))
		}
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "404") ||
		strings.Contains(msg, "does not exist")
}

func isAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "already used")
}
