package services

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	"memgate/application/ports"
	"memgate/domain/memory"
	"memgate/domain/swarm"
	"memgate/infrastructure/health"
	appErrors "memgate/pkg/errors"
	"memgate/pkg/observability"
)

// queryCacheTTL is how long query results stay fresh. Writes to a
// collection do not invalidate cached queries; short TTLs bound the
// staleness window instead.
const queryCacheTTL = 5 * time.Minute

// DocumentService exposes document operations over the vector store
// with a cache-aside read path, usage trail tracking, and anti-pattern
// detection.
type DocumentService struct {
	store   ports.VectorStore
	cache   *memory.Cache
	trails  *swarm.Tracker
	smells  *swarm.SmellMonitor
	monitor *health.Monitor
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	store ports.VectorStore,
	cache *memory.Cache,
	trails *swarm.Tracker,
	smells *swarm.SmellMonitor,
	monitor *health.Monitor,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		store:   store,
		cache:   cache,
		trails:  trails,
		smells:  smells,
		monitor: monitor,
		metrics: metrics,
		logger:  logger,
	}
}

// Add inserts documents into a collection.
func (s *DocumentService) Add(ctx context.Context, collection, project string, docs []ports.Document) ([]string, error) {
	if collection == "" {
		return nil, appErrors.NewValidationError("collection name is required")
	}
	if len(docs) == 0 {
		return nil, appErrors.NewValidationError("at least one document is required")
	}
	for i, doc := range docs {
		if doc.Content == "" {
			return nil, appErrors.NewValidationError(fmt.Sprintf("document %d has no content", i))
		}
	}

	s.analyze("add", collection, swarm.OperationParams{DocumentCount: len(docs)})

	ids, err := s.store.AddDocuments(ctx, collection, docs)
	if err != nil {
		s.monitor.RecordError()
		s.metrics.StoreErrors.WithLabelValues("add").Inc()
		return ids, fmt.Errorf("add documents: %w", err)
	}
	s.monitor.RecordInsert()
	s.trails.Track("add_documents", collection, "")

	s.logger.Info("Documents added",
		zap.String("collection", collection),
		zap.Int("count", len(ids)))
	return ids, nil
}

// Query runs a semantic search, serving repeated queries from the
// tenant cache. A non-empty filter keeps only matches whose metadata
// carries every filter key with an equal value; the cache stores the
// unfiltered result so the same query under different filters still
// shares one cache entry.
func (s *DocumentService) Query(ctx context.Context, collection, project, query string, limit int, filter map[string]interface{}) ([]ports.QueryMatch, error) {
	if collection == "" {
		return nil, appErrors.NewValidationError("collection name is required")
	}
	if query == "" {
		return nil, appErrors.NewValidationError("query is required")
	}

	s.analyze("query", collection, swarm.OperationParams{ResultLimit: limit, Filter: filter})

	if cached, ok := s.cache.GetQueryResult(query, collection, project); ok {
		s.metrics.CacheHits.WithLabelValues(projectLabel(project)).Inc()
		if matches, ok := cached.([]ports.QueryMatch); ok {
			s.trails.Track("query", collection, query)
			s.monitor.RecordQuery()
			return filterMatches(matches, filter), nil
		}
	}
	s.metrics.CacheMisses.WithLabelValues(projectLabel(project)).Inc()

	matches, err := s.store.QueryDocuments(ctx, collection, query, limit)
	if err != nil {
		s.monitor.RecordError()
		s.metrics.StoreErrors.WithLabelValues("query").Inc()
		return nil, fmt.Errorf("query documents: %w", err)
	}
	s.monitor.RecordQuery()
	s.trails.Track("query", collection, query)
	s.cache.CacheQueryResult(query, matches, collection, project, queryCacheTTL)

	return filterMatches(matches, filter), nil
}

// Get retrieves a single document by ID.
func (s *DocumentService) Get(ctx context.Context, collection, id string) (*ports.Document, error) {
	doc, err := s.store.GetDocument(ctx, collection, id)
	if err != nil {
		if !appErrors.IsNotFound(err) {
			s.monitor.RecordError()
		}
		return nil, err
	}
	s.monitor.RecordQuery()
	s.trails.Track("get_document", collection, "")
	return doc, nil
}

// Update replaces a document's content and metadata.
func (s *DocumentService) Update(ctx context.Context, collection string, doc ports.Document) error {
	if doc.ID == "" {
		return appErrors.NewValidationError("document id is required")
	}

	if err := s.store.UpdateDocument(ctx, collection, doc); err != nil {
		if !appErrors.IsNotFound(err) {
			s.monitor.RecordError()
			s.metrics.StoreErrors.WithLabelValues("update").Inc()
		}
		return err
	}
	s.monitor.RecordInsert()
	s.trails.Track("update_document", collection, "")

	s.logger.Info("Document updated",
		zap.String("collection", collection),
		zap.String("id", doc.ID))
	return nil
}

// Delete removes a document by ID.
func (s *DocumentService) Delete(ctx context.Context, collection, id string) error {
	if id == "" {
		return appErrors.NewValidationError("document id is required")
	}

	if err := s.store.DeleteDocument(ctx, collection, id); err != nil {
		if !appErrors.IsNotFound(err) {
			s.monitor.RecordError()
		}
		return err
	}
	s.monitor.RecordInsert()

	s.logger.Info("Document deleted",
		zap.String("collection", collection),
		zap.String("id", id))
	return nil
}

// analyze records any anti-patterns the operation exhibits.
func (s *DocumentService) analyze(operation, collection string, params swarm.OperationParams) {
	for _, smell := range s.smells.AnalyzeOperation(operation, collection, params) {
		s.logger.Warn("operation smell detected",
			zap.String("smell", smell.Type),
			zap.String("collection", collection),
			zap.String("description", smell.Description))
	}
}

// filterMatches keeps matches whose metadata carries every filter key
// with an equal value. Metadata and filters both arrive through JSON,
// so DeepEqual compares like with like.
func filterMatches(matches []ports.QueryMatch, filter map[string]interface{}) []ports.QueryMatch {
	if len(filter) == 0 {
		return matches
	}
	kept := make([]ports.QueryMatch, 0, len(matches))
	for _, match := range matches {
		if metadataMatches(match.Metadata, filter) {
			kept = append(kept, match)
		}
	}
	return kept
}

func metadataMatches(metadata, filter map[string]interface{}) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// projectLabel keeps metric cardinality sane when no project is set.
func projectLabel(project string) string {
	if project == "" {
		return "global"
	}
	return project
}
