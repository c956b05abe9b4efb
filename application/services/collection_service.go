package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"memgate/application/ports"
	"memgate/domain/swarm"
	"memgate/infrastructure/health"
	appErrors "memgate/pkg/errors"
)

// CollectionService exposes collection management over the vector
// store, recording activity for health and usage tracking.
type CollectionService struct {
	store   ports.VectorStore
	trails  *swarm.Tracker
	monitor *health.Monitor
	logger  *zap.Logger
}

// NewCollectionService creates a new collection service
func NewCollectionService(
	store ports.VectorStore,
	trails *swarm.Tracker,
	monitor *health.Monitor,
	logger *zap.Logger,
) *CollectionService {
	return &CollectionService{
		store:   store,
		trails:  trails,
		monitor: monitor,
		logger:  logger,
	}
}

// List returns all collections.
func (s *CollectionService) List(ctx context.Context) ([]ports.CollectionInfo, error) {
	infos, err := s.store.ListCollections(ctx)
	if err != nil {
		s.monitor.RecordError()
		return nil, fmt.Errorf("list collections: %w", err)
	}
	s.monitor.RecordQuery()
	return infos, nil
}

// Create makes a new collection.
func (s *CollectionService) Create(ctx context.Context, name, description string) error {
	if name == "" {
		return appErrors.NewValidationError("collection name is required")
	}

	if err := s.store.CreateCollection(ctx, name, description); err != nil {
		s.monitor.RecordError()
		return err
	}
	s.monitor.RecordInsert()
	s.trails.Track("create_collection", name, "")

	s.logger.Info("Collection created", zap.String("collection", name))
	return nil
}

// Get returns info for one collection.
func (s *CollectionService) Get(ctx context.Context, name string) (*ports.CollectionInfo, error) {
	info, err := s.store.GetCollection(ctx, name)
	if err != nil {
		if !appErrors.IsNotFound(err) {
			s.monitor.RecordError()
		}
		return nil, err
	}
	s.monitor.RecordQuery()
	s.trails.Track("get_collection", name, "")
	return info, nil
}

// Peek returns a small sample of documents from a collection.
func (s *CollectionService) Peek(ctx context.Context, name string, limit int) ([]ports.Document, error) {
	docs, err := s.store.PeekDocuments(ctx, name, limit)
	if err != nil {
		if !appErrors.IsNotFound(err) {
			s.monitor.RecordError()
		}
		return nil, err
	}
	s.monitor.RecordQuery()
	s.trails.Track("peek_collection", name, "")
	return docs, nil
}

// Fork copies a collection and its documents under a new name.
func (s *CollectionService) Fork(ctx context.Context, source, target string) (int64, error) {
	if source == "" || target == "" {
		return 0, appErrors.NewValidationError("source and target collection names are required")
	}
	if source == target {
		return 0, appErrors.NewValidationError("target must differ from the source collection")
	}

	copied, err := s.store.ForkCollection(ctx, source, target)
	if err != nil {
		if !appErrors.IsNotFound(err) {
			s.monitor.RecordError()
		}
		return copied, err
	}
	s.monitor.RecordInsert()
	s.trails.Track("fork_collection", source, "")

	s.logger.Info("Collection forked",
		zap.String("source", source),
		zap.String("target", target),
		zap.Int64("documents", copied))
	return copied, nil
}

// Count returns the number of documents in a collection.
func (s *CollectionService) Count(ctx context.Context, name string) (int64, error) {
	count, err := s.store.CountDocuments(ctx, name)
	if err != nil {
		s.monitor.RecordError()
		return 0, err
	}
	s.monitor.RecordQuery()
	return count, nil
}

// Delete removes a collection and all its documents.
func (s *CollectionService) Delete(ctx context.Context, name string) error {
	if err := s.store.DeleteCollection(ctx, name); err != nil {
		if !appErrors.IsNotFound(err) {
			s.monitor.RecordError()
		}
		return err
	}
	s.monitor.RecordInsert()

	s.logger.Info("Collection deleted", zap.String("collection", name))
	return nil
}
