package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memgate/application/ports"
	"memgate/domain/swarm"
	"memgate/infrastructure/health"
	appErrors "memgate/pkg/errors"
)

func newTestCollectionService(store ports.VectorStore) (*CollectionService, *health.Monitor, *swarm.Tracker) {
	monitor := health.NewMonitor()
	trails := swarm.NewTracker(swarm.DefaultEvaporationRate)
	svc := NewCollectionService(store, trails, monitor, zap.NewNop())
	return svc, monitor, trails
}

func TestCollectionService_PeekReturnsSample(t *testing.T) {
	store := &stubStore{peeked: []ports.Document{
		{ID: "d1", Content: "a"},
		{ID: "d2", Content: "b"},
		{ID: "d3", Content: "c"},
	}}
	svc, _, trails := newTestCollectionService(store)

	docs, err := svc.Peek(context.Background(), "papers", 2)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	hot := trails.GetHotTrails(0, 10)
	require.Len(t, hot, 1)
	assert.Equal(t, "peek_collection", hot[0].Metadata.OperationType)
}

func TestCollectionService_ForkCopiesDocuments(t *testing.T) {
	store := &stubStore{peeked: []ports.Document{
		{ID: "d1", Content: "a"},
		{ID: "d2", Content: "b"},
	}}
	svc, monitor, _ := newTestCollectionService(store)

	copied, err := svc.Fork(context.Background(), "papers", "papers_copy")
	require.NoError(t, err)
	assert.Equal(t, int64(2), copied)
	assert.Equal(t, 1, store.forkCalls)
	assert.Equal(t, int64(1), monitor.Report().Inserts)
}

func TestCollectionService_ForkValidation(t *testing.T) {
	svc, _, _ := newTestCollectionService(&stubStore{})

	_, err := svc.Fork(context.Background(), "papers", "papers")
	assert.True(t, appErrors.IsValidation(err))

	_, err = svc.Fork(context.Background(), "", "copy")
	assert.True(t, appErrors.IsValidation(err))
}
