package swarm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmellMonitor_ExcessiveResultLimit(t *testing.T) {
	m := NewSmellMonitor()

	found := m.AnalyzeOperation("query", "papers", OperationParams{ResultLimit: 500})
	require.Len(t, found, 1)
	assert.Equal(t, "excessive_queries", found[0].Type)
	assert.Equal(t, SeverityWarning, found[0].Severity)
	assert.Equal(t, "papers", found[0].Collection)

	// At the threshold is fine, and adds never trip this check.
	assert.Empty(t, m.AnalyzeOperation("query", "papers", OperationParams{ResultLimit: 100}))
	assert.Empty(t, m.AnalyzeOperation("add", "papers", OperationParams{ResultLimit: 500}))
}

func TestSmellMonitor_LargeBatch(t *testing.T) {
	m := NewSmellMonitor()

	found := m.AnalyzeOperation("add", "papers", OperationParams{DocumentCount: 1500})
	require.Len(t, found, 1)
	assert.Equal(t, "large_batch_size", found[0].Type)

	assert.Empty(t, m.AnalyzeOperation("add", "papers", OperationParams{DocumentCount: 1000}))
}

func TestSmellMonitor_ComplexFilter(t *testing.T) {
	m := NewSmellMonitor()

	filter := make(map[string]interface{})
	for i := 0; i < 40; i++ {
		filter[fmt.Sprintf("field_%02d", i)] = "some value"
	}

	found := m.AnalyzeOperation("query", "papers", OperationParams{Filter: filter})
	require.Len(t, found, 1)
	assert.Equal(t, "inefficient_filtering", found[0].Type)
	assert.Equal(t, SeverityInfo, found[0].Severity)

	assert.Empty(t, m.AnalyzeOperation("query", "papers", OperationParams{
		Filter: map[string]interface{}{"author": "knuth"},
	}))
}

func TestSmellMonitor_ReportAggregates(t *testing.T) {
	m := NewSmellMonitor()

	empty := m.Report()
	assert.Equal(t, 0, empty.TotalSmells)
	assert.Empty(t, empty.ByType)
	assert.Empty(t, empty.Recent)

	m.AnalyzeOperation("query", "papers", OperationParams{ResultLimit: 500})
	m.AnalyzeOperation("query", "notes", OperationParams{ResultLimit: 200})
	m.AnalyzeOperation("add", "papers", OperationParams{DocumentCount: 2000})

	report := m.Report()
	assert.Equal(t, 3, report.TotalSmells)
	assert.Equal(t, 2, report.ByType["excessive_queries"])
	assert.Equal(t, 1, report.ByType["large_batch_size"])
	assert.Equal(t, 3, report.BySeverity[SeverityWarning])
	require.Len(t, report.Recent, 3)
	assert.Equal(t, "large_batch_size", report.Recent[2].Type)
}

func TestSmellMonitor_LogIsBounded(t *testing.T) {
	m := NewSmellMonitor()

	for i := 0; i < 1005; i++ {
		m.AnalyzeOperation("query", "papers", OperationParams{ResultLimit: 500})
	}

	report := m.Report()
	assert.Equal(t, 1000, report.TotalSmells)
	assert.Len(t, report.Recent, 10)
}
