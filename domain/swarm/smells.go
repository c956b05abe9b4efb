package swarm

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const (
	// smellLogSize bounds the retained smell log.
	smellLogSize = 1000
	// recentSmells is how many entries a report echoes back.
	recentSmells = 10

	// excessiveResultLimit flags queries asking for more results than this.
	excessiveResultLimit = 100
	// largeBatchSize flags single-batch inserts above this document count.
	largeBatchSize = 1000
	// complexFilterLength flags metadata filters whose encoded form exceeds
	// this many bytes.
	complexFilterLength = 500
)

// Severity levels attached to detected smells.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Smell is one detected anti-pattern in an operation.
type Smell struct {
	Type        string    `json:"smell_type"`
	Operation   string    `json:"operation"`
	Collection  string    `json:"collection"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Suggestion  string    `json:"suggestion"`
	DetectedAt  time.Time `json:"detected_at"`
}

// OperationParams carries the parameters of an operation relevant to
// smell detection. Zero values mean "not applicable".
type OperationParams struct {
	ResultLimit   int
	DocumentCount int
	Filter        map[string]interface{}
}

// SmellReport aggregates the retained smell log.
type SmellReport struct {
	TotalSmells int            `json:"total_smells"`
	ByType      map[string]int `json:"by_type"`
	BySeverity  map[string]int `json:"by_severity"`
	Recent      []Smell        `json:"recent"`
}

// SmellMonitor watches operations for anti-patterns: oversized result
// requests, oversized insert batches, and overly complex metadata
// filters. Detections accumulate in a bounded log that Report
// summarizes.
type SmellMonitor struct {
	now func() time.Time

	mu     sync.Mutex
	smells []Smell
}

// NewSmellMonitor creates a monitor with an empty log.
func NewSmellMonitor() *SmellMonitor {
	return &SmellMonitor{now: time.Now}
}

// AnalyzeOperation runs every check against one operation and records
// whatever it finds. The detected smells are also returned so callers
// can log them.
func (m *SmellMonitor) AnalyzeOperation(operationType, collection string, params OperationParams) []Smell {
	now := m.now()

	var found []Smell
	if smell, ok := checkExcessiveResults(operationType, params); ok {
		found = append(found, smell)
	}
	if smell, ok := checkLargeBatch(operationType, params); ok {
		found = append(found, smell)
	}
	if smell, ok := checkComplexFilter(params); ok {
		found = append(found, smell)
	}
	if len(found) == 0 {
		return nil
	}

	for i := range found {
		found[i].Operation = operationType
		found[i].Collection = collection
		found[i].DetectedAt = now
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.smells = append(m.smells, found...)
	if len(m.smells) > smellLogSize {
		m.smells = m.smells[len(m.smells)-smellLogSize:]
	}
	return found
}

// Report summarizes the retained log: counts by smell type and
// severity plus the most recent entries.
func (m *SmellMonitor) Report() SmellReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	report := SmellReport{
		TotalSmells: len(m.smells),
		ByType:      make(map[string]int),
		BySeverity:  make(map[string]int),
		Recent:      []Smell{},
	}
	for _, smell := range m.smells {
		report.ByType[smell.Type]++
		report.BySeverity[smell.Severity]++
	}

	tail := m.smells
	if len(tail) > recentSmells {
		tail = tail[len(tail)-recentSmells:]
	}
	report.Recent = append(report.Recent, tail...)
	return report
}

func checkExcessiveResults(operationType string, params OperationParams) (Smell, bool) {
	if operationType != "query" || params.ResultLimit <= excessiveResultLimit {
		return Smell{}, false
	}
	return Smell{
		Type:        "excessive_queries",
		Description: fmt.Sprintf("Query requesting %d results, which may be excessive", params.ResultLimit),
		Severity:    SeverityWarning,
		Suggestion:  "Consider paginating results or reducing the limit",
	}, true
}

func checkLargeBatch(operationType string, params OperationParams) (Smell, bool) {
	if operationType != "add" || params.DocumentCount <= largeBatchSize {
		return Smell{}, false
	}
	return Smell{
		Type:        "large_batch_size",
		Description: fmt.Sprintf("Adding %d documents in single batch", params.DocumentCount),
		Severity:    SeverityWarning,
		Suggestion:  "Consider batching into smaller groups (e.g. 500 documents)",
	}, true
}

func checkComplexFilter(params OperationParams) (Smell, bool) {
	if len(params.Filter) == 0 {
		return Smell{}, false
	}
	encoded, err := json.Marshal(params.Filter)
	if err != nil || len(encoded) <= complexFilterLength {
		return Smell{}, false
	}
	return Smell{
		Type:        "inefficient_filtering",
		Description: "Complex metadata filter detected",
		Severity:    SeverityInfo,
		Suggestion:  "Consider simplifying filters or using indexed fields",
	}, true
}
