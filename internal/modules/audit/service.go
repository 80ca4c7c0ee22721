// README: Append-only safety audit log; in-memory ring buffer with optional durable sink.
package audit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"pelorus/internal/types"
)

// Sink is durable best-effort storage for audit entries. Insert failures
// are logged and discarded; the in-memory buffer stays the source of truth
// for the process lifetime.
type Sink interface {
	Insert(ctx context.Context, e Entry) error
	ByRequestID(ctx context.Context, requestID string) ([]Entry, error)
	Critical(ctx context.Context, from, to time.Time) ([]Entry, error)
	Overrides(ctx context.Context, from, to time.Time, userID string) ([]Entry, error)
}

const (
	// DefaultCapacity is the ring buffer size; the oldest entry is dropped
	// on overflow regardless of its importance.
	DefaultCapacity = 1000

	defaultRecentLimit   = 100
	defaultCriticalLimit = 50
	sinkWriteTimeout     = 5 * time.Second
)

// Log is the safety audit trail. Appends never block or fail the calling
// decision path: the durable write runs in its own goroutine on a detached
// context.
type Log struct {
	mu      sync.Mutex
	entries []Entry

	capacity int
	sink     Sink
	log      *slog.Logger
}

// NewLog returns a Log with the given capacity (DefaultCapacity when <= 0).
// sink may be nil for memory-only operation; log may be nil.
func NewLog(capacity int, sink Sink, log *slog.Logger) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity, sink: sink, log: log}
}

// RouteAnalyzed records a completed route analysis. Result is warning when
// any hazards were found, success otherwise.
func (l *Log) RouteAnalyzed(requestID, userID string, waypoints, hazardsFound, safetyScore int) {
	result := ResultSuccess
	if hazardsFound > 0 {
		result = ResultWarning
	}
	l.append(Entry{
		UserID: userID, RequestID: requestID, Action: ActionRouteAnalyzed,
		Details: map[string]any{
			"waypoints":     waypoints,
			"hazards_found": hazardsFound,
			"safety_score":  safetyScore,
		},
		Result: result,
	})
}

// WarningGenerated records an issued warning. Critical and urgent
// severities escalate the result to critical.
func (l *Log) WarningGenerated(requestID, warningID, warningType, severity, message string) {
	result := ResultWarning
	if severity == "critical" || severity == "urgent" {
		result = ResultCritical
	}
	l.append(Entry{
		RequestID: requestID, Action: ActionWarningGenerated,
		Details: map[string]any{
			"warning_id":   warningID,
			"warning_type": warningType,
			"severity":     severity,
			"message":      message,
		},
		Result: result,
	})
}

// HazardDetected records a detected hazard at a position.
func (l *Log) HazardDetected(requestID, hazardType, severity string, location types.Waypoint, description string) {
	result := ResultWarning
	if severity == "critical" {
		result = ResultCritical
	}
	l.append(Entry{
		RequestID: requestID, Action: ActionHazardDetected,
		Details: map[string]any{
			"hazard_type": hazardType,
			"severity":    severity,
			"lat":         location.Lat,
			"lon":         location.Lon,
			"description": description,
		},
		Result: result,
	})
}

// OverrideApplied records a user override of a safety warning. This is the
// single most important audit event in the system; its result is always
// critical.
func (l *Log) OverrideApplied(requestID, userID, overrideID, warningID, warningType, justification string) {
	l.append(Entry{
		UserID: userID, RequestID: requestID, Action: ActionOverrideApplied,
		Details: map[string]any{
			"override_id":   overrideID,
			"warning_id":    warningID,
			"warning_type":  warningType,
			"justification": justification,
		},
		Result: ResultCritical,
	})
}

// RecommendationMade records advice given to the user.
func (l *Log) RecommendationMade(requestID, recommendation, priority string) {
	result := ResultSuccess
	if priority == "critical" {
		result = ResultCritical
	}
	l.append(Entry{
		RequestID: requestID, Action: ActionRecommendationMade,
		Details: map[string]any{
			"recommendation": recommendation,
			"priority":       priority,
		},
		Result: result,
	})
}

// DataSourceUsed records which upstream data fed a decision, and whether
// the fetch succeeded.
func (l *Log) DataSourceUsed(requestID, source string, ok bool) {
	result := ResultSuccess
	if !ok {
		result = ResultWarning
	}
	l.append(Entry{
		RequestID: requestID, Action: ActionDataSourceUsed,
		Details: map[string]any{"source": source, "ok": ok},
		Result:  result,
	})
}

func (l *Log) append(e Entry) {
	e.ID = newID()
	e.Timestamp = time.Now().UTC()

	l.mu.Lock()
	if len(l.entries) >= l.capacity {
		// FIFO eviction; no compaction by importance.
		l.entries = l.entries[len(l.entries)-l.capacity+1:]
	}
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	l.emit(e)

	if l.sink != nil {
		go l.persist(e)
	}
}

// emit writes through to the structured logger at a level matching the
// action's severity.
func (l *Log) emit(e Entry) {
	if l.log == nil {
		return
	}
	attrs := []any{
		"audit_id", e.ID, "request_id", e.RequestID,
		"action", e.Action, "result", e.Result,
	}
	switch e.Action {
	case ActionWarningGenerated, ActionHazardDetected, ActionOverrideApplied:
		l.log.Warn("safety audit", attrs...)
	default:
		l.log.Info("safety audit", attrs...)
	}
}

// persist is the fire-and-forget durable write. It runs detached from the
// caller's request; a failure is logged at error level and discarded.
func (l *Log) persist(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkWriteTimeout)
	defer cancel()
	if err := l.sink.Insert(ctx, e); err != nil && l.log != nil {
		l.log.Error("audit sink write failed", "audit_id", e.ID, "error", err)
	}
}

// Recent returns the newest n entries (default 100), oldest first.
func (l *Log) Recent(n int) []Entry {
	if n <= 0 {
		n = defaultRecentLimit
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return tail(l.entries, n)
}

// ByRequestID returns every buffered entry for a request, oldest first.
func (l *Log) ByRequestID(requestID string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entry
	for _, e := range l.entries {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out
}

// Critical returns the newest n critical-result entries (default 50).
func (l *Log) Critical(n int) []Entry {
	if n <= 0 {
		n = defaultCriticalLimit
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var crit []Entry
	for _, e := range l.entries {
		if e.Result == ResultCritical {
			crit = append(crit, e)
		}
	}
	return tail(crit, n)
}

// Export returns a copy of the full buffer.
func (l *Log) Export() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear empties the buffer. Durable storage is untouched.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

func tail(entries []Entry, n int) []Entry {
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]Entry, n)
	copy(out, entries[len(entries)-n:])
	return out
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
