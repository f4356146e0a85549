package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInfo     EventType = "info"
	EventWarn     EventType = "warn"
	EventProgress EventType = "progress"
	EventSuccess  EventType = "success"
	EventError    EventType = "error"
)

// Event names the frontend subscribes to.
const (
	ResizeStarted  = "events:resize:started"
	ResizeProgress = "events:resize:progress"
	ResizeFile     = "events:resize:file"
	ResizeDone     = "events:resize:done"
)

// Event is the payload sent to the frontend during a batch run.
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	RunID     string            `json:"runId,omitempty"`
	Path      string            `json:"path,omitempty"`
	Done      int               `json:"done"`
	Total     int               `json:"total"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type contextKey string

const runContextKey contextKey = "karukuresize/events/run"

// WithRun returns a derived context tagged with the batch run ID so emitted
// events can be correlated.
func WithRun(ctx context.Context, runID string) context.Context {
	if strings.TrimSpace(runID) == "" {
		return ctx
	}
	return context.WithValue(ctx, runContextKey, runID)
}

// RunFromContext extracts the run ID associated with ctx.
func RunFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(runContextKey).(string); ok {
		return v
	}
	return ""
}

func New(eventType EventType, message string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewProgress creates a progress Event for done of total files.
func NewProgress(path string, done, total int) Event {
	e := New(EventProgress, path)
	e.Path, e.Done, e.Total = path, done, total
	return e
}

func NewInfo(message string) Event    { return New(EventInfo, message) }
func NewWarn(message string) Event    { return New(EventWarn, message) }
func NewError(message string) Event   { return New(EventError, message) }
func NewSuccess(message string) Event { return New(EventSuccess, message) }
