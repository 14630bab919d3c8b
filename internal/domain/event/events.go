package event

import (
	"time"

	"github.com/vertextoedge/netfetch/internal/domain"
)

// Event names
const (
	NameTaskStarted    = "task.started"
	NameTaskProgressed = "task.progressed"
	NameTaskCompleted  = "task.completed"
	NameTaskFailed     = "task.failed"
	NameTaskCancelled  = "task.cancelled"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	// EventName returns the name of the event
	EventName() string
	// OccurredAt returns when the event occurred
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// TaskRef identifies the task an event belongs to
type TaskRef struct {
	TaskID string
	Kind   string
	URL    string
}

// TaskStarted is raised when a task is accepted by the runtime
type TaskStarted struct {
	BaseEvent
	TaskRef
	LocalPath string
	Append    bool
}

// EventName returns the event name
func (e TaskStarted) EventName() string {
	return NameTaskStarted
}

// NewTaskStarted creates a new TaskStarted event
func NewTaskStarted(ref TaskRef, localPath string, appendMode bool) TaskStarted {
	return TaskStarted{
		BaseEvent: BaseEvent{Timestamp: time.Now()},
		TaskRef:   ref,
		LocalPath: localPath,
		Append:    appendMode,
	}
}

// TaskProgressed is raised after every block a binary task writes
type TaskProgressed struct {
	BaseEvent
	TaskRef
	Progress    domain.Progress
	ResumedFrom int64
}

// EventName returns the event name
func (e TaskProgressed) EventName() string {
	return NameTaskProgressed
}

// NewTaskProgressed creates a new TaskProgressed event
func NewTaskProgressed(ref TaskRef, progress domain.Progress, resumedFrom int64) TaskProgressed {
	return TaskProgressed{
		BaseEvent:   BaseEvent{Timestamp: time.Now()},
		TaskRef:     ref,
		Progress:    progress,
		ResumedFrom: resumedFrom,
	}
}

// TaskCompleted is raised when a task succeeds
type TaskCompleted struct {
	BaseEvent
	TaskRef
	// Bytes is the number of body bytes received in this execution
	Bytes           int64
	Progress        domain.Progress
	ResumedFrom     int64
	ContentType     string
	ValidationToken string
	Duration        time.Duration
}

// EventName returns the event name
func (e TaskCompleted) EventName() string {
	return NameTaskCompleted
}

// NewTaskCompleted creates a new TaskCompleted event
func NewTaskCompleted(ref TaskRef, bytes int64, progress domain.Progress, resumedFrom int64, contentType, validationToken string, duration time.Duration) TaskCompleted {
	return TaskCompleted{
		BaseEvent:       BaseEvent{Timestamp: time.Now()},
		TaskRef:         ref,
		Bytes:           bytes,
		Progress:        progress,
		ResumedFrom:     resumedFrom,
		ContentType:     contentType,
		ValidationToken: validationToken,
		Duration:        duration,
	}
}

// TaskFailed is raised when a task fails
type TaskFailed struct {
	BaseEvent
	TaskRef
	Error      string
	ErrorKind  string
	StatusCode int
	Bytes      int64
	Progress   domain.Progress
	Duration   time.Duration
}

// EventName returns the event name
func (e TaskFailed) EventName() string {
	return NameTaskFailed
}

// NewTaskFailed creates a new TaskFailed event from the failure cause
func NewTaskFailed(ref TaskRef, err error, bytes int64, progress domain.Progress, duration time.Duration) TaskFailed {
	status, _ := domain.StatusCodeOf(err)
	return TaskFailed{
		BaseEvent:  BaseEvent{Timestamp: time.Now()},
		TaskRef:    ref,
		Error:      domain.MessageOf(err),
		ErrorKind:  domain.KindOf(err).String(),
		StatusCode: status,
		Bytes:      bytes,
		Progress:   progress,
		Duration:   duration,
	}
}

// TaskCancelled is raised when a task stops at a cancellation point
type TaskCancelled struct {
	BaseEvent
	TaskRef
	Bytes    int64
	Progress domain.Progress
	Duration time.Duration
}

// EventName returns the event name
func (e TaskCancelled) EventName() string {
	return NameTaskCancelled
}

// NewTaskCancelled creates a new TaskCancelled event
func NewTaskCancelled(ref TaskRef, bytes int64, progress domain.Progress, duration time.Duration) TaskCancelled {
	return TaskCancelled{
		BaseEvent: BaseEvent{Timestamp: time.Now()},
		TaskRef:   ref,
		Bytes:     bytes,
		Progress:  progress,
		Duration:  duration,
	}
}
