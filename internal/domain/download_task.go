package domain

import "time"

// Task kinds
const (
	TaskKindText   = "text"
	TaskKindJSON   = "json"
	TaskKindBinary = "binary"
)

// Task status constants
const (
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
	TaskStatusCancelled = "cancelled"
)

// ValidTaskStatus returns true for a known status
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

// TaskRecord is the history entry of one task execution
type TaskRecord struct {
	ID        string
	Kind      string
	URL       string
	LocalPath string
	Append    bool

	// State
	Status string

	// Progress
	BytesDownloaded int64
	TotalBytes      int64
	ResumedFrom     int64

	// Response
	ContentType     string
	ValidationToken string
	LastError       string

	// Timestamps
	StartedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt *time.Time
}

// NewTaskRecord creates a running record
func NewTaskRecord(id, kind, url string) *TaskRecord {
	now := time.Now()
	return &TaskRecord{
		ID:         id,
		Kind:       kind,
		URL:        url,
		Status:     TaskStatusRunning,
		TotalBytes: UnknownLength,
		StartedAt:  now,
		UpdatedAt:  now,
	}
}

// IsFinished returns true once a terminal status was recorded
func (t *TaskRecord) IsFinished() bool {
	return t.Status != TaskStatusRunning
}

// UpdateProgress records the latest progress notification
func (t *TaskRecord) UpdateProgress(p Progress) {
	t.BytesDownloaded = p.Downloaded
	t.TotalBytes = p.Total
	t.UpdatedAt = time.Now()
}

// MarkCompleted marks the task as completed
func (t *TaskRecord) MarkCompleted() {
	t.finish(TaskStatusCompleted)
	t.LastError = ""
}

// MarkFailed marks the task as failed with an error message
func (t *TaskRecord) MarkFailed(msg string) {
	if msg == "" {
		msg = MsgUnspecified
	}
	t.finish(TaskStatusFailed)
	t.LastError = msg
}

// MarkCancelled marks the task as cancelled by its caller
func (t *TaskRecord) MarkCancelled() {
	t.finish(TaskStatusCancelled)
}

func (t *TaskRecord) finish(status string) {
	now := time.Now()
	t.Status = status
	t.UpdatedAt = now
	t.FinishedAt = &now
}

// Duration returns how long the task ran, or has been running
func (t *TaskRecord) Duration() time.Duration {
	if t.FinishedAt != nil {
		return t.FinishedAt.Sub(t.StartedAt)
	}
	return time.Since(t.StartedAt)
}

// HistoryStats summarizes the task history
type HistoryStats struct {
	RunningCount   int
	CompletedCount int
	FailedCount    int
	CancelledCount int
	TotalBytes     int64
}

// TaskFilter selects history rows
type TaskFilter struct {
	Status string
	Kind   string
	Limit  int
}
