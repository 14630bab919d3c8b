package repository

import (
	"time"

	"github.com/vertextoedge/netfetch/internal/domain"
)

// TaskRepository defines the interface for task history operations.
// History is informational only: resume offsets always come from the
// length of the local file.
type TaskRepository interface {
	// CreateTask records a newly started task
	// Returns domain.ErrAlreadyExists if the ID is taken
	CreateTask(task *domain.TaskRecord) error

	// UpdateProgress stores the latest progress of a running task
	UpdateProgress(taskID string, progress domain.Progress) error

	// FinishTask stores the terminal status, error and response metadata
	FinishTask(task *domain.TaskRecord) error

	// GetTask retrieves a task by ID
	// Returns domain.ErrTaskNotFound if it does not exist
	GetTask(id string) (*domain.TaskRecord, error)

	// ListTasks returns tasks newest first
	ListTasks(filter domain.TaskFilter) ([]*domain.TaskRecord, error)

	// GetStats returns counts per status
	GetStats() (*domain.HistoryStats, error)

	// CleanupFinishedTasks removes finished tasks older than the specified duration
	CleanupFinishedTasks(olderThan time.Duration) (int, error)

	// MarkInterruptedTasks fails tasks left running by a previous process
	MarkInterruptedTasks() (int, error)
}
