package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vertextoedge/netfetch/internal/domain"
)

const taskColumns = `id, kind, url, local_path, append, status,
	bytes_downloaded, total_bytes, resumed_from,
	content_type, validation_token, last_error,
	started_at, updated_at, finished_at`

// CreateTask records a newly started task
func (s *Store) CreateTask(task *domain.TaskRecord) error {
	if task.ID == "" || !domain.ValidTaskStatus(task.Status) {
		return domain.ErrInvalidTaskRow
	}

	query := `
		INSERT INTO tasks (
			id, kind, url, local_path, append, status,
			bytes_downloaded, total_bytes, resumed_from,
			started_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		task.ID, task.Kind, task.URL, nullString(task.LocalPath), task.Append, task.Status,
		task.BytesDownloaded, task.TotalBytes, task.ResumedFrom,
		task.StartedAt.UTC(), task.UpdatedAt.UTC())
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// UpdateProgress stores the latest progress of a running task
func (s *Store) UpdateProgress(taskID string, progress domain.Progress) error {
	query := `
		UPDATE tasks
		SET bytes_downloaded = ?, total_bytes = ?, updated_at = ?
		WHERE id = ? AND status = 'running'
	`

	_, err := s.db.Exec(query, progress.Downloaded, progress.Total, time.Now().UTC(), taskID)
	return err
}

// FinishTask stores the terminal status, error and response metadata
func (s *Store) FinishTask(task *domain.TaskRecord) error {
	query := `
		UPDATE tasks
		SET status = ?, bytes_downloaded = ?, total_bytes = ?, resumed_from = ?,
			content_type = ?, validation_token = ?, last_error = ?,
			updated_at = ?, finished_at = ?
		WHERE id = ?
	`

	var finishedAt sql.NullTime
	if task.FinishedAt != nil {
		finishedAt = sql.NullTime{Time: task.FinishedAt.UTC(), Valid: true}
	}

	result, err := s.db.Exec(query,
		task.Status, task.BytesDownloaded, task.TotalBytes, task.ResumedFrom,
		nullString(task.ContentType), nullString(task.ValidationToken), nullString(task.LastError),
		task.UpdatedAt.UTC(), finishedAt, task.ID)
	if err != nil {
		return err
	}

	count, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// GetTask retrieves a task by ID
func (s *Store) GetTask(id string) (*domain.TaskRecord, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	task, err := scanTask(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	return task, err
}

// ListTasks returns tasks newest first
func (s *Store) ListTasks(filter domain.TaskFilter) ([]*domain.TaskRecord, error) {
	var where []string
	var args []any

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, filter.Kind)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*domain.TaskRecord
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// GetStats returns counts per status
func (s *Store) GetStats() (*domain.HistoryStats, error) {
	stats := &domain.HistoryStats{}

	// Get counts by status
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(bytes_downloaded - resumed_from), 0)
		FROM tasks
		GROUP BY status
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		var bytes int64

		if err := rows.Scan(&status, &count, &bytes); err != nil {
			return nil, err
		}

		switch status {
		case domain.TaskStatusRunning:
			stats.RunningCount = count
		case domain.TaskStatusCompleted:
			stats.CompletedCount = count
		case domain.TaskStatusFailed:
			stats.FailedCount = count
		case domain.TaskStatusCancelled:
			stats.CancelledCount = count
		}
		if bytes > 0 {
			stats.TotalBytes += bytes
		}
	}

	return stats, rows.Err()
}

// CleanupFinishedTasks removes finished tasks older than the specified duration
func (s *Store) CleanupFinishedTasks(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan).UTC()

	result, err := s.db.Exec(
		"DELETE FROM tasks WHERE status != 'running' AND finished_at < ?",
		cutoff)
	if err != nil {
		return 0, err
	}

	count, err := result.RowsAffected()
	return int(count), err
}

// MarkInterruptedTasks fails tasks left running by a previous process
func (s *Store) MarkInterruptedTasks() (int, error) {
	now := time.Now().UTC()

	query := `
		UPDATE tasks
		SET status = 'failed', last_error = ?, updated_at = ?, finished_at = ?
		WHERE status = 'running'
	`

	result, err := s.db.Exec(query, "interrupted by shutdown", now, now)
	if err != nil {
		return 0, err
	}

	count, err := result.RowsAffected()
	return int(count), err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans a single task row
func scanTask(row rowScanner) (*domain.TaskRecord, error) {
	task := &domain.TaskRecord{}
	var localPath, contentType, token, lastError sql.NullString
	var finishedAt sql.NullTime

	err := row.Scan(
		&task.ID, &task.Kind, &task.URL, &localPath, &task.Append, &task.Status,
		&task.BytesDownloaded, &task.TotalBytes, &task.ResumedFrom,
		&contentType, &token, &lastError,
		&task.StartedAt, &task.UpdatedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	task.LocalPath = localPath.String
	task.ContentType = contentType.String
	task.ValidationToken = token.String
	task.LastError = lastError.String
	if finishedAt.Valid {
		task.FinishedAt = &finishedAt.Time
	}

	return task, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
