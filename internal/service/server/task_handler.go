package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/netfetch/internal/domain"
	"github.com/vertextoedge/netfetch/internal/port"
	"github.com/vertextoedge/netfetch/internal/service/fetch"
	"github.com/vertextoedge/netfetch/internal/service/runtime"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// SubmitRequest is the body of POST /tasks
type SubmitRequest struct {
	URL     string            `json:"url"`
	Path    string            `json:"path"`
	Append  bool              `json:"append"`
	Headers map[string]string `json:"headers,omitempty"`
}

// TaskView is the JSON form of a task
type TaskView struct {
	ID              string     `json:"id"`
	Kind            string     `json:"kind"`
	URL             string     `json:"url"`
	LocalPath       string     `json:"local_path,omitempty"`
	Append          bool       `json:"append"`
	Status          string     `json:"status"`
	Active          bool       `json:"active"`
	BytesDownloaded int64      `json:"bytes_downloaded"`
	TotalBytes      int64      `json:"total_bytes"`
	ResumedFrom     int64      `json:"resumed_from"`
	ContentType     string     `json:"content_type,omitempty"`
	ValidationToken string     `json:"validation_token,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

func newTaskView(t *domain.TaskRecord, active bool) TaskView {
	return TaskView{
		ID:              t.ID,
		Kind:            t.Kind,
		URL:             t.URL,
		LocalPath:       t.LocalPath,
		Append:          t.Append,
		Status:          t.Status,
		Active:          active,
		BytesDownloaded: t.BytesDownloaded,
		TotalBytes:      t.TotalBytes,
		ResumedFrom:     t.ResumedFrom,
		ContentType:     t.ContentType,
		ValidationToken: t.ValidationToken,
		LastError:       t.LastError,
		StartedAt:       t.StartedAt,
		FinishedAt:      t.FinishedAt,
	}
}

// ActiveView is the JSON form of a running task
type ActiveView struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	URL       string    `json:"url"`
	LocalPath string    `json:"local_path,omitempty"`
	Cancelled bool      `json:"cancel_requested"`
	StartedAt time.Time `json:"started_at"`
}

// TaskHandler handles task endpoint requests
type TaskHandler struct {
	tasks   port.TaskRepository
	runtime TaskRuntime
	paths   PathResolver
	logger  *zap.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks port.TaskRepository, rt TaskRuntime, paths PathResolver, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:   tasks,
		runtime: rt,
		paths:   paths,
		logger:  logger,
	}
}

// HandleSubmit starts a binary download
func (h *TaskHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validateURL(req.URL); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	localPath, err := h.paths.ResolvePath(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	header := make(http.Header, len(req.Headers))
	for k, v := range req.Headers {
		header.Set(k, v)
	}

	handle, err := h.runtime.SubmitBinary(
		runtime.Request{URL: req.URL, Header: header},
		localPath,
		req.Append,
		fetch.BinaryFuncs{},
	)
	if err != nil {
		h.logger.Error("failed to submit task", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Runtime is not accepting tasks")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":         handle.ID(),
		"local_path": localPath,
	})
}

// HandleList lists the task history
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := domain.TaskFilter{
		Status: r.URL.Query().Get("status"),
		Kind:   r.URL.Query().Get("kind"),
		Limit:  defaultListLimit,
	}
	if filter.Status != "" && !domain.ValidTaskStatus(filter.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = min(limit, maxListLimit)
	}

	tasks, err := h.tasks.ListTasks(filter)
	if err != nil {
		h.logger.Error("failed to list tasks", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list tasks")
		return
	}

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		_, active := h.runtime.Get(t.ID)
		views = append(views, newTaskView(t, active))
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleActive lists the running tasks
func (h *TaskHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	handles := h.runtime.Active()
	views := make([]ActiveView, 0, len(handles))
	for _, a := range handles {
		views = append(views, ActiveView{
			ID:        a.ID(),
			Kind:      a.Kind(),
			URL:       a.URL(),
			LocalPath: a.LocalPath(),
			Cancelled: a.IsCancelled(),
			StartedAt: a.StartedAt(),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleGet returns one task
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	task, err := h.tasks.GetTask(id)
	if errors.Is(err, domain.ErrTaskNotFound) {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get task", zap.String("task_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get task")
		return
	}

	_, active := h.runtime.Get(id)
	writeJSON(w, http.StatusOK, newTaskView(task, active))
}

// HandleCancel requests cancellation of a running task
func (h *TaskHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.runtime.Cancel(id); err != nil {
		if errors.Is(err, domain.ErrTaskNotActive) {
			writeError(w, http.StatusConflict, "Task is not active")
			return
		}
		h.logger.Error("failed to cancel task", zap.String("task_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to cancel task")
		return
	}

	h.logger.Info("task cancel requested", zap.String("task_id", id))
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "cancelling"})
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid url %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}
