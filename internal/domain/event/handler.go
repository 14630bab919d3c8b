package event

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/netfetch/internal/domain"
	"github.com/vertextoedge/netfetch/internal/port"
	"github.com/vertextoedge/netfetch/internal/util/ratelimiter"
)

// LoggingHandler logs all events. Progress is logged at most once per
// interval and task.
type LoggingHandler struct {
	logger   *zap.Logger
	progress *ratelimiter.Limiter
}

// NewLoggingHandler creates a new LoggingHandler
func NewLoggingHandler(logger *zap.Logger, progressInterval time.Duration) *LoggingHandler {
	return &LoggingHandler{
		logger:   logger,
		progress: ratelimiter.New(progressInterval),
	}
}

// Handle logs the event
func (h *LoggingHandler) Handle(event DomainEvent) error {
	switch e := event.(type) {
	case TaskStarted:
		h.logger.Debug("task started",
			zap.String("task_id", e.TaskID),
			zap.String("kind", e.Kind),
			zap.String("url", e.URL),
			zap.String("path", e.LocalPath),
			zap.Bool("append", e.Append),
		)
	case TaskProgressed:
		if ok, _ := h.progress.Allow(e.TaskID); !ok {
			return nil
		}
		fields := []zap.Field{
			zap.String("task_id", e.TaskID),
			zap.Int64("downloaded", e.Progress.Downloaded),
		}
		if e.Progress.TotalKnown() {
			fields = append(fields,
				zap.Int64("total", e.Progress.Total),
				zap.String("percent", percent(e.Progress)))
		}
		h.logger.Info("download progress", fields...)
	case TaskCompleted:
		h.progress.Forget(e.TaskID)
		h.logger.Info("task completed",
			zap.String("task_id", e.TaskID),
			zap.String("kind", e.Kind),
			zap.String("url", e.URL),
			zap.Int64("bytes", e.Bytes),
			zap.Int64("resumed_from", e.ResumedFrom),
			zap.Duration("duration", e.Duration),
		)
	case TaskFailed:
		h.progress.Forget(e.TaskID)
		h.logger.Warn("task failed",
			zap.String("task_id", e.TaskID),
			zap.String("kind", e.Kind),
			zap.String("url", e.URL),
			zap.String("error", e.Error),
			zap.String("error_kind", e.ErrorKind),
			zap.Int("status", e.StatusCode),
		)
	case TaskCancelled:
		h.progress.Forget(e.TaskID)
		h.logger.Info("task cancelled",
			zap.String("task_id", e.TaskID),
			zap.String("kind", e.Kind),
			zap.Int64("bytes", e.Bytes),
		)
	default:
		h.logger.Debug("domain event",
			zap.String("event", event.EventName()),
			zap.Time("occurred_at", event.OccurredAt()),
		)
	}
	return nil
}

// HandledEvents returns the events this handler handles
func (h *LoggingHandler) HandledEvents() []string {
	return []string{"*"} // Handle all events
}

// MetricsHandler feeds task events into a metrics sink
type MetricsHandler struct {
	metrics port.Metrics
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(metrics port.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Handle updates metrics based on the event
func (h *MetricsHandler) Handle(event DomainEvent) error {
	switch e := event.(type) {
	case TaskStarted:
		h.metrics.TaskStarted(e.Kind)
	case TaskCompleted:
		h.metrics.BytesTransferred(e.Kind, e.Bytes)
		h.metrics.TaskFinished(e.Kind, domain.OutcomeSuccess.String(), e.Duration.Seconds())
	case TaskFailed:
		h.metrics.BytesTransferred(e.Kind, e.Bytes)
		h.metrics.TaskFinished(e.Kind, domain.OutcomeFailure.String(), e.Duration.Seconds())
	case TaskCancelled:
		h.metrics.BytesTransferred(e.Kind, e.Bytes)
		h.metrics.TaskFinished(e.Kind, domain.OutcomeCancelled.String(), e.Duration.Seconds())
	}
	return nil
}

// HandledEvents returns the events this handler handles
func (h *MetricsHandler) HandledEvents() []string {
	return []string{
		NameTaskStarted,
		NameTaskCompleted,
		NameTaskFailed,
		NameTaskCancelled,
	}
}

// HistoryHandler writes task events to the history store. Progress rows
// are written at most once per interval and task.
type HistoryHandler struct {
	repo     port.TaskRepository
	logger   *zap.Logger
	progress *ratelimiter.Limiter

	mu      sync.Mutex
	records map[string]*domain.TaskRecord
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(repo port.TaskRepository, logger *zap.Logger, progressInterval time.Duration) *HistoryHandler {
	return &HistoryHandler{
		repo:     repo,
		logger:   logger,
		progress: ratelimiter.New(progressInterval),
		records:  make(map[string]*domain.TaskRecord),
	}
}

// Handle records the event
func (h *HistoryHandler) Handle(event DomainEvent) error {
	var err error
	switch e := event.(type) {
	case TaskStarted:
		rec := domain.NewTaskRecord(e.TaskID, e.Kind, e.URL)
		rec.LocalPath = e.LocalPath
		rec.Append = e.Append
		rec.StartedAt = e.Timestamp
		rec.UpdatedAt = e.Timestamp
		h.put(rec)
		err = h.repo.CreateTask(rec)
	case TaskProgressed:
		rec := h.get(e.TaskID)
		if rec == nil {
			return nil
		}
		h.mu.Lock()
		rec.UpdateProgress(e.Progress)
		rec.ResumedFrom = e.ResumedFrom
		h.mu.Unlock()
		if ok, _ := h.progress.Allow(e.TaskID); ok {
			err = h.repo.UpdateProgress(e.TaskID, e.Progress)
		}
	case TaskCompleted:
		err = h.finish(e.TaskID, func(rec *domain.TaskRecord) {
			rec.UpdateProgress(e.Progress)
			rec.ResumedFrom = e.ResumedFrom
			rec.ContentType = e.ContentType
			rec.ValidationToken = e.ValidationToken
			rec.MarkCompleted()
		})
	case TaskFailed:
		err = h.finish(e.TaskID, func(rec *domain.TaskRecord) {
			rec.UpdateProgress(e.Progress)
			rec.MarkFailed(e.Error)
		})
	case TaskCancelled:
		err = h.finish(e.TaskID, func(rec *domain.TaskRecord) {
			rec.UpdateProgress(e.Progress)
			rec.MarkCancelled()
		})
	}

	if err != nil {
		h.logger.Warn("failed to record task history",
			zap.String("event", event.EventName()),
			zap.Error(err))
	}
	return err
}

func (h *HistoryHandler) finish(id string, apply func(*domain.TaskRecord)) error {
	h.progress.Forget(id)

	h.mu.Lock()
	rec, ok := h.records[id]
	delete(h.records, id)
	h.mu.Unlock()
	if !ok {
		return nil
	}

	apply(rec)
	return h.repo.FinishTask(rec)
}

func (h *HistoryHandler) put(rec *domain.TaskRecord) {
	h.mu.Lock()
	h.records[rec.ID] = rec
	h.mu.Unlock()
}

func (h *HistoryHandler) get(id string) *domain.TaskRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.records[id]
}

// HandledEvents returns the events this handler handles
func (h *HistoryHandler) HandledEvents() []string {
	return []string{
		NameTaskStarted,
		NameTaskProgressed,
		NameTaskCompleted,
		NameTaskFailed,
		NameTaskCancelled,
	}
}

func percent(p domain.Progress) string {
	f := p.Fraction() * 100
	if f < 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', 1, 64) + "%"
}
