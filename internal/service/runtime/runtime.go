package runtime

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/vertextoedge/netfetch/internal/domain"
	"github.com/vertextoedge/netfetch/internal/domain/event"
	"github.com/vertextoedge/netfetch/internal/port"
	"github.com/vertextoedge/netfetch/internal/service/fetch"
)

// ErrClosed is returned when submitting to a closed runtime
var ErrClosed = errors.New("runtime is closed")

// Fetcher runs the fetch operations of a task
type Fetcher interface {
	FetchText(ctx context.Context, builder port.RequestBuilder, cancel port.Cancellation) domain.Outcome[domain.TextResult]
	FetchJSON(ctx context.Context, builder port.RequestBuilder, cancel port.Cancellation) domain.Outcome[domain.TaggedValue]
	DownloadBinary(ctx context.Context, job fetch.BinaryJob, cancel port.Cancellation, onProgress func(domain.Progress)) domain.Outcome[domain.DownloadResult]
}

// Config contains runtime configuration
type Config struct {
	// MaxConcurrent bounds the tasks running at once
	MaxConcurrent int
	// DeliveryBuffer is the capacity of the notification queue
	DeliveryBuffer int
}

// Request describes the remote resource of a task
type Request struct {
	URL    string
	Method string
	Header http.Header

	// Builder, if set, produces the request instead of the fields above.
	// URL is still used for history and logs.
	Builder port.RequestBuilder
}

func (r Request) builder() port.RequestBuilder {
	if r.Builder != nil {
		return r.Builder
	}
	method, url, header := r.Method, r.URL, r.Header
	return port.RequestBuilderFunc(func(context.Context) (*domain.DownloadRequest, error) {
		return domain.NewDownloadRequest(method, url, header), nil
	})
}

// Runtime runs tasks on background goroutines and delivers their
// notifications, in FIFO order, on a single delivery goroutine.
type Runtime struct {
	fetcher    Fetcher
	dispatcher event.EventDispatcher
	logger     *zap.Logger

	ctx   context.Context
	stop  context.CancelFunc
	sem   *semaphore.Weighted
	group errgroup.Group

	deliveries chan func()
	delivered  chan struct{}

	mu     sync.Mutex
	active map[string]*Handle
	closed bool
}

// New creates a runtime and starts its delivery goroutine
func New(cfg Config, fetcher Fetcher, dispatcher event.EventDispatcher, logger *zap.Logger) *Runtime {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.DeliveryBuffer <= 0 {
		cfg.DeliveryBuffer = 256
	}
	if dispatcher == nil {
		dispatcher = event.NewNullDispatcher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, stop := context.WithCancel(context.Background())
	r := &Runtime{
		fetcher:    fetcher,
		dispatcher: dispatcher,
		logger:     logger,
		ctx:        ctx,
		stop:       stop,
		sem:        semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		deliveries: make(chan func(), cfg.DeliveryBuffer),
		delivered:  make(chan struct{}),
		active:     make(map[string]*Handle),
	}
	go r.deliverLoop()
	return r
}

func (r *Runtime) deliverLoop() {
	defer close(r.delivered)
	for fn := range r.deliveries {
		fn()
	}
}

// post queues a notification for the delivery goroutine
func (r *Runtime) post(fn func()) {
	r.deliveries <- fn
}

// SubmitText starts a text task
func (r *Runtime) SubmitText(req Request, h port.TextHandler) (*Handle, error) {
	return r.submit(domain.TaskKindText, req.URL, "", false, func(handle *Handle, ref event.TaskRef) func() {
		o := r.fetcher.FetchText(r.ctx, req.builder(), handle)
		r.publishOutcome(handle, ref, o.Kind, o.Err, int64(len(o.Payload.Text)), domain.Progress{Total: domain.UnknownLength}, 0, "", o.Payload.ValidationToken)
		return func() { fetch.DeliverText(o, h) }
	})
}

// SubmitJSON starts a JSON task
func (r *Runtime) SubmitJSON(req Request, h port.JSONHandler) (*Handle, error) {
	return r.submit(domain.TaskKindJSON, req.URL, "", false, func(handle *Handle, ref event.TaskRef) func() {
		o := r.fetcher.FetchJSON(r.ctx, req.builder(), handle)
		r.publishOutcome(handle, ref, o.Kind, o.Err, 0, domain.Progress{Total: domain.UnknownLength}, 0, "", "")
		return func() { fetch.DeliverJSON(o, h) }
	})
}

// SubmitBinary starts a binary download into localPath
func (r *Runtime) SubmitBinary(req Request, localPath string, appendMode bool, h port.BinaryHandler) (*Handle, error) {
	return r.submit(domain.TaskKindBinary, req.URL, localPath, appendMode, func(handle *Handle, ref event.TaskRef) func() {
		var base int64
		last := domain.Progress{Total: domain.UnknownLength}

		job := fetch.BinaryJob{
			Request:   req.builder(),
			LocalPath: localPath,
			Append:    appendMode,
			OnStreamStart: func(start domain.Progress) {
				base = start.Downloaded
				last = start
			},
		}
		o := r.fetcher.DownloadBinary(r.ctx, job, handle, func(p domain.Progress) {
			last = p
			r.dispatcher.Dispatch(event.NewTaskProgressed(ref, p, base))
			r.post(func() { h.OnProgress(p) })
		})

		r.publishOutcome(handle, ref, o.Kind, o.Err, last.Downloaded-base, last, base, o.Payload.ContentType, "")
		return func() { fetch.DeliverBinary(o, h) }
	})
}

// submit registers a handle and starts run on the task group. run returns
// the terminal notification to deliver.
func (r *Runtime) submit(kind, url, localPath string, appendMode bool, run func(*Handle, event.TaskRef) func()) (*Handle, error) {
	handle := newHandle(uuid.NewString(), kind, url, localPath)
	ref := event.TaskRef{TaskID: handle.id, Kind: kind, URL: url}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	r.active[handle.id] = handle

	r.dispatcher.Dispatch(event.NewTaskStarted(ref, localPath, appendMode))
	r.logger.Debug("task submitted",
		zap.String("task_id", handle.id),
		zap.String("kind", kind),
		zap.String("url", url))

	r.group.Go(func() error {
		deliver := func() {}
		if err := r.sem.Acquire(r.ctx, 1); err != nil {
			// Only happens once the runtime is stopped
			r.publishOutcome(handle, ref, domain.OutcomeCancelled, domain.ErrCancelled, 0, domain.Progress{Total: domain.UnknownLength}, 0, "", "")
		} else {
			deliver = run(handle, ref)
			r.sem.Release(1)
		}

		r.post(func() {
			deliver()
			r.mu.Lock()
			delete(r.active, handle.id)
			r.mu.Unlock()
			close(handle.done)
		})
		return nil
	})

	return handle, nil
}

func (r *Runtime) publishOutcome(
	handle *Handle,
	ref event.TaskRef,
	kind domain.OutcomeKind,
	err error,
	bytes int64,
	progress domain.Progress,
	resumedFrom int64,
	contentType, validationToken string,
) {
	elapsed := time.Since(handle.startedAt)
	switch kind {
	case domain.OutcomeSuccess:
		r.dispatcher.Dispatch(event.NewTaskCompleted(ref, bytes, progress, resumedFrom, contentType, validationToken, elapsed))
	case domain.OutcomeFailure:
		r.dispatcher.Dispatch(event.NewTaskFailed(ref, err, bytes, progress, elapsed))
	default:
		r.dispatcher.Dispatch(event.NewTaskCancelled(ref, bytes, progress, elapsed))
	}
}

// Get returns the handle of an active task
func (r *Runtime) Get(id string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.active[id]
	return h, ok
}

// Cancel requests cancellation of an active task
func (r *Runtime) Cancel(id string) error {
	h, ok := r.Get(id)
	if !ok {
		return domain.ErrTaskNotActive
	}
	h.Cancel()
	return nil
}

// CancelAll requests cancellation of every active task
func (r *Runtime) CancelAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.active {
		h.Cancel()
	}
	return len(r.active)
}

// Active returns the active tasks, oldest first
func (r *Runtime) Active() []*Handle {
	r.mu.Lock()
	handles := make([]*Handle, 0, len(r.active))
	for _, h := range r.active {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	sort.Slice(handles, func(i, j int) bool {
		return handles[i].startedAt.Before(handles[j].startedAt)
	})
	return handles
}

// Close rejects new tasks, waits for running ones and drains the
// delivery queue. It does not cancel anything; call CancelAll first to
// stop early.
func (r *Runtime) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.delivered
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	err := r.group.Wait()
	close(r.deliveries)
	<-r.delivered
	r.stop()
	return err
}
