package runtime

import (
	"sync/atomic"
	"time"
)

// Handle controls one submitted task
type Handle struct {
	id        string
	kind      string
	url       string
	localPath string
	startedAt time.Time

	cancelled atomic.Bool
	done      chan struct{}
}

func newHandle(id, kind, url, localPath string) *Handle {
	return &Handle{
		id:        id,
		kind:      kind,
		url:       url,
		localPath: localPath,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}
}

// ID returns the task ID
func (h *Handle) ID() string { return h.id }

// Kind returns the task kind
func (h *Handle) Kind() string { return h.kind }

// URL returns the requested URL
func (h *Handle) URL() string { return h.url }

// LocalPath returns the target file of a binary task
func (h *Handle) LocalPath() string { return h.localPath }

// StartedAt returns the submission time
func (h *Handle) StartedAt() time.Time { return h.startedAt }

// Cancel requests cooperative cancellation. The task stops at its next
// cancellation point; an in-flight read is not interrupted. Calling Cancel
// more than once has no further effect.
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
}

// IsCancelled reports whether Cancel was called
func (h *Handle) IsCancelled() bool {
	return h.cancelled.Load()
}

// Done is closed after the terminal notification of the task was
// delivered, or after a cancelled task stopped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until Done is closed
func (h *Handle) Wait() {
	<-h.done
}
