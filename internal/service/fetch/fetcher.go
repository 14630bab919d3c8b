package fetch

import (
	"context"
	"io"

	"github.com/vertextoedge/netfetch/internal/domain"
	"github.com/vertextoedge/netfetch/internal/port"
	"go.uber.org/zap"
)

// BlockSize is the size of the buffer binary bodies are copied through
const BlockSize = 16 * 1024

// Fetcher runs text, JSON and binary downloads. A Fetcher holds no
// per-task state and may be shared between goroutines.
type Fetcher struct {
	transport port.Transport
	fs        port.FileSystem
	logger    *zap.Logger
	blockSize int
}

// New creates a new Fetcher
func New(transport port.Transport, fs port.FileSystem, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		transport: transport,
		fs:        fs,
		logger:    logger,
		blockSize: BlockSize,
	}
}

// send performs the request and classifies the status line. body is nil
// whenever err is set.
func (f *Fetcher) send(ctx context.Context, req *domain.DownloadRequest) (*domain.ResponseInfo, io.ReadCloser, error) {
	info, body, err := f.transport.Do(ctx, req)
	if err != nil {
		if body != nil {
			body.Close()
		}
		f.logger.Debug("request failed",
			zap.String("url", req.URL),
			zap.Error(err))
		return nil, nil, ClassifyConnectError(err)
	}

	f.logger.Debug("got response",
		zap.String("url", req.URL),
		zap.Int("status", info.StatusCode),
		zap.Int64("content_length", info.ContentLength))

	if err := ClassifyStatus(info); err != nil {
		if body != nil {
			body.Close()
		}
		return info, nil, err
	}
	if body == nil {
		body = io.NopCloser(eofReader{})
	}
	return info, body, nil
}

// cancelled polls the cancellation flag of a task. A done context counts as
// a cancellation request too.
func cancelled(ctx context.Context, c port.Cancellation) bool {
	if ctx.Err() != nil {
		return true
	}
	return c != nil && c.IsCancelled()
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
