package port

import (
	"context"
	"io"

	"github.com/vertextoedge/netfetch/internal/domain"
)

// Transport sends a request and returns the response headers and body.
// Any response that carries a status code, including 4xx and 5xx, is
// returned without error. err is set only when no status was obtained.
type Transport interface {
	Do(ctx context.Context, req *domain.DownloadRequest) (*domain.ResponseInfo, io.ReadCloser, error)
}
