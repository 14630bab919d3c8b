package port

import (
	"context"
	"net/http"

	"github.com/vertextoedge/netfetch/internal/domain"
)

// RequestBuilder produces the outbound request of a task. It is supplied
// by the caller.
type RequestBuilder interface {
	BuildRequest(ctx context.Context) (*domain.DownloadRequest, error)
}

// RequestBuilderFunc adapts a function to RequestBuilder
type RequestBuilderFunc func(ctx context.Context) (*domain.DownloadRequest, error)

// BuildRequest calls f
func (f RequestBuilderFunc) BuildRequest(ctx context.Context) (*domain.DownloadRequest, error) {
	return f(ctx)
}

// StaticRequest returns a builder that always yields the same GET request
func StaticRequest(url string, header http.Header) RequestBuilder {
	return RequestBuilderFunc(func(context.Context) (*domain.DownloadRequest, error) {
		return domain.NewDownloadRequest(http.MethodGet, url, header), nil
	})
}
