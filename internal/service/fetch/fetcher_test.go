package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vertextoedge/netfetch/internal/adapter/filesystem"
	"github.com/vertextoedge/netfetch/internal/adapter/httpclient"
	"github.com/vertextoedge/netfetch/internal/domain"
	"github.com/vertextoedge/netfetch/internal/port"
)

// cancelFlag is a settable port.Cancellation
type cancelFlag struct {
	set atomic.Bool
}

func (c *cancelFlag) Cancel()           { c.set.Store(true) }
func (c *cancelFlag) IsCancelled() bool { return c.set.Load() }

// fakeTransport answers every request with a canned result
type fakeTransport struct {
	info  *domain.ResponseInfo
	body  io.ReadCloser
	err   error
	calls int
	last  *domain.DownloadRequest
}

func (f *fakeTransport) Do(_ context.Context, req *domain.DownloadRequest) (*domain.ResponseInfo, io.ReadCloser, error) {
	f.calls++
	f.last = req
	return f.info, f.body, f.err
}

// failingReader returns data once and then err
type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func (r *failingReader) Close() error { return nil }

// newServerFetcher starts handler and returns a Fetcher talking to it and
// writing below a temporary directory
func newServerFetcher(t *testing.T, handler http.Handler) (*Fetcher, *httptest.Server, string) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	files, err := filesystem.NewManager(dir)
	require.NoError(t, err)

	transport := httpclient.NewClientWithHTTP(srv.Client(), "")
	return New(transport, files, zap.NewNop()), srv, dir
}

func newFakeFetcher(t *testing.T, transport port.Transport) *Fetcher {
	t.Helper()
	files, err := filesystem.NewManager(t.TempDir())
	require.NoError(t, err)
	return New(transport, files, zap.NewNop())
}

func get(url string) port.RequestBuilder {
	return port.StaticRequest(url, nil)
}

func requestError(err error) port.RequestBuilder {
	return port.RequestBuilderFunc(func(context.Context) (*domain.DownloadRequest, error) {
		return nil, err
	})
}
