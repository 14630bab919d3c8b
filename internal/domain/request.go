package domain

import (
	"fmt"
	"net/http"
)

// NoRange marks a request without a Range header
const NoRange int64 = -1

// DownloadRequest describes one outbound HTTP request. It is not modified
// after construction; WithRange returns a copy.
type DownloadRequest struct {
	Method     string
	URL        string
	Header     http.Header
	RangeStart int64
}

// NewDownloadRequest creates a request. An empty method means GET.
func NewDownloadRequest(method, url string, header http.Header) *DownloadRequest {
	if method == "" {
		method = http.MethodGet
	}
	h := make(http.Header, len(header))
	for k, v := range header {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}
	return &DownloadRequest{
		Method:     method,
		URL:        url,
		Header:     h,
		RangeStart: NoRange,
	}
}

// WithRange returns a copy asking for the bytes from offset to the end
func (r *DownloadRequest) WithRange(offset int64) *DownloadRequest {
	c := NewDownloadRequest(r.Method, r.URL, r.Header)
	c.RangeStart = offset
	c.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	return c
}

// HasRange returns true if the request carries a range start
func (r *DownloadRequest) HasRange() bool {
	return r.RangeStart >= 0
}

// HeaderValue looks up a header ignoring case
func (r *DownloadRequest) HeaderValue(name string) string {
	return r.Header.Get(name)
}
