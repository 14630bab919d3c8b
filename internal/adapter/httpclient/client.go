package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vertextoedge/netfetch/internal/domain"
	"github.com/vertextoedge/netfetch/internal/port"
)

// DefaultUserAgent is sent when a request sets no User-Agent of its own
const DefaultUserAgent = "netfetch/1.0"

// Client is an HTTP transport for fetch operations
type Client struct {
	httpClient *http.Client
	userAgent  string

	// Per-host request limit, zero means unlimited
	hostRate  rate.Limit
	hostBurst int
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
}

// Ensure Client implements port.Transport
var _ port.Transport = (*Client)(nil)

// ClientConfig contains optional client configuration
type ClientConfig struct {
	UserAgent             string
	ConnectTimeout        time.Duration
	ResponseHeaderTimeout time.Duration
	IdleConnTimeout       time.Duration
	MaxConnsPerHost       int
	BufferSizeKB          int
	SkipTLSVerify         bool

	// RequestsPerHost limits requests per second to one host, 0 disables
	RequestsPerHost float64
	RequestBurst    int
}

// NewClient creates a new transport. A nil cfg uses defaults.
func NewClient(cfg *ClientConfig) *Client {
	c := ClientConfig{}
	if cfg != nil {
		c = *cfg
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 15 * time.Second
	}
	if c.ResponseHeaderTimeout <= 0 {
		c.ResponseHeaderTimeout = 30 * time.Second
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = 90 * time.Second
	}
	if c.MaxConnsPerHost <= 0 {
		c.MaxConnsPerHost = 16
	}
	bufferSize := 64 * 1024
	if c.BufferSizeKB > 0 {
		bufferSize = c.BufferSizeKB * 1024
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   c.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: c.SkipTLSVerify,
		},
		// Connection pooling
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: c.MaxConnsPerHost,
		MaxConnsPerHost:     c.MaxConnsPerHost,
		IdleConnTimeout:     c.IdleConnTimeout,

		WriteBufferSize: bufferSize,
		ReadBufferSize:  bufferSize,

		ForceAttemptHTTP2: true,

		// Byte offsets of a ranged request refer to the raw entity
		DisableCompression: true,

		// Response header timeout (not total download timeout)
		ResponseHeaderTimeout: c.ResponseHeaderTimeout,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   0, // No timeout for downloads
		},
		userAgent: c.UserAgent,
		hostRate:  rate.Limit(c.RequestsPerHost),
		hostBurst: max(c.RequestBurst, 1),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// NewClientWithHTTP wraps an existing http.Client
func NewClientWithHTTP(hc *http.Client, userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{httpClient: hc, userAgent: userAgent}
}

// Do sends the request. Every response carrying a status code is returned
// with its body; the caller must close it.
func (c *Client) Do(ctx context.Context, r *domain.DownloadRequest) (*domain.ResponseInfo, io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range r.Header {
		req.Header[k] = append([]string(nil), v...)
	}
	if r.HasRange() {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", r.RangeStart))
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if lim := c.limiterFor(req.URL.Host); lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}

	return ResponseInfoOf(resp), resp.Body, nil
}

func (c *Client) limiterFor(host string) *rate.Limiter {
	if c.hostRate <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.limiters[host]
	if !ok {
		lim = rate.NewLimiter(c.hostRate, c.hostBurst)
		c.limiters[host] = lim
	}
	return lim
}

// ResponseInfoOf extracts the header fields used by fetch operations
func ResponseInfoOf(resp *http.Response) *domain.ResponseInfo {
	length := resp.ContentLength
	if length < 0 {
		length = domain.UnknownLength
	}
	return &domain.ResponseInfo{
		StatusCode:      resp.StatusCode,
		ContentType:     resp.Header.Get("Content-Type"),
		ContentLength:   length,
		ValidationToken: resp.Header.Get("ETag"),
	}
}
