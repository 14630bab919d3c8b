package main

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vertextoedge/netfetch/internal/adapter/filesystem"
	"github.com/vertextoedge/netfetch/internal/adapter/httpclient"
	"github.com/vertextoedge/netfetch/internal/adapter/metrics"
	"github.com/vertextoedge/netfetch/internal/adapter/sqlite"
	"github.com/vertextoedge/netfetch/internal/config"
	"github.com/vertextoedge/netfetch/internal/domain/event"
	"github.com/vertextoedge/netfetch/internal/service/fetch"
	"github.com/vertextoedge/netfetch/internal/service/runtime"
)

// engine bundles the components shared by all commands
type engine struct {
	files      *filesystem.Manager
	store      *sqlite.Store
	metrics    *metrics.Prometheus
	dispatcher *event.InMemoryDispatcher
	runtime    *runtime.Runtime
}

// newEngine wires transport, filesystem, history and runtime. rootDir is
// the directory downloads are resolved against.
func newEngine(cfg *config.Config, rootDir string, logger *zap.Logger) (*engine, error) {
	files, err := filesystem.NewManager(rootDir)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	transport := httpclient.NewClient(&httpclient.ClientConfig{
		UserAgent:             cfg.Client.UserAgent,
		ConnectTimeout:        cfg.Client.GetConnectTimeout(),
		ResponseHeaderTimeout: cfg.Client.GetResponseHeaderTimeout(),
		MaxConnsPerHost:       cfg.Client.MaxConnsPerHost,
		BufferSizeKB:          cfg.Client.BufferSizeKB,
		SkipTLSVerify:         cfg.Client.SkipTLSVerify,
		RequestsPerHost:       cfg.Client.RequestsPerHost,
		RequestBurst:          cfg.Client.RequestBurst,
	})
	fetcher := fetch.New(transport, files, logger.Named("fetch"))

	m := metrics.New("netfetch")
	dispatcher := event.NewInMemoryDispatcher(false, logger)
	dispatcher.Subscribe(event.NewLoggingHandler(logger.Named("task"), cfg.Download.GetProgressLogInterval()))
	dispatcher.Subscribe(event.NewMetricsHandler(m))
	dispatcher.Subscribe(event.NewHistoryHandler(store, logger.Named("history"), cfg.Download.GetProgressSaveInterval()))

	rt := runtime.New(runtime.Config{
		MaxConcurrent: cfg.Download.MaxConcurrent,
	}, fetcher, dispatcher, logger.Named("runtime"))

	return &engine{
		files:      files,
		store:      store,
		metrics:    m,
		dispatcher: dispatcher,
		runtime:    rt,
	}, nil
}

// Close waits for running tasks and closes the history store
func (e *engine) Close() error {
	rtErr := e.runtime.Close()
	if err := e.store.Close(); err != nil {
		return err
	}
	return rtErr
}

// parseHeaders turns "Name: value" flags into a header set
func parseHeaders(values []string) (http.Header, error) {
	header := make(http.Header, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, want 'Name: value'", v)
		}
		header.Add(name, strings.TrimSpace(value))
	}
	return header, nil
}
