package main

import (
	"bytes"
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertextoedge/netfetch/internal/service/fetch"
)

// runCLI executes the root command with args and captures its output
func runCLI(ctx context.Context, args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	// cobra keeps a subcommand's context from a previous Execute
	for _, c := range rootCmd.Commands() {
		c.SetContext(ctx)
	}
	err = rootCmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// writeConfig points history and logging at a temporary directory
func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "netfetch.yaml")
	content := "database:\n" +
		"  path: " + filepath.Join(dir, "history.db") + "\n" +
		"download:\n" +
		"  output_dir: " + filepath.Join(dir, "downloads") + "\n" +
		"logging:\n" +
		"  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		for name, value := range map[string]string{"append": "false", "output": "", "quiet": "false"} {
			_ = getCmd.Flags().Set(name, value)
		}
	})
	return path
}

// stallingServer sends the first part of payload and waits for release
// before sending the rest. Range requests are served in one go.
type stallingServer struct {
	payload   []byte
	firstPart int
	release   chan struct{}

	mu     sync.Mutex
	ranges []string
}

func (s *stallingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.ranges = append(s.ranges, r.Header.Get("Range"))
	s.mu.Unlock()

	if r.Header.Get("Range") != "" {
		http.ServeContent(w, r, "payload.bin", time.Time{}, bytes.NewReader(s.payload))
		return
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(s.payload)))
	w.WriteHeader(http.StatusOK)
	w.Write(s.payload[:s.firstPart])
	w.(http.Flusher).Flush()

	select {
	case <-s.release:
	case <-r.Context().Done():
		return
	}
	w.Write(s.payload[s.firstPart:])
}

func (s *stallingServer) rangeHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ranges...)
}

func TestCLI_GetAppendAfterInterruptedRun(t *testing.T) {
	configFile := writeConfig(t)

	payload := make([]byte, 8*fetch.BlockSize+321)
	rand.New(rand.NewSource(42)).Read(payload)
	srv := &stallingServer{payload: payload, firstPart: 2 * fetch.BlockSize, release: make(chan struct{})}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	var releaseOnce sync.Once
	release := func() { releaseOnce.Do(func() { close(srv.release) }) }
	t.Cleanup(release)

	output := filepath.Join(t.TempDir(), "payload.bin")
	url := ts.URL + "/payload.bin"

	// First run is interrupted once two blocks reached the disk
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() {
		_, _, err := runCLI(ctx, "get", url, "-o", output, "-q", "-c", configFile)
		errc <- err
	}()

	require.Eventually(t, func() bool {
		info, err := os.Stat(output)
		return err == nil && info.Size() >= int64(2*fetch.BlockSize)
	}, 5*time.Second, 10*time.Millisecond)
	cancel()
	release()

	select {
	case err := <-errc:
		require.ErrorIs(t, err, errCancelled)
	case <-time.After(5 * time.Second):
		t.Fatal("interrupted get did not return")
	}

	partial, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Less(t, len(partial), len(payload))
	assert.Equal(t, payload[:len(partial)], partial, "partial file must be a prefix of the payload")

	// Second run continues the partial file
	_, stderr, err := runCLI(context.Background(), "get", url, "-o", output, "-q", "--append", "-c", configFile)
	require.NoError(t, err)
	assert.Contains(t, stderr, "saved "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, []string{"", "bytes=" + strconv.Itoa(len(partial)) + "-"}, srv.rangeHeaders())

	// Both executions are in the history
	stdout, _, err := runCLI(context.Background(), "history", "--kind", "binary", "-c", configFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "cancelled")
	assert.Contains(t, stdout, "completed")
	assert.Contains(t, stdout, url)
}

func TestCLI_Text(t *testing.T) {
	configFile := writeConfig(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte("hello, netfetch"))
	}))
	t.Cleanup(ts.Close)

	stdout, stderr, err := runCLI(context.Background(), "text", ts.URL, "-c", configFile)
	require.NoError(t, err)
	assert.Equal(t, "hello, netfetch", stdout)
	assert.Contains(t, stderr, `ETag: "v1"`)
}

func TestCLI_JSON(t *testing.T) {
	configFile := writeConfig(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/scalar":
			w.Write([]byte(`42`))
		default:
			w.Write([]byte(`{"name":"netfetch","tags":[1,2]}`))
		}
	}))
	t.Cleanup(ts.Close)

	stdout, stderr, err := runCLI(context.Background(), "json", ts.URL+"/object", "-c", configFile)
	require.NoError(t, err)
	assert.Contains(t, stderr, "shape: object")
	assert.JSONEq(t, `{"name":"netfetch","tags":[1,2]}`, stdout)

	_, _, err = runCLI(context.Background(), "json", ts.URL+"/scalar", "-c", configFile)
	require.Error(t, err)
	assert.Equal(t, "JSON response is an unexpected data type", err.Error())
}
