package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/vertextoedge/netfetch/internal/domain"
	"github.com/vertextoedge/netfetch/internal/port"
	"go.uber.org/zap"
)

// BinaryJob describes one binary download
type BinaryJob struct {
	// Request builds the outbound request
	Request port.RequestBuilder

	// LocalPath is the file receiving the body
	LocalPath string

	// Append continues an existing file instead of replacing it
	Append bool

	// OnStreamStart, if set, is called once before the first block with the
	// resume offset and the expected total
	OnStreamStart func(start domain.Progress)
}

// binaryRun holds the state of one binary execution
type binaryRun struct {
	job         BinaryJob
	state       domain.BinaryState
	offset      int64
	written     int64
	total       int64
	contentType string
	logger      *zap.Logger
}

func (r *binaryRun) transition(next domain.BinaryState) {
	if !r.state.CanTransition(next) {
		r.logger.Warn("unexpected download state transition",
			zap.Stringer("from", r.state),
			zap.Stringer("to", next))
	}
	r.logger.Debug("download state",
		zap.Stringer("from", r.state),
		zap.Stringer("to", next))
	r.state = next
}

func (r *binaryRun) progress() domain.Progress {
	return domain.Progress{Downloaded: r.offset + r.written, Total: r.total}
}

func (r *binaryRun) result() domain.DownloadResult {
	return domain.DownloadResult{
		Path:         r.job.LocalPath,
		ContentType:  r.contentType,
		BytesWritten: r.written,
		TotalBytes:   r.total,
		Resumed:      r.offset > 0,
		ResumedFrom:  r.offset,
	}
}

func (r *binaryRun) fail(err error) domain.Outcome[domain.DownloadResult] {
	r.transition(domain.StateFailed)
	r.logger.Warn("download failed",
		zap.Int64("bytes_written", r.written),
		zap.Error(err))
	return domain.Failed[domain.DownloadResult](err)
}

func (r *binaryRun) cancel() domain.Outcome[domain.DownloadResult] {
	r.transition(domain.StateCancelled)
	r.logger.Info("download cancelled",
		zap.Int64("bytes_written", r.written),
		zap.Int64("file_size", r.offset+r.written))
	return domain.Cancelled[domain.DownloadResult]()
}

// DownloadBinary streams a body into job.LocalPath. An existing file is
// continued with a byte-range request when job.Append is set and replaced
// otherwise. onProgress, if not nil, is called after every block written.
// cancel is polled before connecting and before every block; a partial file
// is left on disk when the download is cancelled or fails.
func (f *Fetcher) DownloadBinary(
	ctx context.Context,
	job BinaryJob,
	cancel port.Cancellation,
	onProgress func(domain.Progress),
) domain.Outcome[domain.DownloadResult] {
	run := &binaryRun{
		job:    job,
		state:  domain.StateIdle,
		total:  domain.UnknownLength,
		logger: f.logger.With(zap.String("path", job.LocalPath)),
	}

	if cancelled(ctx, cancel) {
		return run.cancel()
	}
	run.transition(domain.StateConnecting)

	req, err := job.Request.BuildRequest(ctx)
	if err != nil {
		return run.fail(domain.NewBinaryIOError(err))
	}

	local, err := f.inspect(job)
	if err != nil {
		return run.fail(domain.NewBinaryIOError(err))
	}
	if local.MustDiscard() {
		if err := f.fs.DeleteFile(job.LocalPath); err != nil {
			return run.fail(domain.NewBinaryIOError(err))
		}
	}
	if local.Exists && local.Append {
		run.offset = local.ResumeOffset()
		req = req.WithRange(run.offset)
		run.transition(domain.StateResuming)
		run.logger.Info("resuming download",
			zap.String("url", req.URL),
			zap.Int64("resume_from", run.offset))
	}

	info, body, err := f.send(ctx, req)
	if err != nil {
		if cancelled(ctx, cancel) {
			return run.cancel()
		}
		return run.fail(err)
	}
	defer body.Close()

	run.contentType = info.ContentType
	if req.HasRange() && run.offset > 0 && info.StatusCode == http.StatusOK {
		// The server ignored the range and sends the full entity.
		run.logger.Warn("range not honored, restarting download",
			zap.Int64("discarded_bytes", run.offset))
		if err := f.fs.DeleteFile(job.LocalPath); err != nil {
			return run.fail(domain.NewBinaryIOError(err))
		}
		run.offset = 0
	}
	if info.LengthKnown() {
		run.total = run.offset + info.ContentLength
	}

	run.transition(domain.StateStreaming)
	if job.OnStreamStart != nil {
		job.OnStreamStart(run.progress())
	}
	return f.stream(ctx, run, body, cancel, onProgress)
}

func (f *Fetcher) inspect(job BinaryJob) (domain.LocalFileState, error) {
	size, exists, err := f.fs.Stat(job.LocalPath)
	if err != nil {
		return domain.LocalFileState{}, err
	}
	return domain.LocalFileState{
		Path:         job.LocalPath,
		Exists:       exists,
		ExistingSize: size,
		Append:       job.Append,
	}, nil
}

func (f *Fetcher) stream(
	ctx context.Context,
	run *binaryRun,
	body io.Reader,
	cancel port.Cancellation,
	onProgress func(domain.Progress),
) (outcome domain.Outcome[domain.DownloadResult]) {
	out, err := f.fs.OpenAt(run.job.LocalPath, run.offset)
	if err != nil {
		return run.fail(domain.NewBinaryIOError(err))
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && outcome.IsSuccess() {
			outcome = run.fail(domain.NewBinaryIOError(cerr))
		}
	}()

	src := &endReader{r: body}
	buf := make([]byte, f.blockSize)
	for {
		if cancelled(ctx, cancel) {
			return run.cancel()
		}

		n, readErr := io.ReadFull(src, buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return run.fail(domain.NewBinaryIOError(err))
			}
			run.written += int64(n)
			if onProgress != nil {
				onProgress(run.progress())
			}
		}

		// ReadFull reports a short final block as ErrUnexpectedEOF; only a
		// clean EOF from the body itself ends the stream.
		if errors.Is(readErr, io.EOF) || (errors.Is(readErr, io.ErrUnexpectedEOF) && errors.Is(src.err, io.EOF)) {
			break
		}
		if readErr != nil {
			if cancelled(ctx, cancel) {
				return run.cancel()
			}
			return run.fail(domain.NewBinaryIOError(readErr))
		}
	}

	run.transition(domain.StateCompleted)
	run.logger.Info("download completed",
		zap.Int64("bytes_written", run.written),
		zap.Int64("file_size", run.offset+run.written),
		zap.Bool("resumed", run.offset > 0))
	return domain.Succeeded(run.result())
}

// endReader remembers the first error returned by the body
type endReader struct {
	r   io.Reader
	err error
}

func (e *endReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && e.err == nil {
		e.err = err
	}
	return n, err
}
