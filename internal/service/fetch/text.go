package fetch

import (
	"context"
	"io"

	"github.com/vertextoedge/netfetch/internal/domain"
	"github.com/vertextoedge/netfetch/internal/port"
	"go.uber.org/zap"
)

// FetchText downloads a whole body as text. The validation token is the
// ETag response header, or "" when the server sent none.
func (f *Fetcher) FetchText(ctx context.Context, builder port.RequestBuilder, cancel port.Cancellation) domain.Outcome[domain.TextResult] {
	if cancelled(ctx, cancel) {
		return domain.Cancelled[domain.TextResult]()
	}

	req, err := builder.BuildRequest(ctx)
	if err != nil {
		if isHostResolutionFailure(err) {
			return domain.Failed[domain.TextResult](domain.NewNetworkUnreachableError(err))
		}
		return domain.Failed[domain.TextResult](domain.NewTextIOError(err))
	}

	info, body, err := f.send(ctx, req)
	if err != nil {
		if cancelled(ctx, cancel) {
			return domain.Cancelled[domain.TextResult]()
		}
		return domain.Failed[domain.TextResult](err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		if cancelled(ctx, cancel) {
			return domain.Cancelled[domain.TextResult]()
		}
		f.logger.Debug("failed to read text body",
			zap.String("url", req.URL),
			zap.Error(err))
		return domain.Failed[domain.TextResult](domain.NewTextIOError(err))
	}

	if cancelled(ctx, cancel) {
		return domain.Cancelled[domain.TextResult]()
	}

	f.logger.Debug("text fetched",
		zap.String("url", req.URL),
		zap.Int("length", len(data)),
		zap.String("etag", info.ValidationToken))

	return domain.Succeeded(domain.TextResult{
		Text:            string(data),
		ValidationToken: info.ValidationToken,
	})
}
