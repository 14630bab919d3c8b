package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/vertextoedge/netfetch/internal/domain"
	"github.com/vertextoedge/netfetch/internal/port"
)

// FetchJSON downloads a body as text and decodes it. Only objects and
// arrays are accepted.
func (f *Fetcher) FetchJSON(ctx context.Context, builder port.RequestBuilder, cancel port.Cancellation) domain.Outcome[domain.TaggedValue] {
	text := f.FetchText(ctx, builder, cancel)
	switch text.Kind {
	case domain.OutcomeCancelled:
		return domain.Cancelled[domain.TaggedValue]()
	case domain.OutcomeFailure:
		return domain.Failed[domain.TaggedValue](text.Err)
	}

	value, err := DecodeTagged(text.Payload.Text)
	if err != nil {
		return domain.Failed[domain.TaggedValue](err)
	}
	return domain.Succeeded(value)
}

// DecodeTagged decodes the first JSON value of text and tags it. Numbers
// are kept as json.Number. Anything after the first value is ignored.
func DecodeTagged(text string) (domain.TaggedValue, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return domain.TaggedValue{}, domain.NewParseError(err)
	}

	switch t := v.(type) {
	case map[string]any:
		return domain.TaggedValue{Kind: domain.ValueObject, Object: t}, nil
	case []any:
		return domain.TaggedValue{Kind: domain.ValueArray, Array: t}, nil
	default:
		return domain.TaggedValue{}, domain.NewUnexpectedShapeError()
	}
}
