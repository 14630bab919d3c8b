package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vertextoedge/netfetch/internal/domain"
)

// recorder captures handler calls in order
type recorder struct {
	calls []string
}

func (r *recorder) OnTextComplete(text, token string)    { r.calls = append(r.calls, "text:"+text+":"+token) }
func (r *recorder) OnJSONComplete(v domain.TaggedValue) { r.calls = append(r.calls, "json:"+v.Kind.String()) }
func (r *recorder) OnBinaryComplete()                   { r.calls = append(r.calls, "binary") }
func (r *recorder) OnProgress(domain.Progress)          { r.calls = append(r.calls, "progress") }
func (r *recorder) OnError(message string)              { r.calls = append(r.calls, "error:"+message) }

func TestDeliverText(t *testing.T) {
	r := &recorder{}
	DeliverText(domain.Succeeded(domain.TextResult{Text: "body", ValidationToken: "etag"}), r)
	DeliverText(domain.Failed[domain.TextResult](domain.NewHTTPStatusError(404, nil)), r)
	DeliverText(domain.Cancelled[domain.TextResult](), r)

	assert.Equal(t, []string{"text:body:etag", "error:HTTP Error 404"}, r.calls)
}

func TestDeliverJSON(t *testing.T) {
	r := &recorder{}
	DeliverJSON(domain.Succeeded(domain.TaggedValue{Kind: domain.ValueArray}), r)
	DeliverJSON(domain.Failed[domain.TaggedValue](domain.NewUnexpectedShapeError()), r)
	DeliverJSON(domain.Cancelled[domain.TaggedValue](), r)

	assert.Equal(t, []string{"json:array", "error:JSON response is an unexpected data type"}, r.calls)
}

func TestDeliverBinary(t *testing.T) {
	r := &recorder{}
	DeliverBinary(domain.Succeeded(domain.DownloadResult{}), r)
	DeliverBinary(domain.Failed[domain.DownloadResult](nil), r)
	DeliverBinary(domain.Cancelled[domain.DownloadResult](), r)

	assert.Equal(t, []string{"binary", "error:Unspecified error"}, r.calls)
}

func TestHandlerFuncs_NilFieldsAreSkipped(t *testing.T) {
	assert.NotPanics(t, func() {
		TextFuncs{}.OnTextComplete("a", "b")
		TextFuncs{}.OnError("x")
		JSONFuncs{}.OnJSONComplete(domain.TaggedValue{})
		JSONFuncs{}.OnError("x")
		BinaryFuncs{}.OnProgress(domain.Progress{})
		BinaryFuncs{}.OnBinaryComplete()
		BinaryFuncs{}.OnError("x")
	})

	var got string
	BinaryFuncs{Error: func(msg string) { got = msg }}.OnError("boom")
	assert.Equal(t, "boom", got)
}
