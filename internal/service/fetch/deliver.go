package fetch

import (
	"github.com/vertextoedge/netfetch/internal/domain"
	"github.com/vertextoedge/netfetch/internal/port"
)

// DeliverText hands a text outcome to its handler. A cancelled task is
// silent.
func DeliverText(o domain.Outcome[domain.TextResult], h port.TextHandler) {
	switch o.Kind {
	case domain.OutcomeSuccess:
		h.OnTextComplete(o.Payload.Text, o.Payload.ValidationToken)
	case domain.OutcomeFailure:
		h.OnError(o.Message())
	}
}

// DeliverJSON hands a JSON outcome to its handler. A cancelled task is
// silent.
func DeliverJSON(o domain.Outcome[domain.TaggedValue], h port.JSONHandler) {
	switch o.Kind {
	case domain.OutcomeSuccess:
		h.OnJSONComplete(o.Payload)
	case domain.OutcomeFailure:
		h.OnError(o.Message())
	}
}

// DeliverBinary hands the terminal outcome of a binary download to its
// handler. A cancelled task is silent.
func DeliverBinary(o domain.Outcome[domain.DownloadResult], h port.BinaryHandler) {
	switch o.Kind {
	case domain.OutcomeSuccess:
		h.OnBinaryComplete()
	case domain.OutcomeFailure:
		h.OnError(o.Message())
	}
}

// TextFuncs adapts closures to port.TextHandler. Nil fields are skipped.
type TextFuncs struct {
	Complete func(text, validationToken string)
	Error    func(message string)
}

func (f TextFuncs) OnTextComplete(text, validationToken string) {
	if f.Complete != nil {
		f.Complete(text, validationToken)
	}
}

func (f TextFuncs) OnError(message string) {
	if f.Error != nil {
		f.Error(message)
	}
}

// JSONFuncs adapts closures to port.JSONHandler. Nil fields are skipped.
type JSONFuncs struct {
	Complete func(value domain.TaggedValue)
	Error    func(message string)
}

func (f JSONFuncs) OnJSONComplete(value domain.TaggedValue) {
	if f.Complete != nil {
		f.Complete(value)
	}
}

func (f JSONFuncs) OnError(message string) {
	if f.Error != nil {
		f.Error(message)
	}
}

// BinaryFuncs adapts closures to port.BinaryHandler. Nil fields are skipped.
type BinaryFuncs struct {
	Progress func(progress domain.Progress)
	Complete func()
	Error    func(message string)
}

func (f BinaryFuncs) OnProgress(progress domain.Progress) {
	if f.Progress != nil {
		f.Progress(progress)
	}
}

func (f BinaryFuncs) OnBinaryComplete() {
	if f.Complete != nil {
		f.Complete()
	}
}

func (f BinaryFuncs) OnError(message string) {
	if f.Error != nil {
		f.Error(message)
	}
}
