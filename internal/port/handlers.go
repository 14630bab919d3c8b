package port

import "github.com/vertextoedge/netfetch/internal/domain"

// ErrorHandler receives the message of a failed task
type ErrorHandler interface {
	OnError(message string)
}

// ProgressHandler receives progress notifications
type ProgressHandler interface {
	OnProgress(progress domain.Progress)
}

// TextHandler receives the result of a text task
type TextHandler interface {
	ErrorHandler
	OnTextComplete(text, validationToken string)
}

// JSONHandler receives the result of a JSON task
type JSONHandler interface {
	ErrorHandler
	OnJSONComplete(value domain.TaggedValue)
}

// BinaryHandler receives the notifications of a binary task. The file on
// disk is the result, so completion carries no payload.
type BinaryHandler interface {
	ErrorHandler
	ProgressHandler
	OnBinaryComplete()
}

// Cancellation is the polled cancellation flag of one task
type Cancellation interface {
	IsCancelled() bool
}

// Metrics records task measurements
type Metrics interface {
	TaskStarted(kind string)
	TaskFinished(kind, outcome string, seconds float64)
	BytesTransferred(kind string, n int64)
}
