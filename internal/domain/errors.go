package domain

import (
	"errors"
	"fmt"
)

// Messages reported through the error callback
const (
	MsgNoNetwork          = "No network"
	MsgAccessDenied       = "Access Denied"
	MsgUnspecified        = "Unspecified error"
	MsgUnexpectedJSONType = "JSON response is an unexpected data type"

	textReadPrefix   = "Error during download: "
	binaryReadPrefix = "Exception in download: "
	jsonParsePrefix  = "JSONException while parsing response: "
)

// Common domain errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")

	// ErrCancelled marks an execution stopped by its caller. It is never
	// reported through the error callback.
	ErrCancelled = errors.New("download cancelled")

	// Task history errors
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskNotActive  = errors.New("task is not active")
	ErrInvalidTaskRow = errors.New("invalid task record")
)

// ErrorKind classifies a FetchError
type ErrorKind int

const (
	// KindUnspecified is used when a failure carries no better description
	KindUnspecified ErrorKind = iota
	// KindNetworkUnreachable means the host name could not be resolved
	KindNetworkUnreachable
	// KindTransport covers I/O failures while reading or writing data
	KindTransport
	// KindHTTPStatus means the server answered with a status other than 200/206
	KindHTTPStatus
	// KindDecode means the body was not an object- or array-shaped JSON value
	KindDecode
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindTransport:
		return "transport"
	case KindHTTPStatus:
		return "http_status"
	case KindDecode:
		return "decode"
	default:
		return "unspecified"
	}
}

// FetchError is the single failure type produced by the fetch operations.
// Message is what the caller's error callback receives.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

// Error returns the user-facing message
func (e *FetchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return MsgUnspecified
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewNetworkUnreachableError reports a host resolution failure
func NewNetworkUnreachableError(err error) *FetchError {
	return &FetchError{Kind: KindNetworkUnreachable, Message: MsgNoNetwork, Err: err}
}

// NewHTTPStatusError reports a rejected status code. cause is set when no
// status could be read at all.
func NewHTTPStatusError(code int, cause error) *FetchError {
	msg := fmt.Sprintf("HTTP Error %d", code)
	if code == 403 {
		msg = MsgAccessDenied
	}
	return &FetchError{Kind: KindHTTPStatus, StatusCode: code, Message: msg, Err: cause}
}

// NewTextIOError reports an I/O failure of a text fetch
func NewTextIOError(err error) *FetchError {
	return &FetchError{Kind: KindTransport, Message: textReadPrefix + errMessage(err), Err: err}
}

// NewBinaryIOError reports an I/O failure of a binary download
func NewBinaryIOError(err error) *FetchError {
	return &FetchError{Kind: KindTransport, Message: binaryReadPrefix + errMessage(err), Err: err}
}

// NewParseError reports a JSON syntax failure
func NewParseError(err error) *FetchError {
	return &FetchError{Kind: KindDecode, Message: jsonParsePrefix + errMessage(err), Err: err}
}

// NewUnexpectedShapeError reports a JSON value that is neither object nor array
func NewUnexpectedShapeError() *FetchError {
	return &FetchError{Kind: KindDecode, Message: MsgUnexpectedJSONType}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsCancelled returns true if the error marks a caller cancellation
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// KindOf returns the FetchError kind of err, or KindUnspecified
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnspecified
}

// StatusCodeOf returns the HTTP status carried by err, if any
func StatusCodeOf(err error) (int, bool) {
	var fe *FetchError
	if errors.As(err, &fe) && fe.Kind == KindHTTPStatus {
		return fe.StatusCode, true
	}
	return 0, false
}

// MessageOf returns the message to hand to an error callback. It is never
// empty.
func MessageOf(err error) string {
	if err == nil {
		return MsgUnspecified
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgUnspecified
}
