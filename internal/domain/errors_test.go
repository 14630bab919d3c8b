package domain

import (
	"errors"
	"fmt"
	"io"
	"net"
	"testing"
)

func TestNewHTTPStatusError_Message(t *testing.T) {
	tests := []struct {
		name string
		code int
		want string
	}{
		{name: "forbidden", code: 403, want: "Access Denied"},
		{name: "not found", code: 404, want: "HTTP Error 404"},
		{name: "server error", code: 500, want: "HTTP Error 500"},
		{name: "redirect", code: 302, want: "HTTP Error 302"},
		{name: "range not satisfiable", code: 416, want: "HTTP Error 416"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewHTTPStatusError(tt.code, nil)
			if got := err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if err.Kind != KindHTTPStatus {
				t.Errorf("Kind = %v, want %v", err.Kind, KindHTTPStatus)
			}
			if code, ok := StatusCodeOf(err); !ok || code != tt.code {
				t.Errorf("StatusCodeOf() = %d, %v, want %d, true", code, ok, tt.code)
			}
		})
	}
}

func TestFetchError_Messages(t *testing.T) {
	cause := errors.New("connection reset by peer")

	tests := []struct {
		name string
		err  *FetchError
		want string
		kind ErrorKind
	}{
		{
			name: "network unreachable",
			err:  NewNetworkUnreachableError(&net.DNSError{Err: "no such host", Name: "example.invalid"}),
			want: "No network",
			kind: KindNetworkUnreachable,
		},
		{
			name: "text read",
			err:  NewTextIOError(cause),
			want: "Error during download: connection reset by peer",
			kind: KindTransport,
		},
		{
			name: "binary read",
			err:  NewBinaryIOError(cause),
			want: "Exception in download: connection reset by peer",
			kind: KindTransport,
		},
		{
			name: "parse",
			err:  NewParseError(io.ErrUnexpectedEOF),
			want: "JSONException while parsing response: unexpected EOF",
			kind: KindDecode,
		},
		{
			name: "unexpected shape",
			err:  NewUnexpectedShapeError(),
			want: "JSON response is an unexpected data type",
			kind: KindDecode,
		},
		{
			name: "empty",
			err:  &FetchError{},
			want: "Unspecified error",
			kind: KindUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf() = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewHTTPStatusError(500, cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the transport cause")
	}

	wrapped := fmt.Errorf("task abc: %w", err)
	if got := KindOf(wrapped); got != KindHTTPStatus {
		t.Errorf("KindOf(wrapped) = %v, want %v", got, KindHTTPStatus)
	}
	if code, ok := StatusCodeOf(wrapped); !ok || code != 500 {
		t.Errorf("StatusCodeOf(wrapped) = %d, %v, want 500, true", code, ok)
	}
}

func TestStatusCodeOf_NonStatusError(t *testing.T) {
	if _, ok := StatusCodeOf(NewTextIOError(io.EOF)); ok {
		t.Error("StatusCodeOf() should be false for a transport error")
	}
	if _, ok := StatusCodeOf(errors.New("plain")); ok {
		t.Error("StatusCodeOf() should be false for a plain error")
	}
}

func TestMessageOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: MsgUnspecified},
		{name: "empty message", err: errors.New(""), want: MsgUnspecified},
		{name: "plain", err: errors.New("boom"), want: "boom"},
		{name: "fetch error", err: NewHTTPStatusError(403, nil), want: MsgAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MessageOf(tt.err); got != tt.want {
				t.Errorf("MessageOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsCancelled(t *testing.T) {
	if !IsCancelled(ErrCancelled) {
		t.Error("IsCancelled(ErrCancelled) should be true")
	}
	if !IsCancelled(fmt.Errorf("wrapped: %w", ErrCancelled)) {
		t.Error("IsCancelled() should see through wrapping")
	}
	if IsCancelled(NewHTTPStatusError(500, nil)) {
		t.Error("IsCancelled() should be false for a failure")
	}
}

func TestErrorKind_String(t *testing.T) {
	kinds := map[ErrorKind]string{
		KindUnspecified:        "unspecified",
		KindNetworkUnreachable: "network_unreachable",
		KindTransport:          "transport",
		KindHTTPStatus:         "http_status",
		KindDecode:             "decode",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
