package domain

// UnknownLength is used when the server did not report a length
const UnknownLength int64 = -1

// ResponseInfo is read once from the response headers
type ResponseInfo struct {
	StatusCode      int
	ContentType     string
	ContentLength   int64
	ValidationToken string
}

// LengthKnown returns true if the server reported a content length
func (r *ResponseInfo) LengthKnown() bool {
	return r.ContentLength >= 0
}
