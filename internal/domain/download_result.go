package domain

// TextResult is the payload of a successful text fetch
type TextResult struct {
	// Text is the whole response body
	Text string

	// ValidationToken is the ETag header, "" if absent
	ValidationToken string
}

// DownloadResult represents the result of a binary download
type DownloadResult struct {
	// Path is the local file that received the bytes
	Path string

	// ContentType is the response Content-Type, "" if absent
	ContentType string

	// BytesWritten is the number of bytes written in this execution
	BytesWritten int64

	// TotalBytes is the expected final size, UnknownLength if not reported
	TotalBytes int64

	// Resumed indicates whether the download continued an existing file
	Resumed bool

	// ResumedFrom is the byte position from which the download was resumed
	ResumedFrom int64
}

// FileSize returns the size of the file on disk after the download
func (r DownloadResult) FileSize() int64 {
	return r.ResumedFrom + r.BytesWritten
}
