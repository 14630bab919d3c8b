package port

import (
	"io"
)

// FileSystem defines the local file operations used by binary downloads
type FileSystem interface {
	// Stat returns the size of a file and whether it exists
	Stat(path string) (size int64, exists bool, err error)

	// DeleteFile removes a file, ignoring a missing one
	DeleteFile(path string) error

	// OpenAt opens a file for writing positioned at offset, creating it
	// and its parent directory if needed. Existing bytes are kept.
	OpenAt(path string, offset int64) (io.WriteCloser, error)
}
