package domain

// LocalFileState describes the target file of a binary download at start
type LocalFileState struct {
	Path         string
	Exists       bool
	ExistingSize int64
	Append       bool
}

// ResumeOffset returns where writing starts. A file that is not appended to
// is discarded, so its offset is 0.
func (s LocalFileState) ResumeOffset() int64 {
	if s.Exists && s.Append {
		return s.ExistingSize
	}
	return 0
}

// MustDiscard returns true if an existing file has to be deleted first
func (s LocalFileState) MustDiscard() bool {
	return s.Exists && !s.Append
}
