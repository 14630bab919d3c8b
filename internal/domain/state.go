package domain

// BinaryState is a state of the binary download state machine
type BinaryState int

const (
	StateIdle BinaryState = iota
	StateConnecting
	StateResuming
	StateStreaming
	StateCompleted
	StateCancelled
	StateFailed
)

var binaryStateNames = map[BinaryState]string{
	StateIdle:       "idle",
	StateConnecting: "connecting",
	StateResuming:   "resuming",
	StateStreaming:  "streaming",
	StateCompleted:  "completed",
	StateCancelled:  "cancelled",
	StateFailed:     "failed",
}

// String returns the state name
func (s BinaryState) String() string {
	if name, ok := binaryStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal returns true for Completed, Cancelled and Failed
func (s BinaryState) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// CanTransition reports whether moving from s to next is allowed
func (s BinaryState) CanTransition(next BinaryState) bool {
	switch s {
	case StateIdle:
		return next == StateConnecting || next == StateCancelled || next == StateFailed
	case StateConnecting:
		return next == StateResuming || next == StateStreaming || next == StateCancelled || next == StateFailed
	case StateResuming:
		return next == StateStreaming || next == StateCancelled || next == StateFailed
	case StateStreaming:
		return next == StateCompleted || next == StateCancelled || next == StateFailed
	default:
		return false
	}
}
