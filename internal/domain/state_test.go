package domain

import "testing"

func TestBinaryState_CanTransition(t *testing.T) {
	tests := []struct {
		from, to BinaryState
		want     bool
	}{
		{StateIdle, StateConnecting, true},
		{StateIdle, StateCancelled, true},
		{StateIdle, StateStreaming, false},
		{StateConnecting, StateResuming, true},
		{StateConnecting, StateStreaming, true},
		{StateConnecting, StateFailed, true},
		{StateResuming, StateStreaming, true},
		{StateResuming, StateCompleted, false},
		{StateStreaming, StateCompleted, true},
		{StateStreaming, StateCancelled, true},
		{StateStreaming, StateConnecting, false},
		{StateCompleted, StateStreaming, false},
		{StateFailed, StateConnecting, false},
		{StateCancelled, StateCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBinaryState_IsTerminal(t *testing.T) {
	terminal := map[BinaryState]bool{
		StateIdle:       false,
		StateConnecting: false,
		StateResuming:   false,
		StateStreaming:  false,
		StateCompleted:  true,
		StateCancelled:  true,
		StateFailed:     true,
	}
	for s, want := range terminal {
		if got := s.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, got, want)
		}
	}
	if BinaryState(99).String() != "unknown" {
		t.Error("out of range state should be unknown")
	}
}

func TestTaskRecord_Lifecycle(t *testing.T) {
	task := NewTaskRecord("id-1", TaskKindBinary, "http://example.com/f")
	if task.IsFinished() || task.TotalBytes != UnknownLength {
		t.Fatalf("new record = %+v", task)
	}

	task.UpdateProgress(Progress{Downloaded: 10, Total: 20})
	if task.BytesDownloaded != 10 || task.TotalBytes != 20 {
		t.Errorf("progress not recorded: %+v", task)
	}

	task.MarkFailed("")
	if task.Status != TaskStatusFailed || task.LastError != MsgUnspecified || task.FinishedAt == nil {
		t.Errorf("MarkFailed() = %+v", task)
	}

	task.MarkCompleted()
	if task.Status != TaskStatusCompleted || task.LastError != "" {
		t.Errorf("MarkCompleted() = %+v", task)
	}
	if !ValidTaskStatus(task.Status) || ValidTaskStatus("paused") {
		t.Error("ValidTaskStatus() mismatch")
	}
}
