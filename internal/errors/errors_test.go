package errors

import (
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error",
			err:  nil,
			want: 0,
		},
		{
			name: "command error propagates status",
			err:  &CommandError{Command: "docker build", ExitCode: 125},
			want: 125,
		},
		{
			name: "wrapped command error propagates status",
			err:  &StepError{Step: "build-image", Err: &CommandError{Command: "docker build", ExitCode: 2}},
			want: 2,
		},
		{
			name: "killed process falls back to 1",
			err:  &CommandError{Command: "kubectl apply", ExitCode: -1},
			want: 1,
		},
		{
			name: "tool not found",
			err:  &ToolNotFoundError{Tool: "docker"},
			want: 1,
		},
		{
			name: "plain error",
			err:  fmt.Errorf("boom"),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsToolNotFound(t *testing.T) {
	base := &ToolNotFoundError{Tool: "kubectl"}

	if !IsToolNotFound(base) {
		t.Error("IsToolNotFound() = false for ToolNotFoundError")
	}
	if !IsToolNotFound(&StepError{Step: "preflight", Err: base}) {
		t.Error("IsToolNotFound() = false for wrapped ToolNotFoundError")
	}
	if IsToolNotFound(fmt.Errorf("other")) {
		t.Error("IsToolNotFound() = true for unrelated error")
	}
	if IsToolNotFound(nil) {
		t.Error("IsToolNotFound() = true for nil")
	}
}

func TestStepError_Unwrap(t *testing.T) {
	inner := &CommandError{Command: "docker push", ExitCode: 1}
	err := &StepError{Step: "push-image", Err: inner}

	if err.Unwrap() != inner {
		t.Error("Unwrap() did not return the wrapped error")
	}
	if err.Error() == "" {
		t.Error("Error() returned empty string")
	}
}
