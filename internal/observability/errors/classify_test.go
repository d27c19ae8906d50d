package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"net"
	"testing"

	apperrors "github.com/target/matrix-leader/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"app error", apperrors.Fetch("status 502"), "fetch"},
		{"wrapped app error", fmt.Errorf("wait: %w", apperrors.Parse("matrix", "bad")), "parse"},
		{"plain", goerrors.New("boom"), "errors_errorstring"},
		{"net op error", fmt.Errorf("dial: %w", &net.OpError{Op: "dial", Err: context.DeadlineExceeded}), "context_deadlineexceedederror"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
