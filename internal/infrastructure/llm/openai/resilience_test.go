package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/openai/openai-go/v3"
)

func TestClassifyErrorRetriesTransientAPIFailures(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantRetryable bool
		wantRecorded  bool
	}{
		{
			name:          "rate limited",
			err:           fmt.Errorf("openai chat completion: %w", &openai.Error{StatusCode: http.StatusTooManyRequests}),
			wantRetryable: true,
			wantRecorded:  true,
		},
		{
			name:          "server error",
			err:           fmt.Errorf("openai chat completion: %w", &openai.Error{StatusCode: http.StatusInternalServerError}),
			wantRetryable: true,
			wantRecorded:  true,
		},
		{
			name:          "bad request is terminal",
			err:           fmt.Errorf("openai chat completion: %w", &openai.Error{StatusCode: http.StatusBadRequest}),
			wantRetryable: false,
			wantRecorded:  false,
		},
		{
			name:          "deadline exceeded is terminal",
			err:           fmt.Errorf("openai chat completion: %w", context.DeadlineExceeded),
			wantRetryable: false,
			wantRecorded:  false,
		},
		{
			name:          "unknown error records a failure",
			err:           errors.New("no choices returned"),
			wantRetryable: false,
			wantRecorded:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class := ClassifyError(tt.err)
			if class.Retryable != tt.wantRetryable {
				t.Fatalf("Retryable = %v, want %v", class.Retryable, tt.wantRetryable)
			}
			if class.RecordFailure != tt.wantRecorded {
				t.Fatalf("RecordFailure = %v, want %v", class.RecordFailure, tt.wantRecorded)
			}
		})
	}
}
