package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{
			name: "plain error defaults to retryable",
			err:  errors.New("connection reset"),
			want: true,
		},
		{
			name: "explicitly retryable",
			err:  &RetryableError{Err: errors.New("503"), Retryable: true},
			want: true,
		},
		{
			name: "explicitly non-retryable",
			err:  &RetryableError{Err: errors.New("415"), Retryable: false},
			want: false,
		},
		{
			name: "wrapped non-retryable",
			err:  fmt.Errorf("request failed: %w", &RetryableError{Err: errors.New("415"), Retryable: false}),
			want: false,
		},
		{
			name: "canceled context never retries",
			err:  context.Canceled,
			want: false,
		},
		{
			name: "expired deadline never retries",
			err:  fmt.Errorf("call failed: %w", context.DeadlineExceeded),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	wrapped := NewUserError("could not reach the conversion service", ErrMissingConfig)

	assert.Equal(t, "could not reach the conversion service: missing configuration", wrapped.Error())
	assert.ErrorIs(t, wrapped, ErrMissingConfig)

	var userErr *UserError
	assert.ErrorAs(t, fmt.Errorf("outer: %w", wrapped), &userErr)
	assert.Equal(t, "could not reach the conversion service", userErr.UserMessage)

	bare := NewUserError("nothing to import", nil)
	assert.Equal(t, "nothing to import", bare.Error())
}
