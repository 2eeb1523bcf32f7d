package retryx

import (
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/stretchr/testify/require"
)

func TestConstantRetry(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		opts          []RetryOption
		expectedCalls int
		expectedError error
	}{
		{
			name:          "no retry on success",
			err:           nil,
			expectedCalls: 1,
		},
		{
			name:          "no retry on permanent error",
			err:           backoff.Permanent(errors.New("permanent error")),
			expectedCalls: 1,
			expectedError: errors.New("permanent error"),
		},
		{
			name: "retries up to the configured count",
			err:  errors.New("temporary error"),
			opts: []RetryOption{
				WithInitialDuration(time.Millisecond),
				WithRetryCount(2),
			},
			expectedCalls: 2,
			expectedError: errors.New("temporary error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := ConstantRetry(func() error {
				calls++
				return tt.err
			}, tt.opts...)

			require.Equal(t, tt.expectedCalls, calls)
			if tt.expectedError == nil {
				require.NoError(t, err)
			} else {
				require.EqualError(t, err, tt.expectedError.Error())
			}
		})
	}
}

func TestExponentialRetry(t *testing.T) {
	t.Run("eventually succeeds", func(t *testing.T) {
		calls := 0
		err := ExponentialRetry(func() error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		}, WithInitialDuration(time.Millisecond), WithRetryCount(5))

		require.NoError(t, err)
		require.Equal(t, 3, calls)
	})
}
