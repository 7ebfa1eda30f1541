package camunda

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defect-reporter/internal/common/errors"
)

var fastRetry = RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestWithRetry_RetriesTransient(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastRetry, "complete job", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("rpc error: code = Unavailable desc = connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_StopsOnPermanent(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastRetry, "complete job", func(context.Context) error {
		attempts++
		return fmt.Errorf("rpc error: code = NotFound desc = job not found")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, errors.HasCode(err, "RESOURCE_NOT_FOUND"))
}

func TestWithRetry_GivesUp(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastRetry, "complete job", func(context.Context) error {
		attempts++
		return fmt.Errorf("context deadline exceeded")
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, errors.HasCode(err, "TIMEOUT_ERROR"))
}
