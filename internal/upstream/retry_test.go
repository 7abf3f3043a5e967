package upstream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

var errRateLimited = &googleapi.Error{Code: 429, Message: "rate limit"}

func TestExecute_SucceedsOnThirdAttempt(t *testing.T) {
	attempts := 0
	start := time.Now()
	result, err := Execute(context.Background(), RetryPolicy{
		MaxAttempts:        3,
		BaseDelay:          20 * time.Millisecond,
		ExponentialBackoff: true,
	}, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errRateLimited
		}
		return "diagnosis", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "diagnosis", result)
	assert.Equal(t, 3, attempts)
	// Exponential mode waits base then 2*base between attempts.
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestExecute_FixedDelay(t *testing.T) {
	attempts := 0
	start := time.Now()
	_, err := Execute(context.Background(), RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   15 * time.Millisecond,
	}, func() (string, error) {
		attempts++
		return "", errRateLimited
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	assert.Less(t, elapsed, 200*time.Millisecond)
}

func TestExecute_NonRecoverableStopsImmediately(t *testing.T) {
	attempts := 0
	_, err := Execute(context.Background(), RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
	}, func() (string, error) {
		attempts++
		return "", &googleapi.Error{Code: 401, Message: "bad key"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindUnauthorized, classified.Kind)
}

func TestExecute_ExhaustionSurfacesLastError(t *testing.T) {
	attempts := 0
	_, err := Execute(context.Background(), RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
	}, func() (int, error) {
		attempts++
		return 0, errRateLimited
	})

	require.Error(t, err)
	assert.Equal(t, 2, attempts)

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindRateLimited, classified.Kind)
}

func TestExecute_UpstreamFailureRetriedOnlyByPolicy(t *testing.T) {
	attempts := 0
	_, err := Execute(context.Background(), RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
	}, func() (int, error) {
		attempts++
		return 0, errors.New("model returned garbage")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	attempts = 0
	_, err = Execute(context.Background(), RetryPolicy{
		MaxAttempts:           3,
		BaseDelay:             time.Millisecond,
		RetryUpstreamFailures: true,
	}, func() (int, error) {
		attempts++
		return 0, errors.New("model returned garbage")
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestExecute_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Execute(ctx, RetryPolicy{
		MaxAttempts: 10,
		BaseDelay:   time.Second,
	}, func() (int, error) {
		attempts++
		return 0, errRateLimited
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_Normalize(t *testing.T) {
	p := RetryPolicy{}.normalize()
	assert.Equal(t, 1, p.MaxAttempts)
	assert.Equal(t, time.Millisecond, p.BaseDelay)
}
