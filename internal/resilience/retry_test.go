package resilience

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	val, err := Retry(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 1, calls)
}

func TestRetry_RecoverFromTransient(t *testing.T) {
	calls := 0
	val, err := Retry(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", Transient(errors.New("rate limited"), 429)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestRetry_NonTransientFailsFast(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("invalid api key")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 0, Transient(errors.New("still failing"), 503)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "still failing")
}

func TestRetry_ContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Retry(ctx, Policy{Attempts: 5, BaseDelay: 50 * time.Millisecond}, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, Transient(errors.New("flaky"), 500)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_CustomShouldRetry(t *testing.T) {
	p := fastPolicy()
	p.ShouldRetry = func(err error) bool { return err.Error() == "again" }

	calls := 0
	_, err := Retry(context.Background(), p, func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("again")
		}
		return 0, errors.New("done")
	})
	require.Error(t, err)
	assert.Equal(t, "done", err.Error())
	assert.Equal(t, 2, calls)
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var attempts []int
	p := fastPolicy()
	p.OnRetry = func(attempt int, err error) { attempts = append(attempts, attempt) }

	_ = Do(context.Background(), p, func(ctx context.Context) error {
		return Transient(errors.New("x"), 500)
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestPolicyDefaults(t *testing.T) {
	p := Policy{}.withDefaults()
	assert.Equal(t, 3, p.Attempts)
	assert.Equal(t, 500*time.Millisecond, p.BaseDelay)
	assert.Equal(t, 30*time.Second, p.MaxDelay)
	assert.InDelta(t, 2.0, p.Multiplier, 0.001)
}

func TestDelayCapsAtMax(t *testing.T) {
	p := Policy{Attempts: 10, BaseDelay: time.Second, MaxDelay: 2 * time.Second, Multiplier: 10}.withDefaults()
	assert.LessOrEqual(t, p.delay(5), 2*time.Second)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline exceeded" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("bad request")))
	assert.True(t, IsTransient(Transient(errors.New("x"), 429)))
	assert.True(t, IsTransient(&net.OpError{Op: "dial", Err: timeoutErr{}}))
	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(errors.New("read tcp: connection reset by peer")))
	assert.True(t, IsTransient(errors.New("net/http: TLS handshake timeout")))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "code=%d", code)
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "code=%d", code)
	}
}
