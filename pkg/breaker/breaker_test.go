package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("broker down")

func newTestBreaker() (*Breaker, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New(Config{Name: "kafka", MaxFailures: 2, OpenTimeout: time.Minute, HalfOpenSuccesses: 2})
	b.now = func() time.Time { return now }
	return b, &now
}

func fail() error { return errDown }
func pass() error { return nil }

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker()

	assert.ErrorIs(t, b.Call(fail), errDown)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Call(fail), errDown)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker()

	_ = b.Call(fail)
	require.NoError(t, b.Call(pass))
	_ = b.Call(fail)

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, 1, b.Stats().Failures)
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b, now := newTestBreaker()
	_ = b.Call(fail)
	_ = b.Call(fail)
	require.Equal(t, StateOpen, b.State())

	*now = now.Add(time.Minute)
	require.NoError(t, b.Call(pass))
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Call(pass))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker()
	_ = b.Call(fail)
	_ = b.Call(fail)

	*now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, b.Call(fail), errDown)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Call(pass), ErrOpen)
}

func TestNew_Defaults(t *testing.T) {
	b := New(Config{Name: "x"})

	stats := b.Stats()
	assert.Equal(t, 5, stats.MaxFailures)
	assert.Equal(t, StateClosed, stats.State)
}
