package wait

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.webaccept/pkg/failure"
)

// --- stub clicker ---

type stubClicker struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (s *stubClicker) Click() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func obstructed() error {
	return failure.Wrap(
		failure.KindObstructed, "click", "",
		errors.New("element click intercepted"),
	)
}

func fastClick(scrolls *int) ClickOptions {
	return ClickOptions{
		Attempts: 10,
		Delay:    -1,
		Scroll: func() error {
			*scrolls++
			return nil
		},
	}
}

func TestRetryClick_FirstAttemptSucceeds(t *testing.T) {
	c := &stubClicker{}
	scrolls := 0

	require.NoError(t, RetryClick(context.Background(), c, fastClick(&scrolls)))
	assert.Equal(t, 1, c.calls)
	assert.Zero(t, scrolls)
}

func TestRetryClick_ObstructedThenSucceeds(t *testing.T) {
	c := &stubClicker{errs: []error{obstructed(), obstructed()}}
	scrolls := 0

	require.NoError(t, RetryClick(context.Background(), c, fastClick(&scrolls)))
	assert.Equal(t, 3, c.calls)
	assert.Equal(t, 2, scrolls)
}

func TestRetryClick_AlwaysObstructed(t *testing.T) {
	errs := make([]error, 10)
	for i := range errs {
		errs[i] = obstructed()
	}
	c := &stubClicker{errs: errs}
	scrolls := 0

	err := RetryClick(context.Background(), c, fastClick(&scrolls))
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrObstructed))
	assert.Contains(t, err.Error(), "element click intercepted")
	assert.Equal(t, 10, c.calls)
	assert.Equal(t, 10, scrolls)
}

func TestRetryClick_NonObstructionThenSuccess(t *testing.T) {
	c := &stubClicker{errs: []error{errors.New("stale element reference")}}
	scrolls := 0

	require.NoError(t, RetryClick(context.Background(), c, fastClick(&scrolls)))
	assert.Equal(t, 2, c.calls)
	assert.Zero(t, scrolls)
}

func TestRetryClick_NonObstructionOnFinalAttempt(t *testing.T) {
	final := errors.New("element not interactable")
	c := &stubClicker{errs: []error{obstructed(), obstructed(), final}}
	scrolls := 0
	opts := fastClick(&scrolls)
	opts.Attempts = 3

	err := RetryClick(context.Background(), c, opts)
	assert.Equal(t, final, err)
	assert.Equal(t, 3, c.calls)
	assert.Equal(t, 2, scrolls)
}

func TestRetryClick_OnRetryObservesFailures(t *testing.T) {
	c := &stubClicker{errs: []error{obstructed(), errors.New("x")}}
	scrolls := 0
	opts := fastClick(&scrolls)
	var attempts []int
	opts.OnRetry = func(attempt int, _ error) {
		attempts = append(attempts, attempt)
	}

	require.NoError(t, RetryClick(context.Background(), c, opts))
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestRetryClick_ScrollErrorDoesNotAbort(t *testing.T) {
	c := &stubClicker{errs: []error{obstructed()}}
	opts := ClickOptions{
		Attempts: 2,
		Delay:    -1,
		Scroll:   func() error { return errors.New("script error") },
	}

	require.NoError(t, RetryClick(context.Background(), c, opts))
	assert.Equal(t, 2, c.calls)
}

func TestRetryClick_DelayBetweenAttempts(t *testing.T) {
	c := &stubClicker{errs: []error{obstructed(), obstructed()}}
	opts := ClickOptions{Attempts: 3, Delay: 10 * time.Millisecond}

	start := time.Now()
	require.NoError(t, RetryClick(context.Background(), c, opts))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestRetryClick_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &stubClicker{errs: []error{obstructed(), obstructed()}}
	opts := ClickOptions{
		Attempts: 5,
		Delay:    time.Hour,
		OnRetry:  func(int, error) { cancel() },
	}

	err := RetryClick(ctx, c, opts)
	assert.True(t, failure.IsObstructed(err))
	assert.Equal(t, 1, c.calls)
}

func TestClickOptions_Defaults(t *testing.T) {
	opts := ClickOptions{}.withDefaults()
	assert.Equal(t, DefaultClickAttempts, opts.Attempts)
	assert.Equal(t, DefaultClickDelay, opts.Delay)
	assert.NotNil(t, opts.Logger)

	opts = ClickOptions{Delay: -1}.withDefaults()
	assert.Zero(t, opts.Delay)
}
