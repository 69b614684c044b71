package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 * * * *"))
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.Error(t, ValidateSchedule("every hour"))
	assert.Error(t, ValidateSchedule("0 0 * * * *"), "seconds field is not accepted")
}

func TestScheduler_Add(t *testing.T) {
	s := New()
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Add(Job{Name: "overdue_scan", Schedule: "0 * * * *", Run: noop}))
	assert.Error(t, s.Add(Job{Name: "overdue_scan", Schedule: "0 * * * *", Run: noop}), "duplicate name")
	assert.Error(t, s.Add(Job{Name: "bad", Schedule: "nope", Run: noop}))
	assert.Error(t, s.Add(Job{Name: "", Schedule: "0 * * * *", Run: noop}))
}

func TestScheduler_StartStop(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(Job{Name: "overdue_scan", Schedule: "0 * * * *", Run: func(context.Context) error { return nil }}))

	assert.Nil(t, s.NextRunTime("overdue_scan"))

	s.Start(context.Background())
	assert.True(t, s.IsRunning())
	next := s.NextRunTime("overdue_scan")
	require.NotNil(t, next)
	assert.Zero(t, next.Minute())
	assert.Nil(t, s.NextRunTime("unknown"))

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestScheduler_StopsWithContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New()
	calls := 0
	boom := errors.New("boom")
	require.NoError(t, s.Add(Job{Name: "scan", Schedule: "0 * * * *", Run: func(context.Context) error {
		calls++
		return nil
	}}))
	require.NoError(t, s.Add(Job{Name: "fail", Schedule: "0 * * * *", Run: func(context.Context) error {
		return boom
	}}))

	require.NoError(t, s.RunNow(context.Background(), "scan"))
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, s.RunNow(context.Background(), "fail"), boom)
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}
