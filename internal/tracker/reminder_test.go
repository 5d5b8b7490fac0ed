package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-03-04 is a Monday.
func monday(h, m, s int) time.Time {
	return time.Date(2024, 3, 4, h, m, s, 0, time.UTC)
}

func TestReminder_Due(t *testing.T) {
	r, err := NewReminder("20:00", []time.Weekday{time.Monday}, clockwork.NewFakeClock(), nil, nil)
	require.NoError(t, err)

	assert.False(t, r.Due(monday(19, 59, 59)))
	assert.True(t, r.Due(monday(20, 0, 0)))
	assert.False(t, r.Due(monday(20, 0, 30)), "fires once per slot")
	assert.False(t, r.Due(monday(20, 1, 0)))

	assert.False(t, r.Due(monday(20, 0, 10).AddDate(0, 0, 1)), "not scheduled on Tuesday")
	assert.True(t, r.Due(monday(20, 0, 10).AddDate(0, 0, 7)))
}

func TestReminder_MissedWindowDoesNotFire(t *testing.T) {
	r, err := NewReminder("08:30", nil, clockwork.NewFakeClock(), nil, nil)
	require.NoError(t, err)

	assert.False(t, r.Due(monday(8, 31, 0)))
	assert.True(t, r.Due(monday(8, 30, 59)), "no days means every day")
}

func TestReminder_InvalidTime(t *testing.T) {
	_, err := NewReminder("8pm", nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestReminder_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewFakeClockAt(monday(19, 59, 50))
	rec := &countingRecorder{}
	r, err := NewReminder("20:00", []time.Weekday{time.Monday}, clock, nil, rec)
	require.NoError(t, err)

	fired := make(chan time.Time, 1)
	go r.Run(ctx, func(slot time.Time) { fired <- slot })

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(15 * time.Second)

	select {
	case at := <-fired:
		assert.Equal(t, monday(20, 0, 5), at)
	case <-time.After(2 * time.Second):
		t.Fatal("reminder did not fire")
	}

	rec.mu.Lock()
	assert.Equal(t, 1, rec.reminders)
	rec.mu.Unlock()
}
