package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// reminderWindow is how long after the scheduled minute a reminder may
// still fire.
const reminderWindow = time.Minute

// reminderCheck is how often Run looks at the clock.
const reminderCheck = 15 * time.Second

// Reminder fires once per scheduled slot: a time of day on selected
// weekdays, in the clock's local time.
type Reminder struct {
	hour, minute int
	days         map[time.Weekday]bool
	clock        clockwork.Clock
	log          *zap.Logger
	rec          Recorder

	last time.Time
}

// NewReminder parses at ("HH:MM") and days. No days means every day.
func NewReminder(at string, days []time.Weekday, clock clockwork.Clock, log *zap.Logger, rec Recorder) (*Reminder, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("reminder time %q: want HH:MM", at)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = nopRecorder{}
	}

	r := &Reminder{
		hour:   t.Hour(),
		minute: t.Minute(),
		days:   map[time.Weekday]bool{},
		clock:  clock,
		log:    log.Named("reminder"),
		rec:    rec,
	}
	if len(days) == 0 {
		for d := time.Sunday; d <= time.Saturday; d++ {
			r.days[d] = true
		}
	}
	for _, d := range days {
		r.days[d] = true
	}
	return r, nil
}

// Due reports whether now falls inside a slot that has not fired yet, and
// marks it fired.
func (r *Reminder) Due(now time.Time) bool {
	if !r.days[now.Weekday()] {
		return false
	}
	y, m, d := now.Date()
	slot := time.Date(y, m, d, r.hour, r.minute, 0, 0, now.Location())
	if now.Before(slot) || !now.Before(slot.Add(reminderWindow)) {
		return false
	}
	if r.last.Equal(slot) {
		return false
	}
	r.last = slot
	return true
}

// Run checks the schedule until ctx is done and calls notify for each slot.
func (r *Reminder) Run(ctx context.Context, notify func(slot time.Time)) {
	ticker := r.clock.NewTicker(reminderCheck)
	defer ticker.Stop()

	check := func() {
		now := r.clock.Now()
		if r.Due(now) {
			r.log.Info("time to record your mood")
			r.rec.ReminderFired()
			if notify != nil {
				notify(now)
			}
		}
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			check()
		}
	}
}
