package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/runnerr0/moodlens/internal/config"
	"github.com/runnerr0/moodlens/internal/daemon"
	"github.com/runnerr0/moodlens/internal/tracker"
)

const shutdownTimeout = 5 * time.Second

// Execute implements the go-flags Commander interface for TrackCommand.
func (c *TrackCommand) Execute(args []string) error {
	sess, done, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer done()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := sess.cfg.Sampler
	probe := tracker.NewCPUProbe(s.SampleWindow(), s.ActiveThresholdPercent, s.ActiveTag, s.IdleTag)
	return c.run(ctx, sess, probe, clockwork.NewRealClock())
}

// run samples until ctx is done. Tests drive it with a fake probe and clock.
func (c *TrackCommand) run(ctx context.Context, sess *session, probe tracker.Probe, clock clockwork.Clock) error {
	interval := sess.cfg.Sampler.Interval()
	if c.Interval > 0 {
		interval = c.Interval
	}

	metrics := daemon.NewMetrics()
	sampler := tracker.NewSampler(sess.store, probe, interval,
		tracker.WithClock(clock),
		tracker.WithRecorder(metrics),
		tracker.WithLogger(sess.log),
	)

	var reminder *tracker.Reminder
	if sess.cfg.Reminder.Enabled {
		var err error
		if reminder, err = newReminder(sess.cfg.Reminder, clock, sess.log, metrics); err != nil {
			return err
		}
	}

	var srv *daemon.Server
	if sess.cfg.Daemon.Enabled && !c.NoDaemon {
		router := daemon.NewRouter(func() any { return sampler.Stats() }, metrics)
		var err error
		if srv, err = daemon.Listen(sess.cfg.Daemon.Addr(), router, sess.log); err != nil {
			return fmt.Errorf("starting tracker endpoint: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup

	if srv != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Serve(); err != nil {
				sess.log.Error("tracker endpoint stopped", zap.Error(err))
			}
		}()
		sess.log.Info("tracker endpoint listening", zap.String("addr", srv.Addr()))
	}
	if reminder != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reminder.Run(ctx, func(slot time.Time) {
				fmt.Printf("%s  Time to record your mood: moodlens mood --color HEX\n", slot.Format("15:04"))
			})
		}()
	}

	fmt.Printf("Tracking activity every %s (Ctrl-C to stop)\n", interval)
	runErr := sampler.Run(ctx)
	cancel()

	if srv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sess.log.Warn("tracker endpoint shutdown", zap.Error(err))
		}
		cancelShutdown()
	}
	wg.Wait()

	stats := sampler.Stats()
	fmt.Printf("Stopped after %d samples (%d errors)\n", stats.Samples, stats.Errors)
	return runErr
}

func newReminder(cfg config.ReminderConfig, clock clockwork.Clock, log *zap.Logger, rec tracker.Recorder) (*tracker.Reminder, error) {
	days := make([]time.Weekday, 0, len(cfg.Days))
	for _, name := range cfg.Days {
		d, err := config.ParseWeekday(name)
		if err != nil {
			return nil, fmt.Errorf("reminder: %w", err)
		}
		days = append(days, d)
	}
	return tracker.NewReminder(cfg.Time, days, clock, log, rec)
}
