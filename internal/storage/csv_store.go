package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CSVStore implements Store as two append-only CSV files. A mutex
// serializes writers within the process.
type CSVStore struct {
	activityPath string
	moodPath     string
	log          *zap.Logger

	mu sync.RWMutex
}

// NewCSVStore creates a CSVStore. The files are created on first append.
func NewCSVStore(activityPath, moodPath string, log *zap.Logger) *CSVStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &CSVStore{
		activityPath: activityPath,
		moodPath:     moodPath,
		log:          log.Named("csv"),
	}
}

// AppendActivity appends one row to the activity log.
func (s *CSVStore) AppendActivity(ctx context.Context, e ActivityEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.appendRow(s.activityPath, activityHeader, encodeActivity(e)); err != nil {
		return fmt.Errorf("append activity: %w: %w", ErrStorage, err)
	}
	return nil
}

// AppendMood appends one row to the mood log.
func (s *CSVStore) AppendMood(ctx context.Context, e MoodEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.appendRow(s.moodPath, moodHeader, encodeMood(e)); err != nil {
		return fmt.Errorf("append mood: %w: %w", ErrStorage, err)
	}
	return nil
}

func (s *CSVStore) appendRow(path string, header, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Write(row); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadActivity reads the whole activity log.
func (s *CSVStore) LoadActivity(ctx context.Context) ([]ActivityEvent, error) {
	events, err := withRetry(ctx, s.log, "load activity", func() ([]ActivityEvent, error) {
		var out []ActivityEvent
		err := s.readRows(s.activityPath, func(header []string) (func(line int, row []string), bool) {
			layout, isHeader := detectActivityLayout(header)
			if isHeader && columnIndex(header, "activeinfo") < 0 {
				s.log.Debug("legacy activity header", zap.Strings("header", header))
			}
			return func(line int, row []string) {
				e, err := decodeActivity(layout, row)
				if err != nil {
					s.dropRow(s.activityPath, line, err)
					return
				}
				out = append(out, e)
			}, isHeader
		})
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("load activity: %w: %w", ErrStorage, err)
	}
	if events == nil {
		events = []ActivityEvent{}
	}
	return events, nil
}

// LoadMood reads the whole mood log.
func (s *CSVStore) LoadMood(ctx context.Context) ([]MoodEvent, error) {
	events, err := withRetry(ctx, s.log, "load mood", func() ([]MoodEvent, error) {
		var out []MoodEvent
		err := s.readRows(s.moodPath, func(header []string) (func(line int, row []string), bool) {
			layout, isHeader := detectMoodLayout(header)
			if isHeader && layout.version < currentMoodLayout.version {
				s.log.Debug("legacy mood header",
					zap.Int("version", layout.version),
					zap.Strings("header", header),
				)
			}
			return func(line int, row []string) {
				e, err := decodeMood(layout, row)
				if err != nil {
					s.dropRow(s.moodPath, line, err)
					return
				}
				out = append(out, e)
			}, isHeader
		})
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("load mood: %w: %w", ErrStorage, err)
	}
	if events == nil {
		events = []MoodEvent{}
	}
	return events, nil
}

// readRows streams path through a decoder chosen from its first row. The
// first row is also decoded as data unless it was a header. A missing file
// yields no rows and no error.
func (s *CSVStore) readRows(path string, start func(first []string) (func(line int, row []string), bool)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var decode func(line int, row []string)
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				s.dropRow(path, perr.Line, err)
				continue
			}
			return err
		}
		line, _ := r.FieldPos(0)
		if decode == nil {
			var isHeader bool
			decode, isHeader = start(row)
			if isHeader {
				continue
			}
		}
		decode(line, row)
	}
}

func (s *CSVStore) dropRow(path string, line int, err error) {
	s.log.Warn("skipping malformed row",
		zap.String("file", filepath.Base(path)),
		zap.Int("line", line),
		zap.Error(err),
	)
}

// Stats summarizes both logs.
func (s *CSVStore) Stats(ctx context.Context) (*Stats, error) {
	activity, err := s.LoadActivity(ctx)
	if err != nil {
		return nil, err
	}
	moods, err := s.LoadMood(ctx)
	if err != nil {
		return nil, err
	}

	stats := summarize(activity, moods)
	stats.Backend = BackendCSV
	for _, p := range []string{s.activityPath, s.moodPath} {
		if info, err := os.Stat(p); err == nil {
			stats.SizeBytes += info.Size()
		}
	}
	return stats, nil
}

// Close is a no-op; files are opened per operation.
func (s *CSVStore) Close() error {
	return nil
}

// summarize computes Stats from loaded events.
func summarize(activity []ActivityEvent, moods []MoodEvent) *Stats {
	stats := &Stats{
		ActivityCount: int64(len(activity)),
		MoodCount:     int64(len(moods)),
	}

	observe := func(ts time.Time) {
		if stats.OldestEvent.IsZero() || ts.Before(stats.OldestEvent) {
			stats.OldestEvent = ts
		}
		if ts.After(stats.NewestEvent) {
			stats.NewestEvent = ts
		}
	}
	for _, e := range activity {
		observe(e.Timestamp)
	}

	counts := map[string]int64{}
	for _, e := range moods {
		observe(e.Timestamp)
		if e.Emotion != "" {
			counts[e.Emotion]++
		}
	}
	for emotion, n := range counts {
		stats.TopEmotions = append(stats.TopEmotions, EmotionCount{Emotion: emotion, Count: n})
	}
	sort.Slice(stats.TopEmotions, func(i, j int) bool {
		a, b := stats.TopEmotions[i], stats.TopEmotions[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Emotion < b.Emotion
	})
	if len(stats.TopEmotions) > topEmotionLimit {
		stats.TopEmotions = stats.TopEmotions[:topEmotionLimit]
	}
	return stats
}

const topEmotionLimit = 10
