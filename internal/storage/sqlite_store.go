package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/runnerr0/moodlens/internal/mood"
)

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	log    *zap.Logger
	ownsDB bool

	// Prepared statements
	insertActivity *sql.Stmt
	insertMood     *sql.Stmt
	selectActivity *sql.Stmt
	selectMood     *sql.Stmt
}

// OpenSQLite opens (creating if needed) and migrates the database at path.
// The returned store closes the database on Close.
func OpenSQLite(path string, log *zap.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w: %w", ErrStorage, err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w: %w", ErrStorage, err)
	}

	if err := NewMigrationRunner(db).Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w: %w", ErrStorage, err)
	}

	s, err := NewSQLiteStore(db, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &SQLiteStore{db: db, log: log.Named("sqlite")}

	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertActivity, err = s.db.Prepare(`
		INSERT INTO activity_events (ts, info) VALUES (?, ?)
	`)
	if err != nil {
		return err
	}

	s.insertMood, err = s.db.Prepare(`
		INSERT INTO mood_events (ts, color, emotion, sentiment_score, note)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.selectActivity, err = s.db.Prepare(`
		SELECT id, ts, info FROM activity_events ORDER BY id
	`)
	if err != nil {
		return err
	}

	s.selectMood, err = s.db.Prepare(`
		SELECT id, ts, color, emotion, sentiment_score, note FROM mood_events ORDER BY id
	`)
	if err != nil {
		return err
	}

	return nil
}

// AppendActivity inserts one activity sample.
func (s *SQLiteStore) AppendActivity(ctx context.Context, e ActivityEvent) error {
	_, err := s.insertActivity.ExecContext(ctx, formatTimestamp(e.Timestamp), e.Info)
	if err != nil {
		return fmt.Errorf("insert activity: %w: %w", ErrStorage, err)
	}
	return nil
}

// AppendMood inserts one mood report.
func (s *SQLiteStore) AppendMood(ctx context.Context, e MoodEvent) error {
	_, err := s.insertMood.ExecContext(ctx,
		formatTimestamp(e.Timestamp), e.Color.Hex(), e.Emotion, int(e.Score), e.Note,
	)
	if err != nil {
		return fmt.Errorf("insert mood: %w: %w", ErrStorage, err)
	}
	return nil
}

// LoadActivity returns every activity sample in insertion order.
func (s *SQLiteStore) LoadActivity(ctx context.Context) ([]ActivityEvent, error) {
	events, err := withRetry(ctx, s.log, "load activity", func() ([]ActivityEvent, error) {
		rows, err := s.selectActivity.QueryContext(ctx)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		events := []ActivityEvent{}
		for rows.Next() {
			var id int64
			var tsStr, info string
			if err := rows.Scan(&id, &tsStr, &info); err != nil {
				return nil, err
			}
			ts, err := parseTimestamp(tsStr)
			if err != nil {
				s.dropRow("activity_events", id, err)
				continue
			}
			events = append(events, ActivityEvent{Timestamp: ts, Info: info})
		}
		return events, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("load activity: %w: %w", ErrStorage, err)
	}
	return events, nil
}

// LoadMood returns every mood report in insertion order.
func (s *SQLiteStore) LoadMood(ctx context.Context) ([]MoodEvent, error) {
	events, err := withRetry(ctx, s.log, "load mood", func() ([]MoodEvent, error) {
		rows, err := s.selectMood.QueryContext(ctx)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		events := []MoodEvent{}
		for rows.Next() {
			var (
				id                      int64
				tsStr, color, emo, note string
				score                   int
			)
			if err := rows.Scan(&id, &tsStr, &color, &emo, &score, &note); err != nil {
				return nil, err
			}
			e, err := moodFromRow(tsStr, color, emo, score, note)
			if err != nil {
				s.dropRow("mood_events", id, err)
				continue
			}
			events = append(events, e)
		}
		return events, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("load mood: %w: %w", ErrStorage, err)
	}
	return events, nil
}

func moodFromRow(tsStr, color, emotion string, score int, note string) (MoodEvent, error) {
	ts, err := parseTimestamp(tsStr)
	if err != nil {
		return MoodEvent{}, err
	}
	c, err := mood.ParseHex(color)
	if err != nil {
		return MoodEvent{}, err
	}
	sc := mood.Score(score)
	if !sc.Valid() {
		return MoodEvent{}, fmt.Errorf("sentiment score out of range: %d", score)
	}
	return MoodEvent{Timestamp: ts, Color: c, Emotion: emotion, Score: sc, Note: note}, nil
}

func (s *SQLiteStore) dropRow(table string, id int64, err error) {
	s.log.Warn("skipping malformed row",
		zap.String("table", table),
		zap.Int64("id", id),
		zap.Error(err),
	)
}

// Stats returns aggregate statistics about both tables.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Backend: BackendSQLite}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activity_events").Scan(&stats.ActivityCount)
	if err != nil {
		return nil, fmt.Errorf("count activity: %w: %w", ErrStorage, err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mood_events").Scan(&stats.MoodCount)
	if err != nil {
		return nil, fmt.Errorf("count mood: %w: %w", ErrStorage, err)
	}

	if err := s.timeRange(ctx, stats); err != nil {
		return nil, fmt.Errorf("event time range: %w: %w", ErrStorage, err)
	}

	if stats.TopEmotions, err = s.topEmotions(ctx); err != nil {
		return nil, fmt.Errorf("top emotions: %w: %w", ErrStorage, err)
	}

	stats.SizeBytes = s.databaseSize(ctx)
	return stats, nil
}

// timeRange fills the oldest and newest timestamps. Stored timestamps carry
// offsets, so the range is computed in Go rather than with MIN/MAX over text.
func (s *SQLiteStore) timeRange(ctx context.Context, stats *Stats) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts FROM activity_events UNION ALL SELECT ts FROM mood_events
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tsStr string
		if err := rows.Scan(&tsStr); err != nil {
			return err
		}
		ts, err := parseTimestamp(tsStr)
		if err != nil {
			continue
		}
		if stats.OldestEvent.IsZero() || ts.Before(stats.OldestEvent) {
			stats.OldestEvent = ts
		}
		if ts.After(stats.NewestEvent) {
			stats.NewestEvent = ts
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) topEmotions(ctx context.Context) ([]EmotionCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT emotion, COUNT(*) AS cnt FROM mood_events
		WHERE emotion != ''
		GROUP BY emotion ORDER BY cnt DESC, emotion LIMIT ?
	`, topEmotionLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmotionCount
	for rows.Next() {
		var ec EmotionCount
		if err := rows.Scan(&ec.Emotion, &ec.Count); err != nil {
			return nil, err
		}
		out = append(out, ec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) databaseSize(ctx context.Context) int64 {
	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// Close releases all prepared statements. The underlying *sql.DB is
// closed only when the store opened it.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{
		s.insertActivity, s.insertMood, s.selectActivity, s.selectMood,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
