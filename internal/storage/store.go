package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Store defines the interface for the activity and mood logs.
//
// Appends are durable once they return. Loads return every well-formed
// event in stored order; a log that does not exist yet loads as empty.
type Store interface {
	AppendActivity(ctx context.Context, e ActivityEvent) error
	AppendMood(ctx context.Context, e MoodEvent) error
	LoadActivity(ctx context.Context) ([]ActivityEvent, error)
	LoadMood(ctx context.Context) ([]MoodEvent, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config selects and locates a backend.
type Config struct {
	Backend      string
	Dir          string
	ActivityFile string
	MoodFile     string
	SQLiteFile   string
}

// Open returns the Store described by cfg, creating its directory if needed.
func Open(cfg Config, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w: %w", ErrStorage, err)
	}

	switch cfg.Backend {
	case BackendCSV, "":
		return NewCSVStore(
			filepath.Join(cfg.Dir, cfg.ActivityFile),
			filepath.Join(cfg.Dir, cfg.MoodFile),
			log,
		), nil
	case BackendSQLite:
		return OpenSQLite(filepath.Join(cfg.Dir, cfg.SQLiteFile), log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// ImportResult reports how many events Import copied.
type ImportResult struct {
	Activity int
	Mood     int
}

// Import copies every event readable from src into dst, in stored order.
// It is not idempotent: running it twice appends twice.
func Import(ctx context.Context, src, dst Store) (ImportResult, error) {
	var res ImportResult

	activity, err := src.LoadActivity(ctx)
	if err != nil {
		return res, fmt.Errorf("load activity: %w", err)
	}
	moods, err := src.LoadMood(ctx)
	if err != nil {
		return res, fmt.Errorf("load mood: %w", err)
	}

	for _, e := range activity {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := dst.AppendActivity(ctx, e); err != nil {
			return res, fmt.Errorf("append activity: %w", err)
		}
		res.Activity++
	}
	for _, e := range moods {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := dst.AppendMood(ctx, e); err != nil {
			return res, fmt.Errorf("append mood: %w", err)
		}
		res.Mood++
	}
	return res, nil
}
