package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/runnerr0/moodlens/internal/aggregate"
	"github.com/runnerr0/moodlens/internal/config"
	"github.com/runnerr0/moodlens/internal/insight"
	"github.com/runnerr0/moodlens/internal/logging"
	"github.com/runnerr0/moodlens/internal/storage"
)

// session is what a command runs against once the config is loaded.
type session struct {
	cfg     *config.Config
	log     *zap.Logger
	store   storage.Store
	dataDir string
}

// openSession loads the config named by the global flags (creating it with
// defaults on first use), builds the logger and opens the configured store.
// The returned func releases all three.
func openSession(globals *GlobalFlags) (*session, func(), error) {
	cfgPath, err := config.ResolvePath(globals.Config)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadOrCreateAt(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	logCfg := cfg.Logging
	if globals.Verbose {
		logCfg.Level = "debug"
	}
	log, closeLog, err := logging.New(logCfg, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	storeCfg, err := storageConfig(cfg)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	store, err := storage.Open(storeCfg, log)
	if err != nil {
		closeLog()
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	sess := &session{cfg: cfg, log: log, store: store, dataDir: storeCfg.Dir}
	done := func() {
		if err := store.Close(); err != nil {
			log.Warn("closing store", zap.Error(err))
		}
		closeLog()
	}
	return sess, done, nil
}

func storageConfig(cfg *config.Config) (storage.Config, error) {
	dir, err := cfg.Storage.Dir()
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{
		Backend:      strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)),
		Dir:          dir,
		ActivityFile: cfg.Storage.ActivityFile,
		MoodFile:     cfg.Storage.MoodFile,
		SQLiteFile:   cfg.Storage.SQLiteFile,
	}, nil
}

// resolveTimeframe prefers the flag value and falls back to the config.
func resolveTimeframe(flag string, cfg *config.Config) (aggregate.Timeframe, error) {
	if flag == "" {
		flag = cfg.Analysis.Timeframe
	}
	return aggregate.ParseTimeframe(flag)
}

// parseContamination reads "auto", a share in [0,0.5], or "" for def.
func parseContamination(s string, def float64) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return def, nil
	case "auto":
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 0.5 {
		return 0, fmt.Errorf("invalid contamination %q (want auto or a value within [0,0.5])", s)
	}
	return v, nil
}

func conclusionSettings(cfg *config.Config) insight.Settings {
	return insight.Settings{
		MinSubmissions:    cfg.Conclusion.MinSubmissions,
		PositiveThreshold: cfg.Conclusion.PositiveThreshold,
		NegativeThreshold: cfg.Conclusion.NegativeThreshold,
	}
}

type verdictJSON struct {
	Kind       string  `json:"kind"`
	Message    string  `json:"message"`
	Mean       float64 `json:"mean"`
	Considered int     `json:"considered"`
}

func newVerdictJSON(v insight.Verdict) verdictJSON {
	return verdictJSON{Kind: v.Kind.String(), Message: v.Message, Mean: v.Mean, Considered: v.Considered}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatScore(v float64) string {
	return fmt.Sprintf("%+.2f", v)
}
