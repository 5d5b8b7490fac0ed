package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:      "csv",
			Path:         "~/.config/moodlens",
			ActivityFile: "activity_data.csv",
			MoodFile:     "subjective_data.csv",
			SQLiteFile:   "moodlens.db",
		},
		Sampler: SamplerConfig{
			IntervalSeconds:        10,
			SampleWindowMS:         1000,
			ActiveThresholdPercent: 5,
			ActiveTag:              "Computer Active",
			IdleTag:                "Computer Idle",
		},
		Analysis: AnalysisConfig{
			Timeframe:     "week",
			Contamination: 0,
			Trees:         100,
			SampleSize:    256,
			Seed:          42,
		},
		Conclusion: ConclusionConfig{
			MinSubmissions:    3,
			PositiveThreshold: 0.5,
			NegativeThreshold: -0.5,
		},
		Reminder: ReminderConfig{
			Enabled: false,
			Time:    "20:00",
			Days:    []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
		},
		Daemon: DaemonConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8721,
		},
		Logging: LoggingConfig{
			Level:  "info",
			File:   "",
			Format: "console",
		},
	}
}
