package storage

import "database/sql"

// migrateV002 adds the sentiment score. Rows written before it read as
// neutral.
func migrateV002(tx *sql.Tx) error {
	stmts := []string{
		`ALTER TABLE mood_events ADD COLUMN sentiment_score INTEGER NOT NULL DEFAULT 0`,
		`CREATE INDEX IF NOT EXISTS idx_mood_events_emotion ON mood_events(emotion)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
