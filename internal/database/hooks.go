package database

import (
	"log/slog"
)

// SetupIndexes creates indexes that GORM can't express through struct tags
func (db *DB) SetupIndexes() error {
	slog.Info("Setting up additional database indexes")

	// Leaderboard reads sort the whole table by clicks
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_players_total_clicks
		ON players(total_clicks DESC)
	`).Error; err != nil {
		return err
	}

	slog.Info("Additional database indexes created successfully")
	return nil
}
