package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// OptimizeIndexes creates the read-path indexes used by the stats queries.
func OptimizeIndexes(db *gorm.DB) error {
	// Ticker first, then time: the stats query filters on both.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bars_ticker_starts
		ON bars (ticker, starts_at DESC)
	`).Error; err != nil {
		return fmt.Errorf("failed to create bars ticker index: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bars_ticker_high
		ON bars (ticker, high DESC)
		WHERE high IS NOT NULL
	`).Error; err != nil {
		return fmt.Errorf("failed to create bars high index: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bars_ticker_volume
		ON bars (ticker, volume DESC)
		WHERE volume IS NOT NULL
	`).Error; err != nil {
		return fmt.Errorf("failed to create bars volume index: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_ingest_runs_started
		ON ingest_runs (started_at DESC)
	`).Error; err != nil {
		return fmt.Errorf("failed to create ingest runs index: %w", err)
	}

	slog.Debug("Database indexes optimized")
	return nil
}
