package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/viktsys/polycli/config"
	"github.com/viktsys/polycli/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store persists bars and ingest runs in Postgres.
type Store struct {
	db *gorm.DB
}

func DSN(cfg config.Database) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// Open connects, tunes the pool and migrates the schema.
func Open(cfg config.Database) (*Store, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(&models.Bar{}, &models.IngestRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := OptimizeIndexes(db); err != nil {
		slog.Warn("Failed to optimize indexes", "error", err)
	}

	slog.Info("Database connected and migrated", "host", cfg.Host, "name", cfg.Name)
	return NewStore(db), nil
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveBars upserts bars on (ticker, timespan, multiplier, starts_at) in a
// single transaction and returns the number of rows written.
func (s *Store) SaveBars(ctx context.Context, bars []models.Bar, batchSize int) (int64, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = len(bars)
	}

	var rows int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "ticker"}, {Name: "timespan"}, {Name: "multiplier"}, {Name: "starts_at"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"open", "high", "low", "close", "vwap", "volume", "transactions", "run_id",
			}),
		}).CreateInBatches(bars, batchSize)
		rows = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save %d bars: %w", len(bars), err)
	}
	return rows, nil
}

func (s *Store) SaveRun(ctx context.Context, run *models.IngestRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to save ingest run %s: %w", run.ID, err)
	}
	return nil
}

// Stats returns the highest high and volume for ticker since the given time.
func (s *Store) Stats(ctx context.Context, ticker string, since time.Time) (*models.BarStats, error) {
	stats := models.BarStats{Ticker: ticker}

	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(MAX(high), 0) AS max_high,
			COALESCE(MAX(volume), 0) AS max_volume,
			COUNT(*) AS bars
		FROM bars
		WHERE ticker = ? AND starts_at >= ?
	`, ticker, since).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	stats.Ticker = ticker
	return &stats, nil
}
