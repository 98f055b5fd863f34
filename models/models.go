package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viktsys/polycli/polygon"
)

// Bar is one persisted OHLCV aggregate
type Bar struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Ticker       string          `gorm:"size:32;uniqueIndex:uidx_bar_key" json:"ticker"`
	Timespan     string          `gorm:"size:10;uniqueIndex:uidx_bar_key" json:"timespan"`
	Multiplier   int             `gorm:"uniqueIndex:uidx_bar_key" json:"multiplier"`
	StartsAt     time.Time       `gorm:"uniqueIndex:uidx_bar_key" json:"starts_at"`
	Open         decimal.Decimal `gorm:"type:numeric(20,6)" json:"open"`
	High         decimal.Decimal `gorm:"type:numeric(20,6)" json:"high"`
	Low          decimal.Decimal `gorm:"type:numeric(20,6)" json:"low"`
	Close        decimal.Decimal `gorm:"type:numeric(20,6)" json:"close"`
	VWAP         decimal.Decimal `gorm:"type:numeric(20,6)" json:"vwap"`
	Volume       decimal.Decimal `gorm:"type:numeric(28,8)" json:"volume"`
	Transactions int64           `json:"transactions"`
	RunID        uuid.UUID       `gorm:"type:uuid;index" json:"run_id"`
	CreatedAt    time.Time       `json:"created_at"`
}

// IngestRun records one ingest invocation
type IngestRun struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Tickers    string    `json:"tickers"`
	Timespan   string    `gorm:"size:10" json:"timespan"`
	Multiplier int       `json:"multiplier"`
	From       string    `gorm:"size:32" json:"from"`
	To         string    `gorm:"size:32" json:"to"`
	Rows       int64     `json:"rows"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// BarStats is what the stats API returns for a ticker
type BarStats struct {
	Ticker    string          `json:"ticker"`
	MaxHigh   decimal.Decimal `json:"max_high"`
	MaxVolume decimal.Decimal `json:"max_volume"`
	Bars      int64           `json:"bars"`
}

func BarFromAgg(ticker string, multiplier int, timespan polygon.Timespan, agg polygon.Agg) Bar {
	return Bar{
		Ticker:       ticker,
		Timespan:     string(timespan),
		Multiplier:   multiplier,
		StartsAt:     agg.Time(),
		Open:         decimal.NewFromFloat(agg.Open),
		High:         decimal.NewFromFloat(agg.High),
		Low:          decimal.NewFromFloat(agg.Low),
		Close:        decimal.NewFromFloat(agg.Close),
		VWAP:         decimal.NewFromFloat(agg.VWAP),
		Volume:       decimal.NewFromFloat(agg.Volume),
		Transactions: agg.Transactions,
	}
}

func BarsFromAggs(ticker string, multiplier int, timespan polygon.Timespan, aggs []polygon.Agg) []Bar {
	bars := make([]Bar, 0, len(aggs))
	for _, agg := range aggs {
		bars = append(bars, BarFromAgg(ticker, multiplier, timespan, agg))
	}
	return bars
}
