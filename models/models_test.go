package models

import (
	"testing"
	"time"

	"github.com/viktsys/polycli/polygon"
)

func TestBarFromAgg(t *testing.T) {
	agg := polygon.Agg{
		Open:         185.1,
		High:         186.74,
		Low:          183.43,
		Close:        185.64,
		Volume:       82488674,
		VWAP:         185.2,
		Timestamp:    1704171600000,
		Transactions: 1008871,
	}

	bar := BarFromAgg("AAPL", 1, polygon.Day, agg)

	if bar.Ticker != "AAPL" {
		t.Errorf("Expected ticker AAPL, got %s", bar.Ticker)
	}

	if bar.Timespan != "day" || bar.Multiplier != 1 {
		t.Errorf("Expected 1 day bar, got %d %s", bar.Multiplier, bar.Timespan)
	}

	expected := time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC)
	if !bar.StartsAt.Equal(expected) {
		t.Errorf("Expected start %v, got %v", expected, bar.StartsAt)
	}

	if bar.High.String() != "186.74" {
		t.Errorf("Expected high 186.74, got %s", bar.High)
	}

	if bar.Volume.IntPart() != 82488674 {
		t.Errorf("Expected volume 82488674, got %s", bar.Volume)
	}

	if bar.Transactions != 1008871 {
		t.Errorf("Expected 1008871 transactions, got %d", bar.Transactions)
	}
}

func TestBarsFromAggsFractionalVolume(t *testing.T) {
	aggs := []polygon.Agg{
		{Open: 42000.5, High: 42100, Low: 41900, Close: 42050.25, Volume: 12.34567891, Timestamp: 1704067200000},
		{Open: 42050.25, High: 42200, Low: 42000, Close: 42150, Volume: 0.5, Timestamp: 1704070800000},
	}

	bars := BarsFromAggs("X:BTCUSD", 1, polygon.Hour, aggs)
	if len(bars) != 2 {
		t.Fatalf("Expected 2 bars, got %d", len(bars))
	}

	if bars[0].Volume.String() != "12.34567891" {
		t.Errorf("Expected volume 12.34567891, got %s", bars[0].Volume)
	}

	if !bars[1].StartsAt.After(bars[0].StartsAt) {
		t.Errorf("Expected bars in time order, got %v then %v", bars[0].StartsAt, bars[1].StartsAt)
	}
}

func TestBarStats(t *testing.T) {
	stats := BarStats{Ticker: "PETR4", Bars: 5}

	if stats.Ticker != "PETR4" {
		t.Errorf("Expected ticker PETR4, got %s", stats.Ticker)
	}

	if !stats.MaxHigh.IsZero() {
		t.Errorf("Expected zero max high, got %s", stats.MaxHigh)
	}
}
