package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/viktsys/polycli/models"
	"github.com/viktsys/polycli/polygon"
	"golang.org/x/sync/errgroup"
)

const (
	// Default values - can be overridden by environment variables
	DefaultBatchSize   = 2000
	DefaultWorkerCount = 4
)

var ErrAllFailed = errors.New("every ticker failed")

// getEnvInt returns environment variable as int or default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Fetcher is the slice of the API client the processor needs.
type Fetcher interface {
	Aggregates(ctx context.Context, p polygon.AggsParams) (*polygon.AggsResponse, error)
}

type Store interface {
	SaveBars(ctx context.Context, bars []models.Bar, batchSize int) (int64, error)
	SaveRun(ctx context.Context, run *models.IngestRun) error
}

type Request struct {
	Tickers    []string
	Multiplier int
	Timespan   polygon.Timespan
	From       string
	To         string
	Unadjusted bool
}

type Summary struct {
	RunID    uuid.UUID
	Tickers  int
	Rows     int64
	Failed   map[string]error
	Duration time.Duration
}

type Processor struct {
	fetcher   Fetcher
	store     Store
	workers   int
	batchSize int
	rows      int64
	logger    *slog.Logger
}

func NewProcessor(fetcher Fetcher, store Store) *Processor {
	return &Processor{
		fetcher:   fetcher,
		store:     store,
		workers:   getEnvInt("INGEST_WORKERS", DefaultWorkerCount),
		batchSize: getEnvInt("BATCH_SIZE", DefaultBatchSize),
		logger:    slog.Default(),
	}
}

// WithWorkers overrides the number of tickers fetched concurrently.
func (p *Processor) WithWorkers(n int) *Processor {
	if n > 0 {
		p.workers = n
	}
	return p
}

func (p *Processor) WithBatchSize(n int) *Processor {
	if n > 0 {
		p.batchSize = n
	}
	return p
}

// Run fetches and stores bars for every ticker in req. A failing ticker is
// recorded in the summary and does not stop the others; Run only fails when
// all of them do, or when ctx is cancelled.
func (p *Processor) Run(ctx context.Context, req Request) (*Summary, error) {
	tickers := normalizeTickers(req.Tickers)
	if len(tickers) == 0 {
		return nil, errors.New("no tickers to ingest")
	}

	startTime := time.Now()
	run := &models.IngestRun{
		ID:         uuid.New(),
		Tickers:    strings.Join(tickers, ","),
		Timespan:   string(req.Timespan),
		Multiplier: req.Multiplier,
		From:       req.From,
		To:         req.To,
		StartedAt:  startTime.UTC(),
	}
	logger := p.logger.With("run_id", run.ID)
	logger.Info("Starting ingest", "tickers", len(tickers), "workers", p.workers, "batch_size", p.batchSize)
	atomic.StoreInt64(&p.rows, 0)

	var mu sync.Mutex
	failed := make(map[string]error)

	var g errgroup.Group
	g.SetLimit(p.workers)
	for _, ticker := range tickers {
		g.Go(func() error {
			tickerStart := time.Now()
			n, err := p.ingestTicker(ctx, run.ID, ticker, req)
			if err != nil {
				logger.Error("Ticker failed", "ticker", ticker, "error", err)
				mu.Lock()
				failed[ticker] = err
				mu.Unlock()
				return nil
			}
			logger.Info("Ticker ingested", "ticker", ticker, "rows", n, "took", time.Since(tickerStart))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := atomic.LoadInt64(&p.rows)
	run.Rows = rows
	run.Failed = len(failed)
	run.FinishedAt = time.Now().UTC()
	if err := p.store.SaveRun(ctx, run); err != nil {
		logger.Warn("Could not record ingest run", "error", err)
	}

	summary := &Summary{
		RunID:    run.ID,
		Tickers:  len(tickers),
		Rows:     rows,
		Failed:   failed,
		Duration: time.Since(startTime),
	}
	logger.Info("Ingest finished", "rows", rows, "failed", len(failed), "took", summary.Duration)

	if len(failed) == len(tickers) {
		return summary, fmt.Errorf("%w: %s", ErrAllFailed, summary.FailedTickers())
	}
	return summary, nil
}

func (p *Processor) ingestTicker(ctx context.Context, runID uuid.UUID, ticker string, req Request) (int64, error) {
	res, err := p.fetcher.Aggregates(ctx, polygon.AggsParams{
		Ticker:     ticker,
		Multiplier: req.Multiplier,
		Timespan:   req.Timespan,
		From:       req.From,
		To:         req.To,
		Unadjusted: req.Unadjusted,
		Sort:       "asc",
		Limit:      50000,
	})
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	bars := models.BarsFromAggs(ticker, req.Multiplier, req.Timespan, res.Results)
	for i := range bars {
		bars[i].RunID = runID
	}

	n, err := p.store.SaveBars(ctx, bars, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("store %s: %w", ticker, err)
	}
	atomic.AddInt64(&p.rows, n)
	return n, nil
}

// FailedTickers lists the failed tickers in sorted order.
func (s *Summary) FailedTickers() string {
	names := make([]string, 0, len(s.Failed))
	for t := range s.Failed {
		names = append(names, t)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func normalizeTickers(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
