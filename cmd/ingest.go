package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/viktsys/polycli/database"
	"github.com/viktsys/polycli/ingest"
	"github.com/viktsys/polycli/polygon"
)

func newIngestCmd(a *app) *cobra.Command {
	var (
		tickers    []string
		multiplier int
		timespan   string
		from, to   string
		unadjusted bool
		workers    int
		batchSize  int
	)

	cmd := &cobra.Command{
		Use:   "ingest --tickers AAPL,MSFT --from <date> --to <date>",
		Short: "Fetch aggregate bars for tickers and store them in Postgres",
		Long: `Fetch aggregate bars for one or more tickers concurrently and upsert them
into Postgres. Connection settings come from the database block of the config
file or DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME and DB_SSLMODE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := polygon.ParseTimespan(timespan)
			if err != nil {
				return err
			}

			a.logger.Info("Initializing database...")
			store, err := database.Open(a.cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			processor := ingest.NewProcessor(a.client(), store).
				WithWorkers(workers).
				WithBatchSize(batchSize)

			summary, err := processor.Run(cmd.Context(), ingest.Request{
				Tickers:    tickers,
				Multiplier: multiplier,
				Timespan:   ts,
				From:       from,
				To:         to,
				Unadjusted: unadjusted,
			})
			if summary != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Ingested %d bars for %d tickers in %s (run %s)\n",
					summary.Rows, summary.Tickers-len(summary.Failed), summary.Duration.Round(time.Millisecond), summary.RunID)
				for ticker, ferr := range summary.Failed {
					fmt.Fprintf(out, "  failed %s: %v\n", ticker, ferr)
				}
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&tickers, "tickers", nil, "comma-separated tickers, e.g. AAPL,X:BTCUSD")
	flags.IntVar(&multiplier, "multiplier", 1, "timespan multiplier")
	flags.StringVar(&timespan, "timespan", string(polygon.Day), "bar size: minute, hour, day, ...")
	flags.StringVar(&from, "from", "", "start of the range, YYYY-MM-DD")
	flags.StringVar(&to, "to", "", "end of the range, YYYY-MM-DD")
	flags.BoolVar(&unadjusted, "unadjusted", false, "store bars without split adjustment")
	flags.IntVar(&workers, "workers", 0, "tickers fetched concurrently (default $INGEST_WORKERS or 4)")
	flags.IntVar(&batchSize, "batch-size", 0, "rows per insert batch (default $BATCH_SIZE or 2000)")
	_ = cmd.MarkFlagRequired("tickers")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
