// Package cmd wires the polycli command tree: one subcommand per API
// endpoint plus the stream, ingest, server and call utilities.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/viktsys/polycli/commands"
	"github.com/viktsys/polycli/config"
	"github.com/viktsys/polycli/output"
	"github.com/viktsys/polycli/polygon"
)

type rootOptions struct {
	configFile string
	apiKey     string
	baseURL    string
	output     string
	logLevel   string
	logFormat  string
	timeout    time.Duration
	retries    int
	rateLimit  int
	all        bool
	maxPages   int
}

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	opts   rootOptions
	cfg    *config.Config
	logger *slog.Logger
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCMD := &cobra.Command{
		Use:   "polycli",
		Short: "Polygon.io market data from the command line",
		Long: `A CLI for the Polygon.io market data REST API.

Every endpoint command maps its flags onto the request path and query string
and prints the JSON response. Stocks, crypto, forex and options bars, trades,
quotes and snapshots are covered, along with technical indicators and
reference data.

Configuration is loaded from (in order of precedence):
  1. Command-line flags
  2. Environment (POLYGON_API_KEY, POLYGON_BASE_URL, DB_HOST, ...)
  3. The --config file, or $HOME/.polycli.hcl when present`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	flags := rootCMD.PersistentFlags()
	flags.StringVar(&a.opts.configFile, "config", "", "config file (default $HOME/.polycli.hcl)")
	flags.StringVar(&a.opts.apiKey, "api-key", "", "Polygon API key (default $POLYGON_API_KEY)")
	flags.StringVar(&a.opts.baseURL, "base-url", "", "REST API base URL")
	flags.StringVarP(&a.opts.output, "output", "o", "", "output format: json, table or csv")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.opts.logFormat, "log-format", "", "log format: text or json")
	flags.DurationVar(&a.opts.timeout, "timeout", 0, "HTTP request timeout (default 30s)")
	flags.IntVar(&a.opts.retries, "retries", 0, "retries on transient failures (default 2)")
	flags.IntVar(&a.opts.rateLimit, "rate-limit", 0, "max requests per minute, 0 for unlimited")
	flags.BoolVar(&a.opts.all, "all", false, "follow next_url and merge every page")
	flags.IntVar(&a.opts.maxPages, "max-pages", 0, "with --all, stop after this many pages (0 for no limit)")

	addEndpointCommands(rootCMD, a, commands.Default())
	rootCMD.AddCommand(
		newCallCmd(a),
		newStreamCmd(a),
		newIngestCmd(a),
		newServerCmd(a),
		newListCmd(commands.Default()),
	)
	return rootCMD
}

// Execute runs the command tree, cancelling the context on SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(a.opts.configFile)
	if err != nil {
		return err
	}

	if changed(cmd, "api-key") {
		cfg.APIKey = a.opts.apiKey
	}
	if changed(cmd, "base-url") {
		cfg.BaseURL = a.opts.baseURL
	}
	if changed(cmd, "output") {
		cfg.Output = a.opts.output
	}
	if changed(cmd, "log-level") {
		cfg.LogLevel = a.opts.logLevel
	}
	if changed(cmd, "log-format") {
		cfg.LogFormat = a.opts.logFormat
	}
	if changed(cmd, "timeout") {
		cfg.Timeout = a.opts.timeout
	}
	if changed(cmd, "retries") {
		cfg.Retries = a.opts.retries
	}
	if changed(cmd, "rate-limit") {
		cfg.RateLimit = a.opts.rateLimit
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(a.logger)
	a.logger.Debug("Configuration loaded", "base_url", cfg.BaseURL, "output", cfg.Output, "rate_limit", cfg.RateLimit)
	return nil
}

func (a *app) client() *polygon.Client {
	return polygon.NewClient(polygon.Options{
		APIKey:    a.cfg.APIKey,
		BaseURL:   a.cfg.BaseURL,
		Timeout:   a.cfg.Timeout,
		Retries:   a.cfg.Retries,
		RateLimit: a.cfg.RateLimit,
		Logger:    a.logger,
	})
}

func (a *app) fetch(ctx context.Context, path string, query map[string]string, paginated bool) (json.RawMessage, error) {
	client := a.client()
	if a.opts.all && paginated {
		return client.GetAll(ctx, path, query, a.opts.maxPages)
	}
	return client.Get(ctx, path, query)
}

func (a *app) printBody(w io.Writer, columns []string, body json.RawMessage) error {
	format, err := output.ParseFormat(a.cfg.Output)
	if err != nil {
		return err
	}
	return output.New(w, format, columns).Print(body)
}
