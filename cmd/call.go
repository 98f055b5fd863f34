package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ParseFlags turns "--key value" and "--key=value" pairs into a map. A flag
// followed by another flag, or by nothing, is taken as "true". Later
// occurrences win.
func ParseFlags(args []string) (map[string]string, error) {
	values := make(map[string]string)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") || arg == "--" {
			return nil, fmt.Errorf("unexpected argument %q: expected --key value", arg)
		}

		key := strings.TrimPrefix(arg, "--")
		if k, v, ok := strings.Cut(key, "="); ok {
			if k == "" {
				return nil, fmt.Errorf("empty flag name in %q", arg)
			}
			values[k] = v
			continue
		}

		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
			values[key] = args[i+1]
			i++
		} else {
			values[key] = "true"
		}
	}
	return values, nil
}

// wantsHelp reports whether -h or --help appears anywhere in args.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help", "--help=true":
			return true
		}
	}
	return false
}

func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call <path> [--key value ...]",
		Short: "GET any API path, sending --key value pairs as query parameters",
		Long: `GET an arbitrary API path. Every --key value pair after the path becomes a
query parameter, except the global flags (--api-key, --output, --all, ...)
which keep their usual meaning.

  polycli call /v3/reference/tickers --market crypto --limit 5`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || wantsHelp(args) {
				return cmd.Help()
			}

			values, err := ParseFlags(args[1:])
			if err != nil {
				return err
			}

			// Flag parsing is off for this command, so apply globals by hand.
			globals := cmd.Root().PersistentFlags()
			for k, v := range values {
				f := globals.Lookup(k)
				if f == nil {
					continue
				}
				if err := f.Value.Set(v); err != nil {
					return fmt.Errorf("invalid value for --%s: %w", k, err)
				}
				f.Changed = true
				delete(values, k)
			}
			if err := a.loadConfig(cmd); err != nil {
				return err
			}

			path := args[0]
			if !strings.HasPrefix(path, "/") && !strings.Contains(path, "://") {
				path = "/" + path
			}
			body, err := a.fetch(cmd.Context(), path, values, true)
			if err != nil {
				return err
			}
			return a.printBody(cmd.OutOrStdout(), nil, body)
		},
	}
}
