package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viktsys/polycli/stream"
)

func newStreamCmd(a *app) *cobra.Command {
	var (
		cluster   string
		channels  []string
		maxEvents int
		streamURL string
	)

	cmd := &cobra.Command{
		Use:   "stream --subscribe T.AAPL,Q.AAPL",
		Short: "Print real-time events from the WebSocket feed",
		Long: fmt.Sprintf(`Connect to the real-time feed, subscribe to channels and print each event
as one line of JSON until interrupted.

Clusters: %s`, strings.Join(stream.Clusters, ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url := a.cfg.StreamURL
			if changed(cmd, "stream-url") {
				url = streamURL
			}

			client, err := stream.Dial(cmd.Context(), stream.Options{
				URL:              url,
				Cluster:          cluster,
				APIKey:           a.cfg.APIKey,
				HandshakeTimeout: a.cfg.Timeout,
				Logger:           a.logger,
			})
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Subscribe(channels...); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			seen := 0
			return client.Run(cmd.Context(), func(ev json.RawMessage) error {
				line, err := json.Marshal(ev)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(line))
				seen++
				if maxEvents > 0 && seen >= maxEvents {
					return stream.ErrStop
				}
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cluster, "cluster", "stocks", "feed cluster: "+strings.Join(stream.Clusters, ", "))
	flags.StringSliceVar(&channels, "subscribe", nil, "channels to subscribe to, e.g. T.AAPL,AM.*")
	flags.IntVar(&maxEvents, "max-events", 0, "exit after this many events (0 to run until interrupted)")
	flags.StringVar(&streamURL, "stream-url", "", "WebSocket base URL (default $POLYGON_STREAM_URL or wss://socket.polygon.io)")
	_ = cmd.MarkFlagRequired("subscribe")
	return cmd
}
