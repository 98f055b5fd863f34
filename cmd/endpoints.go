package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viktsys/polycli/commands"
)

func addEndpointCommands(root *cobra.Command, a *app, table commands.Table) {
	for _, group := range table.Groups() {
		root.AddGroup(&cobra.Group{ID: group, Title: groupTitle(group)})
	}
	for _, endpoint := range table {
		root.AddCommand(newEndpointCmd(a, endpoint))
	}
}

func groupTitle(group string) string {
	return strings.ToUpper(group[:1]) + group[1:] + " Commands:"
}

// newEndpointCmd builds a subcommand whose flags are the endpoint's params.
func newEndpointCmd(a *app, endpoint commands.Command) *cobra.Command {
	values := make(map[string]*string, len(endpoint.Params))

	long := fmt.Sprintf("%s.\n\nEndpoint: GET %s", endpoint.Short, endpoint.Path)
	if endpoint.Paginated {
		long += "\n\nResults are paginated; pass --all to fetch every page."
	}

	cmd := &cobra.Command{
		Use:     strings.TrimSpace(endpoint.Name + " " + endpoint.Usage()),
		Short:   endpoint.Short,
		Long:    long,
		GroupID: endpoint.Group,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := make(map[string]string, len(values))
			for name, v := range values {
				if *v != "" {
					raw[name] = *v
				}
			}
			return a.callEndpoint(cmd.Context(), cmd.OutOrStdout(), endpoint, raw)
		},
	}

	for _, p := range endpoint.Params {
		values[p.Name] = cmd.Flags().String(p.Name, p.Default, p.Usage)
		if p.Required && p.Default == "" {
			_ = cmd.MarkFlagRequired(p.Name)
		}
	}
	return cmd
}

func (a *app) callEndpoint(ctx context.Context, w io.Writer, endpoint commands.Command, values map[string]string) error {
	path, query, err := endpoint.Resolve(values)
	if err != nil {
		return err
	}

	a.logger.Debug("Calling endpoint", "command", endpoint.Name, "path", path, "query", query)
	body, err := a.fetch(ctx, path, query, endpoint.Paginated)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint.Name, err)
	}
	return a.printBody(w, endpoint.Columns, body)
}
