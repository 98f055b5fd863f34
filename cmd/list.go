package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/viktsys/polycli/commands"
)

func newListCmd(table commands.Table) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List every endpoint command with its usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "GROUP\tNAME\tUSAGE")
			n := 0
			for _, c := range table {
				if group != "" && c.Group != group {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Group, c.Name, c.Usage())
				n++
			}
			if n == 0 {
				return fmt.Errorf("no commands in group %q", group)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "only list commands in this group")
	return cmd
}
