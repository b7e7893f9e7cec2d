package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBackendsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the configured engine backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd, nil)
			if err != nil {
				return err
			}
			s, err := newSolver(cfg, g.log, nil)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tNATIVE\tINTERRUPTIBLE\tDESCRIPTION")
			for _, b := range s.Backends() {
				fmt.Fprintf(tw, "%s\t%t\t%t\t%s\n", b.Name, b.NativeOptimize, b.Interruptible, b.Description)
			}
			return tw.Flush()
		},
	}
}
