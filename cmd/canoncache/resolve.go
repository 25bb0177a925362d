package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve PATH...",
		Short: "Print the canonical form of each path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, p := range args {
				canonical, err := a.canon.Canonicalize(p)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", p, canonical)
			}
			return w.Flush()
		},
	}
}
