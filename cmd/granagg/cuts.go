package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCutsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cuts [granule...]",
		Short: "Show the fill scans cut out of each granule",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := f.open(cmd, args)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			for g := 0; g < a.Granules(); g++ {
				ranges, cut, err := a.CutRanges(g)
				if err != nil {
					return err
				}
				if len(ranges) == 0 {
					fmt.Fprintf(out, "granule %d: no fill scans\n", g)
					continue
				}
				fmt.Fprintf(out, "granule %d: %d fill scans\n", g, cut)
				for _, r := range ranges {
					fmt.Fprintf(out, "  rows %d-%d columns %d-%d\n", r.Rows.First, r.Rows.Last, r.Columns.First, r.Columns.Last)
				}
			}
			return nil
		},
	}
}
