package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCatalogCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [granule...]",
		Short: "List the aggregated arrays",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := f.open(cmd, args)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d granules\n", a.Granules())
			for _, name := range a.Variables() {
				dims, err := a.DimensionNames(name)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", name, err)
					continue
				}
				lengths, _ := a.DimensionLengths(name)
				typ, _ := a.ArrayType(name)
				local, _ := a.LocalLengths(name)

				shape := make([]string, len(dims))
				for i, d := range dims {
					shape[i] = fmt.Sprintf("%s=%d", d, lengths[i])
				}
				fmt.Fprintf(out, "%s %s(%s) granules %v\n", name, typ, strings.Join(shape, ", "), local)
			}
			for _, qf := range a.QualityFlags() {
				fmt.Fprintf(out, "%s flag of %s bits %d-%d\n", qf.Name, qf.Packed, qf.Offset, qf.Offset+qf.Width-1)
			}
			return nil
		},
	}
}
