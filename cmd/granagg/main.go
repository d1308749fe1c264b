// Command granagg inspects and reads satellite granules aggregated along the
// in-track dimension.
package main

import (
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
)

var log = logging.Logger("granagg")

type rootFlags struct {
	profile     string
	logLevel    string
	format      string
	mmap        bool
	edr         bool
	inTrack     string
	geoInTrack  string
	crossTrack  string
	latitude    string
	variables   []string
	spliceCache int
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "granagg",
		Short: "Aggregate satellite granules along the in-track dimension",
		Long: `granagg presents a time-ordered list of granule files as one array per
variable. Granules are given as arguments in time order or listed in the
product profile.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setLog(f.logLevel)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.profile, "profile", "p", "", "product profile (YAML)")
	pf.StringVarP(&f.logLevel, "log-level", "l", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&f.format, "format", "", "granule format: nc4 or classic")
	pf.BoolVar(&f.mmap, "mmap", false, "map classic granule files into memory")
	pf.BoolVar(&f.edr, "edr", false, "cut fill scans out of EDR granules")
	pf.StringVar(&f.inTrack, "in-track", "", "in-track dimension name")
	pf.StringVar(&f.geoInTrack, "geo-in-track", "", "in-track dimension name of geolocation arrays")
	pf.StringVar(&f.crossTrack, "cross-track", "", "cross-track dimension name")
	pf.StringVar(&f.latitude, "latitude", "", "latitude array used to find fill scans")
	pf.StringSliceVar(&f.variables, "vars", nil, "only aggregate arrays whose names contain one of these")
	pf.IntVar(&f.spliceCache, "splice-cache", 0, "number of spliced granule arrays to cache")

	cmd.AddCommand(newCatalogCmd(f))
	cmd.AddCommand(newCutsCmd(f))
	cmd.AddCommand(newReadCmd(f))
	return cmd
}

func setLog(level string) error {
	if err := logging.SetLogLevel("*", level); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
