package main

import (
	"errors"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-granule/granule"
	"github.com/robert-malhotra/go-granule/profile"
)

var errNoGranules = errors.New("no granule files given")

// load reads the profile, if any, and applies the flags set on the command
// line over it.
func (f *rootFlags) load(cmd *cobra.Command) (*profile.Profile, error) {
	p := &profile.Profile{}
	if f.profile != "" {
		var err error
		if p, err = profile.Load(f.profile); err != nil {
			return nil, err
		}
	}

	fl := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if fl.Changed(name) {
			*dst = v
		}
	}
	set("format", &p.Format, f.format)
	set("in-track", &p.InTrackDim, f.inTrack)
	set("geo-in-track", &p.GeoInTrackDim, f.geoInTrack)
	set("cross-track", &p.CrossTrackDim, f.crossTrack)
	set("latitude", &p.Latitude, f.latitude)
	if fl.Changed("mmap") {
		p.Mmap = f.mmap
	}
	if fl.Changed("edr") {
		p.EDR = f.edr
	}
	if fl.Changed("vars") {
		p.Variables = f.variables
	}
	if fl.Changed("splice-cache") {
		p.SpliceCache = f.spliceCache
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// open aggregates the granule files named by args, or those of the profile.
func (f *rootFlags) open(cmd *cobra.Command, args []string) (*granule.Aggregation, error) {
	p, err := f.load(cmd)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(args))
	for i, arg := range args {
		if paths[i], err = homedir.Expand(arg); err != nil {
			return nil, err
		}
	}
	if len(paths) == 0 && len(p.Granules) == 0 {
		return nil, errNoGranules
	}
	log.Debugw("opening granules", "count", max(len(paths), len(p.Granules)), "format", p.Format)
	return p.Open(cmd.Context(), paths)
}
