package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-granule/source/classic"
)

func writeGranule(t *testing.T, path string, rows int, base float32, fillRows ...int) {
	t.Helper()
	rad := make([]float32, rows*3)
	for i := range rad {
		rad[i] = base + float32(i)
	}
	lat := make([]float32, rows*3)
	for _, r := range fillRows {
		for c := 0; c < 3; c++ {
			lat[r*3+c] = -999
		}
	}
	require.NoError(t, classic.Create(path, []classic.Array{
		{Name: "Radiance", Dims: []string{"Track", "XTrack"}, Lengths: []int{rows, 3}, Values: rad},
		{Name: "Latitude", Dims: []string{"Track", "XTrack"}, Lengths: []int{rows, 3}, Values: lat},
	}, nil))
}

func granules(t *testing.T) []string {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "g0.nc"), filepath.Join(dir, "g1.nc")}
	writeGranule(t, paths[0], 4, 0, 2)
	writeGranule(t, paths[1], 3, 100)
	return paths
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalog(t *testing.T) {
	paths := granules(t)

	out, err := run(t, append([]string{"catalog", "--format", "classic"}, paths...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "2 granules\n")
	assert.Contains(t, out, "Radiance float32(Track=7, XTrack=3) granules [4 3]\n")

	out, err = run(t, append([]string{"catalog", "--format", "classic", "--edr", "--mmap"}, paths...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Radiance float32(Track=6, XTrack=3) granules [3 3]\n")
}

func TestCuts(t *testing.T) {
	paths := granules(t)

	out, err := run(t, append([]string{"cuts", "--format", "classic", "--edr"}, paths...)...)
	require.NoError(t, err)
	assert.Equal(t, "granule 0: 1 fill scans\n"+
		"  rows 0-1 columns 0-2\n"+
		"  rows 3-3 columns 0-2\n"+
		"granule 1: no fill scans\n", out)
}

func TestRead(t *testing.T) {
	paths := granules(t)
	base := []string{"read", "--format", "classic", "--edr", "--var", "Radiance"}

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "summary",
			args:     []string{"--start", "2,0", "--count", "2,1"},
			expected: "Radiance float32 shape [2 1]: 2 values, 2 valid, min 9 max 100 mean 54.5\n",
		},
		{
			name:     "raw",
			args:     []string{"--start", "0,1", "--count", "3,1", "--stride", "2,1", "--raw"},
			expected: "[1 10 104]\n",
		},
		{
			name:     "whole array",
			args:     []string{"--stride", "3,3"},
			expected: "Radiance float32 shape [2 1]: 2 values, 2 valid, min 0 max 100 mean 50\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append(append([]string{}, base...), tt.args...), paths...)
			out, err := run(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestReadToFile(t *testing.T) {
	paths := granules(t)
	dest := filepath.Join(t.TempDir(), "slab.nc")

	out, err := run(t, append([]string{"read", "--format", "classic", "-v", "Radiance", "--count", "2,3", "-o", dest}, paths...)...)
	require.NoError(t, err)
	assert.Equal(t, "wrote 6 values to "+dest+"\n", out)

	g, err := classic.Open(dest)
	require.NoError(t, err)
	defer g.Close()
	vals, err := g.ReadRange("Radiance", []int{0, 0}, []int{2, 3}, []int{1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 2, 3, 4, 5}, vals)
}

func TestErrors(t *testing.T) {
	paths := granules(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no granules", []string{"catalog"}},
		{"bad format", append([]string{"catalog", "--format", "grib"}, paths...)},
		{"bad log level", append([]string{"catalog", "--log-level", "loud"}, paths...)},
		{"missing profile", append([]string{"catalog", "--profile", filepath.Join(t.TempDir(), "none.yaml")}, paths...)},
		{"unknown array", append([]string{"read", "--format", "classic", "--var", "Missing"}, paths...)},
		{"missing var flag", append([]string{"read", "--format", "classic"}, paths...)},
		{"out of range", append([]string{"read", "--format", "classic", "--var", "Radiance", "--start", "6,0", "--count", "2,1"}, paths...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
