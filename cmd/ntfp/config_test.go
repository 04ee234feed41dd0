package main

import (
	"os"
	"path/filepath"
	"testing"

	ntfp "github.com/Observarun/geo-ntfp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipelineFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.String("config", "", "")
	f.String("work-dir", "", "")
	f.String("lulc", "", "")
	f.String("value-table", "", "")
	f.Float64("pixel-size", ntfp.DefaultPixelSize, "")
	f.Float64("buffer-distance", ntfp.DefaultBufferDistance, "")
	f.String("year", ntfp.DefaultColumns.Year, "")
	return f
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(pipelineFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, ntfp.MollweideWkt, cfg.TargetWkt)
	assert.Equal(t, ntfp.DefaultPixelSize, cfg.PixelSize)
	assert.Equal(t, ntfp.DefaultBufferDistance, cfg.BufferDistance)
	assert.Equal(t, ntfp.DefaultColumns, cfg.Columns)
	assert.Len(t, cfg.TargetExtent, 4)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "ntfp.yaml")
	yaml := `
work_dir: /data/run1
lulc: /data/lulc.tif
buffer_distance: 5000
columns:
  year: "2015"
`
	require.NoError(t, os.WriteFile(cfgFile, []byte(yaml), 0o644))

	cfg, err := loadConfig(pipelineFlags(t), cfgFile)
	require.NoError(t, err)
	assert.Equal(t, "/data/run1", cfg.WorkDir)
	assert.Equal(t, "/data/lulc.tif", cfg.Lulc)
	assert.Equal(t, 5000.0, cfg.BufferDistance)
	assert.Equal(t, "2015", cfg.Columns.Year)
	assert.Equal(t, ntfp.DefaultPixelSize, cfg.PixelSize, "unset keys keep defaults")
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "ntfp.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("buffer_distance: 5000\n"), 0o644))

	flags := pipelineFlags(t)
	require.NoError(t, flags.Parse([]string{
		"--buffer-distance", "2500",
		"--value-table", "/data/values.csv",
		"--year", "2020",
	}))

	cfg, err := loadConfig(flags, cfgFile)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, cfg.BufferDistance, "explicit flags beat the file")
	assert.Equal(t, "/data/values.csv", cfg.ValueTable)
	assert.Equal(t, "2020", cfg.Columns.Year, "--year maps to columns.year")
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("NTFP_PIXEL_SIZE", "150")
	t.Setenv("NTFP_COLUMNS__YEAR", "2010")

	cfg, err := loadConfig(pipelineFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, 150.0, cfg.PixelSize)
	assert.Equal(t, "2010", cfg.Columns.Year)
}
