package ntfp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, MollweideWkt, cfg.TargetWkt)
	assert.Equal(t, DefaultPixelSize, cfg.PixelSize)
	assert.Equal(t, DefaultBufferDistance, cfg.BufferDistance)
	assert.Equal(t, MollweideWorldExtent, cfg.TargetExtent)
	assert.Equal(t, "2019", cfg.Columns.Year)
}

func TestConfigValidate(t *testing.T) {
	valid := testConfig(t.TempDir())
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "missing lulc",
			mutate:  func(c *Config) { c.Lulc = "" },
			wantErr: ErrMissingInput,
		},
		{
			name:    "missing work dir",
			mutate:  func(c *Config) { c.WorkDir = "" },
			wantErr: ErrMissingInput,
		},
		{
			name:    "missing value table",
			mutate:  func(c *Config) { c.ValueTable = "" },
			wantErr: ErrMissingInput,
		},
		{
			name:    "missing target wkt",
			mutate:  func(c *Config) { c.TargetWkt = "" },
			wantErr: ErrMissingInput,
		},
		{
			name:    "zero pixel size",
			mutate:  func(c *Config) { c.PixelSize = 0 },
			wantErr: ErrBadPixelSize,
		},
		{
			name:    "negative buffer distance",
			mutate:  func(c *Config) { c.BufferDistance = -1 },
			wantErr: ErrBadBufferDistance,
		},
		{
			name:    "short extent",
			mutate:  func(c *Config) { c.TargetExtent = []float64{0, 0, 1} },
			wantErr: ErrBadTargetExtent,
		},
		{
			name:    "inverted extent",
			mutate:  func(c *Config) { c.TargetExtent = []float64{10, 0, -10, 5} },
			wantErr: ErrBadTargetExtent,
		},
		{
			name:    "missing join column",
			mutate:  func(c *Config) { c.Columns.CountryLabel = "" },
			wantErr: ErrMissingInput,
		},
		{
			name:    "missing year column",
			mutate:  func(c *Config) { c.Columns.Year = "" },
			wantErr: ErrMissingInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t.TempDir())
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestArtifactPaths(t *testing.T) {
	cfg := testConfig("/data/run1")
	assert.Equal(t, "/data/run1/lulc_forest_50_90.tif", cfg.artifact(ForestMaskTif))
	assert.Equal(t, "/data/run1/forest_area_value_by_country.csv", cfg.artifact(OutputValueCsv))
}
