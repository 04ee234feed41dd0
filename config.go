package ntfp

import (
	"fmt"
	"path/filepath"
)

const (
	FILE_EXT_GPKG = ".gpkg"

	SHP_DRIVER_NAME  = "ESRI Shapefile"
	GPKG_DRIVER_NAME = "GPKG"

	// Forest class interval of the LULC classification. Everything in
	// [ForestClassMin, ForestClassMax] counts as forest.
	ForestClassMin = 50
	ForestClassMax = 90

	ForestNodata = 0

	DefaultPixelSize      = 300.0
	DefaultBufferDistance = 10000.0
	BufferQuadSegs        = 30

	HectareInSqUnits = 10000.0

	// Stage artifacts, fixed names under the work dir.
	ForestMaskTif     = "lulc_forest_50_90.tif"
	ForestProjTif     = "forest_proj.tif"
	RoadsProjGpkg     = "roads_proj.gpkg"
	RiversProjGpkg    = "rivers_proj.gpkg"
	CountriesProjGpkg = "countries_proj.gpkg"
	RoadsBufferGpkg   = "roads_buffer_10km.gpkg"
	RiversBufferGpkg  = "rivers_buffer_10km.gpkg"
	UnionBuffersGpkg  = "union_buffers.gpkg"
	MaskedForestTif   = "forest_10km_masked.tif"
	OutputValueCsv    = "forest_area_value_by_country.csv"

	StageCacheFile = "stage_cache.json"

	ErrColumnMissingTemplate = "%s is missing column %q (available: %s)"
)

// MollweideWkt is the fixed equal-area target of every reprojection, so
// pixel area stays comparable across the globe.
const MollweideWkt = `PROJCS["World_Mollweide",` +
	`GEOGCS["GCS_WGS_1984",` +
	`DATUM["WGS_1984",` +
	`SPHEROID["WGS_84",6378137,298.257223563]],` +
	`PRIMEM["Greenwich",0],` +
	`UNIT["Degree",0.017453292519943295]],` +
	`PROJECTION["Mollweide"],` +
	`PARAMETER["False_Easting",0],` +
	`PARAMETER["False_Northing",0],` +
	`PARAMETER["Central_Meridian",0],` +
	`UNIT["Meter",1]]`

// MollweideWorldExtent clips warps to coordinates that are defined in
// the target projection; point locations near the poles are not.
// Order: minX, minY, maxX, maxY, in meters.
var MollweideWorldExtent = []float64{-17900000, -8900000, 17900000, 8900000}

var outputHeader = []string{
	"country_id", "country_label", "country_name",
	"forest_area_ha", "value_per_hectare", "ntfp_value",
}

// DefaultColumns matches the operational country/price data.
var DefaultColumns = Columns{
	CountryID:    "iso3_r250_id",
	CountryLabel: "iso3_r250_label",
	CountryName:  "iso3_r250_name",
	Year:         "2019",
}

func DefaultConfig() Config {
	return Config{
		TargetWkt:      MollweideWkt,
		PixelSize:      DefaultPixelSize,
		TargetExtent:   append([]float64(nil), MollweideWorldExtent...),
		BufferDistance: DefaultBufferDistance,
		Columns:        DefaultColumns,
	}
}

func (c Config) Validate() error {
	required := []struct{ name, v string }{
		{"work_dir", c.WorkDir},
		{"lulc", c.Lulc},
		{"roads", c.Roads},
		{"rivers", c.Rivers},
		{"countries", c.Countries},
		{"value_table", c.ValueTable},
	}
	for _, r := range required {
		if r.v == "" {
			return fmt.Errorf("%w: %s", ErrMissingInput, r.name)
		}
	}
	if c.TargetWkt == "" {
		return fmt.Errorf("%w: target_wkt", ErrMissingInput)
	}
	if c.PixelSize <= 0 {
		return ErrBadPixelSize
	}
	if c.BufferDistance <= 0 {
		return ErrBadBufferDistance
	}
	if len(c.TargetExtent) != 4 ||
		c.TargetExtent[0] >= c.TargetExtent[2] || c.TargetExtent[1] >= c.TargetExtent[3] {
		return ErrBadTargetExtent
	}
	cols := []struct{ name, v string }{
		{"columns.country_id", c.Columns.CountryID},
		{"columns.country_label", c.Columns.CountryLabel},
		{"columns.country_name", c.Columns.CountryName},
		{"columns.year", c.Columns.Year},
	}
	for _, r := range cols {
		if r.v == "" {
			return fmt.Errorf("%w: %s", ErrMissingInput, r.name)
		}
	}
	return nil
}

func (c Config) artifact(name string) string {
	return filepath.Join(c.WorkDir, name)
}
