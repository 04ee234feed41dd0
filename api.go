package ntfp

// GdalGeo is a geometry in WKB form, as produced and consumed by OGR.
type GdalGeo = []byte

// Columns maps the pipeline onto the attribute schema of its inputs. The
// label column is the join key (an ISO3-style code) and must be present
// in both the countries layer and the value table; Year selects which
// value-per-hectare column of the table is priced.
type Columns struct {
	CountryID    string `koanf:"country_id" json:"country_id"`
	CountryLabel string `koanf:"country_label" json:"country_label"`
	CountryName  string `koanf:"country_name" json:"country_name"`
	Year         string `koanf:"year" json:"year"`
}

// Config is the full, immutable parameterization of a pipeline run. It
// is built once (defaults, config file, env, flags) and passed by value
// into each stage; stages never mutate shared state.
type Config struct {
	WorkDir    string `koanf:"work_dir" json:"work_dir"`
	Lulc       string `koanf:"lulc" json:"lulc"`
	Roads      string `koanf:"roads" json:"roads"`
	Rivers     string `koanf:"rivers" json:"rivers"`
	Countries  string `koanf:"countries" json:"countries"`
	ValueTable string `koanf:"value_table" json:"value_table"`

	TargetWkt      string    `koanf:"target_wkt" json:"target_wkt"`
	PixelSize      float64   `koanf:"pixel_size" json:"pixel_size"`
	TargetExtent   []float64 `koanf:"target_extent" json:"target_extent"`
	BufferDistance float64   `koanf:"buffer_distance" json:"buffer_distance"`

	Columns Columns `koanf:"columns" json:"columns"`

	// Force re-runs every stage regardless of the stage cache. Excluded
	// from the cache fingerprint so toggling it does not invalidate runs.
	Force bool `koanf:"force" json:"-"`
}

// Results lists the artifact paths the pipeline stages write, all under
// the work dir. Each artifact is owned by exactly one stage.
type Results struct {
	ForestMask    string
	ForestProj    string
	RoadsProj     string
	RiversProj    string
	CountriesProj string
	RoadsBuffer   string
	RiversBuffer  string
	UnionBuffers  string
	MaskedForest  string
	ValueTable    string
}

// ValueRecord is one row of the per-country price table. Valid is false
// when the configured year column did not parse as a number; such rows
// survive loading but are dropped by the join.
type ValueRecord struct {
	ID         string
	Label      string
	Name       string
	ValuePerHa float64
	Valid      bool
}

// ValuationRow is one row of the final output table.
type ValuationRow struct {
	CountryID    string
	CountryLabel string
	CountryName  string
	ForestAreaHa float64
	ValuePerHa   float64
	NtfpValue    float64
}
