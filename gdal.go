package ntfp

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Observarun/geo-ntfp/log"

	godal "github.com/airbusgeo/godal"
	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// Toolbox carries the shared GDAL state of a pipeline run, mainly the
// cached OGR spatial references.
type Toolbox struct {
	refMap map[string]gdal.SpatialReference
	rLock  sync.Mutex
	logTag string
}

// Memory objects created by the GDAL C library must be released manually.
type destroyable interface {
	Destroy()
}

var registerOnce sync.Once

// NewToolbox initializes GDAL once and returns a fresh toolbox.
func NewToolbox() *Toolbox {
	registerOnce.Do(godal.RegisterAll)
	return &Toolbox{
		refMap: map[string]gdal.SpatialReference{},
		logTag: "Toolbox:",
	}
}

// getWktRef returns the spatial reference for a projection WKT, reusing
// parsed references across calls (so they are never destroyed here).
func (g *Toolbox) getWktRef(wkt string) (ref gdal.SpatialReference, err error) {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	ref, ok := g.refMap[wkt]
	if ok {
		return
	}
	ref = gdal.CreateSpatialReference(wkt)
	// Keep the traditional (easting, northing) data axis order regardless of
	// what the CRS authority declares, as all data handled here uses it.
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	g.refMap[wkt] = ref
	return
}

func (g *Toolbox) parseWKB(wkb GdalGeo, ref gdal.SpatialReference) (ret gdal.Geometry, err error) {
	ret, err = gdal.CreateFromWKB(wkb, ref, len(wkb))
	if err != nil {
		log.Error(g.logTag+"parse wkb failed", zap.Error(err))
	}
	return
}

func (g *Toolbox) parseWKT(wkt string, ref gdal.SpatialReference) (ret gdal.Geometry, err error) {
	ret, err = gdal.CreateFromWKT(wkt, ref)
	if err != nil {
		log.Error(g.logTag+"parse wkt failed", zap.Error(err))
	}
	return
}

// vectorDriver picks the OGR driver matching a vector path. GeoPackage
// for .gpkg, ESRI Shapefile for everything else handled here.
func vectorDriver(path string) gdal.OGRDriver {
	if strings.HasSuffix(strings.ToLower(path), FILE_EXT_GPKG) {
		return gdal.OGRDriverByName(GPKG_DRIVER_NAME)
	}
	return gdal.OGRDriverByName(SHP_DRIVER_NAME)
}

// openLayer opens a vector source read-only and returns its first layer.
// The caller owns the returned datasource.
func (g *Toolbox) openLayer(path string) (ds gdal.DataSource, layer gdal.Layer, err error) {
	ds, ok := vectorDriver(path).Open(path, 0)
	if !ok {
		log.Error(g.logTag+"open vector failed", zap.String("path", path))
		err = ErrGdalDriverOpen
		return
	}
	layer = ds.LayerByIndex(0)
	return
}

func fieldNames(def gdal.FeatureDefinition) []string {
	n := def.FieldCount()
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = def.FieldDefinition(i).Name()
	}
	return names
}

// missingColumn reports which input lacks an expected column and what
// columns it actually carries, so the operator can fix the config.
func missingColumn(what, col string, available []string) error {
	return fmt.Errorf(ErrColumnMissingTemplate, what, col, strings.Join(available, ", "))
}
