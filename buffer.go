package ntfp

import (
	"os"

	"github.com/Observarun/geo-ntfp/log"
	"github.com/Observarun/geo-ntfp/utils"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// BufferAndDissolve expands every feature of a line layer by dist (in
// the linear unit of the layer's projection) and dissolves the buffers
// into a single (multi)polygon, written as a one-feature GeoPackage.
// Dissolving keeps overlapping corridor segments from double-counting
// area in the later aggregation.
func (g *Toolbox) BufferAndDissolve(in, out string, dist float64, targetWkt string) (err error) {
	ds, layer, err := g.openLayer(in)
	if err != nil {
		return
	}
	defer ds.Destroy()
	ref, err := g.getWktRef(targetWkt)
	if err != nil {
		return
	}
	log.Info(g.logTag+"start buffer and dissolve", zap.String("path", in), zap.Float64("dist", dist))
	var (
		feature *gdal.Feature
		union   = gdal.Create(gdal.GT_Polygon)
		gc      []destroyable
		cnt     int
	)
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	gc = append(gc, union)
	for {
		if feature = layer.NextFeature(); feature == nil {
			break
		}
		gc = append(gc, *feature)
		buffed := feature.Geometry().Buffer(dist, BufferQuadSegs)
		gc = append(gc, buffed)
		union = union.Union(buffed)
		gc = append(gc, union)
		cnt++
	}
	if cnt == 0 {
		log.Error(g.logTag+"no features to buffer", zap.String("path", in))
		err = ErrEmptyLayer
		return
	}
	wkb, err := union.ToWKB()
	if err != nil {
		return
	}
	if err = g.writePolygonGpkg(out, wkb, ref); err != nil {
		return
	}
	log.Info(g.logTag+"buffered and dissolved", zap.String("out", out), zap.Int("features", cnt))
	return
}

// UnionBuffers merges the dissolved per-layer buffer polygons into the
// single combined corridor polygon.
func (g *Toolbox) UnionBuffers(ins []string, out, targetWkt string) (err error) {
	ref, err := g.getWktRef(targetWkt)
	if err != nil {
		return
	}
	log.Info(g.logTag+"start union of buffers", zap.Strings("paths", ins))
	var (
		geo      gdal.Geometry
		unionGeo = gdal.Create(gdal.GT_Polygon)
		gc       = []destroyable{unionGeo}
		wkb      GdalGeo
	)
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	for _, in := range ins {
		if wkb, err = g.readUnionedGeom(in); err != nil {
			return
		}
		if geo, err = g.parseWKB(wkb, ref); err != nil {
			return
		}
		gc = append(gc, geo)
		unionGeo = unionGeo.Union(geo)
		gc = append(gc, unionGeo)
	}
	if unionGeo.IsEmpty() {
		err = ErrEmptyGeometry
		return
	}
	if wkb, err = unionGeo.ToWKB(); err != nil {
		return
	}
	if err = g.writePolygonGpkg(out, wkb, ref); err != nil {
		return
	}
	log.Info(g.logTag+"buffers unioned", zap.String("out", out))
	return
}

// readUnionedGeom unions all features of a vector source into one WKB
// geometry, in the source's own projection.
func (g *Toolbox) readUnionedGeom(path string) (wkb GdalGeo, err error) {
	ds, layer, err := g.openLayer(path)
	if err != nil {
		return
	}
	defer ds.Destroy()
	var (
		feature *gdal.Feature
		union   = gdal.Create(gdal.GT_Polygon)
		gc      []destroyable
	)
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	gc = append(gc, union)
	for {
		if feature = layer.NextFeature(); feature == nil {
			break
		}
		gc = append(gc, *feature)
		union = union.Union(feature.Geometry())
		gc = append(gc, union)
	}
	if union.IsEmpty() {
		log.Error(g.logTag+"empty geometry in vector source", zap.String("path", path))
		err = ErrEmptyGeometry
		return
	}
	wkb, err = union.ToWKB()
	return
}

// writePolygonGpkg writes one polygon feature into a fresh single-layer
// GeoPackage, replacing any previous file at the path.
func (g *Toolbox) writePolygonGpkg(path string, wkb GdalGeo, ref gdal.SpatialReference) (err error) {
	os.Remove(path)
	driver := gdal.OGRDriverByName(GPKG_DRIVER_NAME)
	ds, ok := driver.Create(path, nil)
	if !ok {
		log.Error(g.logTag+"create gpkg failed", zap.String("path", path))
		return ErrGdalDriverCreate
	}
	defer ds.Destroy()
	layer := ds.CreateLayer(utils.GetFilenameWithoutExt(path), ref, gdal.GT_Unknown, nil)
	feature := layer.Definition().Create()
	defer feature.Destroy()
	if err = feature.SetFID(0); err != nil {
		log.Error(g.logTag+"err in set feature fid", zap.Error(err))
		return
	}
	geo, err := g.parseWKB(wkb, ref)
	if err != nil {
		return
	}
	if err = feature.SetGeometryDirectly(geo); err != nil {
		log.Error(g.logTag+"err in set geom of feature", zap.Error(err))
		return
	}
	if err = layer.Create(feature); err != nil {
		log.Error(g.logTag+"err in create feature of layer", zap.Error(err))
	}
	return
}
