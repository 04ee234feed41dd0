package ntfp

import (
	"math"
	"os"

	"github.com/Observarun/geo-ntfp/log"
	"github.com/Observarun/geo-ntfp/utils"

	godal "github.com/airbusgeo/godal"
	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// MaskByCorridor forces every pixel of the forest raster outside the
// corridor polygon to nodata while keeping the grid untouched. The
// corridor GeoPackage is handed to the warp as the cutline datasource
// directly; it carries its own SRS, so the cutline transform stays an
// identity instead of the bogus lon/lat guess an SRS-less intermediate
// format would get.
func (g *Toolbox) MaskByCorridor(forestTif, corridor, out string) (err error) {
	sds, err := godal.Open(forestTif, godal.RasterOnly())
	if err != nil {
		log.Error(g.logTag+"open forest tif failed", zap.String("tif", forestTif), zap.Error(err))
		return ErrInvalidTif
	}
	defer sds.Close()
	nodata, ok := sds.Bands()[0].NoData()
	if !ok {
		nodata = ForestNodata
		log.Warn(g.logTag+"forest raster lost its nodata value, assuming default",
			zap.String("tif", forestTif), zap.Float64("nodata", nodata))
	}
	log.Info(g.logTag+"mask forest raster by corridor", zap.String("tif", forestTif), zap.String("corridor", corridor))
	sw := []string{
		"-cutline", corridor,
		"-dstnodata", fmtCoord(nodata),
		"-co", "COMPRESS=LZW",
		"-overwrite",
	}
	ods, err := godal.Warp(out, []*godal.Dataset{sds}, sw)
	if err != nil {
		log.Error(g.logTag+"cutline warp failed", zap.Error(err))
		os.Remove(out)
		return
	}
	g.ensureNodata(ods, nodata, out)
	if err = ods.Close(); err != nil {
		os.Remove(out)
		return
	}
	log.Info(g.logTag+"masked forest raster written", zap.String("out", out))
	return
}

// CountForestByCountry computes the zonal forest-pixel sum for every
// country feature and aggregates the sums per unique country label, so a
// country split over many polygons (islands, exclaves) ends up in
// exactly one row. Also returns the pixel area in hectares derived from
// the raster's geotransform.
func (g *Toolbox) CountForestByCountry(maskedTif, countries, labelCol, targetWkt string) (stats map[string]int64, pixelAreaHa float64, err error) {
	rds, err := godal.Open(maskedTif, godal.RasterOnly())
	if err != nil {
		log.Error(g.logTag+"open masked tif failed", zap.String("tif", maskedTif), zap.Error(err))
		err = ErrInvalidTif
		return
	}
	defer rds.Close()
	band := rds.Bands()[0]
	st := band.Structure()
	gt, err := rds.GeoTransform()
	if err != nil {
		err = ErrNoGeoTransform
		return
	}
	pixelAreaHa = math.Abs(gt[1]*gt[5]) / HectareInSqUnits
	if _, ok := band.NoData(); !ok {
		log.Warn(g.logTag+"masked raster carries no nodata value; "+
			"zonal sums may include pixels outside the corridor", zap.String("tif", maskedTif))
	}

	sr, err := godal.NewSpatialRefFromWKT(targetWkt)
	if err != nil {
		return
	}
	defer sr.Close()

	ds, layer, err := g.openLayer(countries)
	if err != nil {
		return
	}
	defer ds.Destroy()
	def := layer.Definition()
	labelIdx := def.FieldIndex(labelCol)
	if labelIdx < 0 {
		err = missingColumn("countries layer "+countries, labelCol, fieldNames(def))
		return
	}
	log.Info(g.logTag+"start zonal aggregation", zap.String("tif", maskedTif),
		zap.String("countries", countries), zap.Float64("pixelAreaHa", pixelAreaHa))

	stats = map[string]int64{}
	var (
		feature  *gdal.Feature
		gc       []destroyable
		features int
	)
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	for {
		if feature = layer.NextFeature(); feature == nil {
			break
		}
		gc = append(gc, *feature)
		features++
		label := utils.DecodeShpAttr(feature.FieldAsString(labelIdx))
		if label == "" {
			continue
		}
		geo := feature.Geometry()
		env := geo.Envelope()
		x0, y0, w, h, ok := pixelWindow(gt, st.SizeX, st.SizeY,
			env.MinX(), env.MinY(), env.MaxX(), env.MaxY())
		if !ok {
			// a polygon entirely off-grid still yields a zero row
			stats[label] += 0
			continue
		}
		wkb, e := geo.ToWKB()
		if e != nil {
			err = e
			return
		}
		var cnt int64
		if cnt, err = g.countForestInWindow(band, wkb, sr, gt, x0, y0, w, h); err != nil {
			return
		}
		stats[label] += cnt
	}
	log.Info(g.logTag+"zonal aggregation done",
		zap.Int("features", features), zap.Int("countries", len(stats)))
	return
}

// zonalRowBand bounds per-feature buffers: windows taller than this are
// rasterized and counted in horizontal bands, so a continent-sized
// country never holds its whole window in memory.
const zonalRowBand = 512

// countForestInWindow rasterizes one country geometry over a window of
// the forest raster and counts pixels that are both inside the polygon
// and forest-valued. Nodata pixels are 0-valued and never contribute.
func (g *Toolbox) countForestInWindow(band godal.Band, wkb GdalGeo, sr *godal.SpatialRef, gt [6]float64, x0, y0, w, h int) (cnt int64, err error) {
	geom, err := godal.NewGeometryFromWKB(wkb, sr)
	if err != nil {
		return
	}
	defer geom.Close()
	rows := min(zonalRowBand, h)
	inside := make([]byte, w*rows)
	forest := make([]byte, w*rows)
	for y := 0; y < h; y += rows {
		bh := min(rows, h-y)
		var bandCnt int64
		if bandCnt, err = g.countForestBand(band, geom, sr, gt, x0, y0+y, w, bh, inside, forest); err != nil {
			return
		}
		cnt += bandCnt
	}
	return
}

// countForestBand handles one horizontal band of a feature window: the
// geometry is rasterized into a MEM dataset aligned with the band, and
// pixels set in both rasters are counted.
func (g *Toolbox) countForestBand(band godal.Band, geom *godal.Geometry, sr *godal.SpatialRef,
	gt [6]float64, x0, y0, w, h int, inside, forest []byte) (cnt int64, err error) {
	mem, err := godal.Create(godal.Memory, "", 1, godal.Byte, w, h)
	if err != nil {
		return
	}
	defer mem.Close()
	wgt := [6]float64{gt[0] + float64(x0)*gt[1], gt[1], 0, gt[3] + float64(y0)*gt[5], 0, gt[5]}
	if err = mem.SetGeoTransform(wgt); err != nil {
		return
	}
	if err = mem.SetSpatialRef(sr); err != nil {
		return
	}
	if err = mem.RasterizeGeometry(geom, godal.Values(1)); err != nil {
		return
	}
	if err = mem.Bands()[0].IO(godal.IORead, 0, 0, inside[:w*h], w, h); err != nil {
		return
	}
	if err = band.IO(godal.IORead, x0, y0, forest[:w*h], w, h); err != nil {
		err = ErrTifReadFailed
		return
	}
	cnt = countMasked(inside[:w*h], forest[:w*h])
	return
}

// countMasked counts pixels that are forest (value 1) and fall inside
// the rasterized zone.
func countMasked(inside, forest []byte) (cnt int64) {
	for i, in := range inside {
		if in == 1 && forest[i] == 1 {
			cnt++
		}
	}
	return
}

// pixelWindow clips a geometry envelope to a north-up raster grid and
// returns the pixel rect covering it. ok is false when the envelope
// misses the grid entirely.
func pixelWindow(gt [6]float64, sizeX, sizeY int, minX, minY, maxX, maxY float64) (x0, y0, w, h int, ok bool) {
	px, py := gt[1], gt[5]
	if px == 0 || py == 0 {
		return
	}
	c0 := int(math.Floor((minX - gt[0]) / px))
	c1 := int(math.Ceil((maxX - gt[0]) / px))
	r0 := int(math.Floor((maxY - gt[3]) / py))
	r1 := int(math.Ceil((minY - gt[3]) / py))
	c0 = max(c0, 0)
	r0 = max(r0, 0)
	c1 = min(c1, sizeX)
	r1 = min(r1, sizeY)
	if c1 <= c0 || r1 <= r0 {
		return
	}
	return c0, r0, c1 - c0, r1 - r0, true
}
