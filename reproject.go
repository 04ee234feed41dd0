package ntfp

import (
	"os"
	"strconv"

	"github.com/Observarun/geo-ntfp/log"

	godal "github.com/airbusgeo/godal"
	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// ReprojectRaster warps a categorical raster into the target projection
// with nearest-neighbor resampling at the configured pixel size, clipped
// to the projection's valid world extent. Interpolating resamplers would
// invent fractional class values, so only "near" is used.
func (g *Toolbox) ReprojectRaster(in, out string, cfg Config) (err error) {
	sds, err := godal.Open(in, godal.RasterOnly())
	if err != nil {
		log.Error(g.logTag+"open tif failed", zap.String("tif", in), zap.Error(err))
		return ErrInvalidTif
	}
	defer sds.Close()
	bands := sds.Bands()
	if len(bands) == 0 {
		log.Error(g.logTag+"tif has no bands", zap.String("tif", in))
		return ErrWrongTif
	}
	srcNodata, hasNodata := bands[0].NoData()
	if !hasNodata {
		srcNodata = ForestNodata
	}
	px := strconv.FormatFloat(cfg.PixelSize, 'f', -1, 64)
	ext := cfg.TargetExtent
	sw := []string{
		"-t_srs", cfg.TargetWkt,
		"-tr", px, px,
		"-r", "near",
		"-te", fmtCoord(ext[0]), fmtCoord(ext[1]), fmtCoord(ext[2]), fmtCoord(ext[3]),
		"-co", "COMPRESS=LZW",
		"-overwrite",
	}
	log.Info(g.logTag+"warp raster to target projection", zap.String("tif", in),
		zap.String("out", out), zap.Float64("pixelSize", cfg.PixelSize),
		zap.Float64("srcNodata", srcNodata))
	ods, err := godal.Warp(out, []*godal.Dataset{sds}, sw)
	if err != nil {
		log.Error(g.logTag+"warp failed", zap.String("tif", in), zap.Error(err))
		os.Remove(out)
		return
	}
	g.ensureNodata(ods, srcNodata, out)
	if err = ods.Close(); err != nil {
		log.Error(g.logTag+"close warped tif failed", zap.Error(err))
		os.Remove(out)
		return
	}
	log.Info(g.logTag+"raster reprojected", zap.String("out", out))
	return
}

// ensureNodata re-asserts the nodata value on a freshly warped dataset.
// Warping drops the nodata metadata on some driver paths, and without it
// every later zonal aggregation silently sums to zero, so a failure here
// is surfaced loudly even though it is not fatal.
func (g *Toolbox) ensureNodata(ds *godal.Dataset, nodata float64, out string) {
	band := ds.Bands()[0]
	if _, ok := band.NoData(); ok {
		return
	}
	if err := band.SetNoData(nodata); err != nil {
		log.Warn(g.logTag+"could not re-assert nodata on warped raster; "+
			"downstream zonal sums may silently come out zero",
			zap.String("tif", out), zap.Float64("nodata", nodata), zap.Error(err))
		return
	}
	log.Info(g.logTag+"re-asserted nodata dropped by warp", zap.String("tif", out), zap.Float64("nodata", nodata))
}

// ReprojectVector rewrites a vector source into the target projection as
// a GeoPackage. This is a pure coordinate transform, no resampling.
func (g *Toolbox) ReprojectVector(in, out, targetWkt string) (err error) {
	sds, err := gdal.OpenEx(in, gdal.OFVector, nil, nil, nil)
	if err != nil {
		log.Error(g.logTag+"open vector failed", zap.String("path", in), zap.Error(err))
		return ErrGdalDriverOpen
	}
	defer sds.Close()
	log.Info(g.logTag+"reproject vector", zap.String("path", in), zap.String("out", out))
	dds, err := gdal.VectorTranslate(out, []gdal.Dataset{sds},
		[]string{"-f", GPKG_DRIVER_NAME, "-t_srs", targetWkt})
	if err != nil {
		log.Error(g.logTag+"VectorTranslate failed", zap.String("path", in), zap.Error(err))
		return
	}
	dds.Close()
	log.Info(g.logTag+"vector reprojected", zap.String("out", out))
	return
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
