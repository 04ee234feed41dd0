package ntfp

import (
	"os"

	"github.com/Observarun/geo-ntfp/log"

	godal "github.com/airbusgeo/godal"
	"go.uber.org/zap"
)

// BuildForestMask classifies a single-band LULC raster into a binary
// forest mask on the same grid: 1 where the class falls in
// [ForestClassMin, ForestClassMax], 0 elsewhere (nodata input included).
// The raster is processed block by block so global inputs never load
// fully into memory. On any failure the partial output is removed.
func (g *Toolbox) BuildForestMask(lulc, out string) (err error) {
	sds, err := godal.Open(lulc, godal.RasterOnly())
	if err != nil {
		log.Error(g.logTag+"open lulc tif failed", zap.String("tif", lulc), zap.Error(err))
		return ErrInvalidTif
	}
	defer sds.Close()
	bands := sds.Bands()
	if len(bands) == 0 {
		log.Error(g.logTag+"lulc tif has no bands", zap.String("tif", lulc))
		return ErrWrongTif
	}
	band := bands[0]
	st := band.Structure()
	gt, err := sds.GeoTransform()
	if err != nil {
		log.Error(g.logTag+"lulc tif has no geotransform", zap.String("tif", lulc), zap.Error(err))
		return ErrNoGeoTransform
	}
	log.Info(g.logTag+"start forest mask", zap.String("tif", lulc),
		zap.Int("width", st.SizeX), zap.Int("height", st.SizeY),
		zap.Int("classMin", ForestClassMin), zap.Int("classMax", ForestClassMax))

	ods, err := godal.Create(godal.GTiff, out, 1, godal.Byte, st.SizeX, st.SizeY,
		godal.CreationOption("COMPRESS=LZW", "TILED=YES"))
	if err != nil {
		log.Error(g.logTag+"create mask tif failed", zap.String("tif", out), zap.Error(err))
		return ErrGdalDriverCreate
	}
	defer func() {
		if ods != nil {
			ods.Close()
		}
		if err != nil {
			os.Remove(out)
		}
	}()
	if err = ods.SetGeoTransform(gt); err != nil {
		return
	}
	srcRef := sds.SpatialRef()
	defer srcRef.Close()
	if err = ods.SetSpatialRef(srcRef); err != nil {
		return
	}
	oband := ods.Bands()[0]
	if err = oband.SetNoData(ForestNodata); err != nil {
		return
	}

	bx, by := st.BlockSizeX, st.BlockSizeY
	src := make([]int32, bx*by)
	dst := make([]byte, bx*by)
	var forestPixels int64
	for y := 0; y < st.SizeY; y += by {
		h := min(by, st.SizeY-y)
		for x := 0; x < st.SizeX; x += bx {
			w := min(bx, st.SizeX-x)
			if err = band.IO(godal.IORead, x, y, src[:w*h], w, h); err != nil {
				log.Error(g.logTag+"read lulc block failed", zap.Int("x", x), zap.Int("y", y), zap.Error(err))
				err = ErrTifReadFailed
				return
			}
			forestPixels += classifyForest(src[:w*h], dst[:w*h])
			if err = oband.IO(godal.IOWrite, x, y, dst[:w*h], w, h); err != nil {
				log.Error(g.logTag+"write mask block failed", zap.Int("x", x), zap.Int("y", y), zap.Error(err))
				err = ErrTifWriteFailed
				return
			}
		}
	}
	err = ods.Close()
	ods = nil
	if err != nil {
		log.Error(g.logTag+"close mask tif failed", zap.Error(err))
		return
	}
	log.Info(g.logTag+"forest mask created", zap.String("tif", out), zap.Int64("forestPixels", forestPixels))
	return
}

// classifyForest gates LULC class codes to {0,1} and returns how many
// pixels came out forest. Nodata input is indistinguishable from
// non-forest here, both map to 0.
func classifyForest(src []int32, dst []byte) (forest int64) {
	for i, v := range src {
		if v >= ForestClassMin && v <= ForestClassMax {
			dst[i] = 1
			forest++
		} else {
			dst[i] = 0
		}
	}
	return
}
