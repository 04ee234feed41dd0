package ntfp

import "errors"

var (
	ErrGdalDriverCreate  = errors.New("gdal driver create err")
	ErrGdalDriverOpen    = errors.New("gdal driver open err")
	ErrInvalidTif        = errors.New("invalid tif")
	ErrWrongTif          = errors.New("tif has no usable band")
	ErrTifReadFailed     = errors.New("tif read failed")
	ErrTifWriteFailed    = errors.New("tif write failed")
	ErrNoGeoTransform    = errors.New("raster has no geotransform")
	ErrEmptyLayer        = errors.New("vector layer has no features")
	ErrEmptyGeometry     = errors.New("unioned geometry is empty")
	ErrEmptyValueTable   = errors.New("value table has no usable rows")
	ErrMissingInput      = errors.New("missing required config value")
	ErrBadPixelSize      = errors.New("pixel size must be positive")
	ErrBadBufferDistance = errors.New("buffer distance must be positive")
	ErrBadTargetExtent   = errors.New("target extent must be [minX minY maxX maxY]")
)
