package ntfp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 4x4 grid, 300 m pixels, origin at (0, 1200), north-up.
var testGT = [6]float64{0, 300, 0, 1200, 0, -300}

func TestPixelWindow(t *testing.T) {
	tests := []struct {
		name                   string
		minX, minY, maxX, maxY float64
		wantX, wantY           int
		wantW, wantH           int
		wantOK                 bool
	}{
		{
			name: "full grid", minX: 0, minY: 0, maxX: 1200, maxY: 1200,
			wantX: 0, wantY: 0, wantW: 4, wantH: 4, wantOK: true,
		},
		{
			name: "inner 2x2 block", minX: 300, minY: 300, maxX: 900, maxY: 900,
			wantX: 1, wantY: 1, wantW: 2, wantH: 2, wantOK: true,
		},
		{
			name: "clamped to grid", minX: -600, minY: -600, maxX: 600, maxY: 1800,
			wantX: 0, wantY: 0, wantW: 2, wantH: 4, wantOK: true,
		},
		{
			name: "sub-pixel envelope rounds out", minX: 310, minY: 310, maxX: 320, maxY: 320,
			wantX: 1, wantY: 2, wantW: 1, wantH: 1, wantOK: true,
		},
		{
			name: "entirely east of grid", minX: 5000, minY: 0, maxX: 6000, maxY: 1200,
			wantOK: false,
		},
		{
			name: "entirely south of grid", minX: 0, minY: -9000, maxX: 1200, maxY: -6000,
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x0, y0, w, h, ok := pixelWindow(testGT, 4, 4, tt.minX, tt.minY, tt.maxX, tt.maxY)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantX, x0)
			assert.Equal(t, tt.wantY, y0)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestPixelWindowDegenerateTransform(t *testing.T) {
	_, _, _, _, ok := pixelWindow([6]float64{0, 0, 0, 0, 0, 0}, 4, 4, 0, 0, 1, 1)
	require.False(t, ok)
}

func TestCountMasked(t *testing.T) {
	inside := []byte{1, 1, 0, 0, 1, 1}
	forest := []byte{1, 0, 1, 0, 1, 1}
	// only positions where both are 1: indexes 0, 4, 5
	assert.Equal(t, int64(3), countMasked(inside, forest))
	assert.Equal(t, int64(0), countMasked(make([]byte, 6), forest))
}
