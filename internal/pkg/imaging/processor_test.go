package imaging

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 lossless webp
const webpPixel = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func TestProbe_WebP(t *testing.T) {
	data, err := base64.StdEncoding.DecodeString(webpPixel)
	require.NoError(t, err)

	dims, err := Probe(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Dimensions{Width: 1, Height: 1}, dims)
	assert.True(t, ValidateType("balloons.webp"))
}

func TestProbe(t *testing.T) {
	img := imaging.New(300, 200, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))

	dims, err := Probe(&buf)
	require.NoError(t, err)
	assert.Equal(t, Dimensions{Width: 300, Height: 200}, dims)
	assert.InDelta(t, 1.5, dims.AspectRatio(), 0.0001)
}

func TestProbe_NotAnImage(t *testing.T) {
	_, err := Probe(bytes.NewReader([]byte("definitely not an image")))
	assert.Error(t, err)
}

func TestValidateType(t *testing.T) {
	tests := map[string]bool{
		"a.jpg":     true,
		"a.JPEG":    true,
		"a.png":     true,
		"a.webp":    true,
		"a.gif":     true,
		"a.tiff":    false,
		"a":         false,
		"jpg":       false,
		"a.jpg.txt": false,
	}
	for name, want := range tests {
		assert.Equal(t, want, ValidateType(name), name)
	}
}

func TestVariantKey(t *testing.T) {
	assert.Equal(t, "nature/a_w800.jpg", VariantKey("nature/a.jpg", 800))
}

func TestVariantWidths(t *testing.T) {
	got := VariantWidths(Dimensions{Width: 1000, Height: 500}, []int{400, 800, 1600})
	assert.Equal(t, []int{400, 800}, got)

	assert.Empty(t, VariantWidths(Dimensions{}, []int{400}))
}

func TestAspectRatio_ZeroHeight(t *testing.T) {
	assert.Zero(t, Dimensions{Width: 10}.AspectRatio())
}
