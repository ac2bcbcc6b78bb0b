package imaging

import (
	"fmt"
	"image"
	"io"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	// imaging registers only the stdlib decoders plus bmp and tiff
	_ "golang.org/x/image/webp"
)

// Dimensions of a decoded image, after EXIF orientation is applied
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AspectRatio returns width / height, or 0 for an empty image
func (d Dimensions) AspectRatio() float64 {
	if d.Height == 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}

// Probe decodes an image and reports its display dimensions. Portrait
// shots carry their rotation in EXIF, so orientation is honoured.
func Probe(reader io.Reader) (Dimensions, error) {
	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return dimensionsOf(img), nil
}

func dimensionsOf(img image.Image) Dimensions {
	b := img.Bounds()
	return Dimensions{Width: b.Dx(), Height: b.Dy()}
}

// ValidateType checks if file is a valid image type
func ValidateType(filename string) bool {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	default:
		return false
	}
}

// VariantKey names the resized copy the optimizer publishes next to an
// original: "nature/a.jpg" at 800px is "nature/a_w800.jpg".
func VariantKey(key string, width int) string {
	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	return fmt.Sprintf("%s_w%d%s", base, width, ext)
}

// VariantWidths returns the configured widths that do not upscale the original
func VariantWidths(original Dimensions, widths []int) []int {
	out := make([]int, 0, len(widths))
	for _, w := range widths {
		if w > 0 && w < original.Width {
			out = append(out, w)
		}
	}
	return out
}
