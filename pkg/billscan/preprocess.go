package billscan

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/disintegration/imaging"
)

// targetWidth is the normalization width. Upscaling small phone photos
// improves glyph resolution; downscaling large scans speeds up OCR.
const targetWidth = 1600

// Normalize prepares a raw bill image for OCR: resize to targetWidth
// preserving aspect ratio, grayscale, and contrast stretch. The result is
// written to a temporary PNG whose path is returned; the caller owns its
// removal.
func Normalize(path string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrImageProcessing, path, err)
	}
	img = imaging.Resize(img, targetWidth, 0, imaging.Lanczos)
	gray := imaging.Grayscale(img)
	gray = stretchContrast(gray)

	tmpFile, err := os.CreateTemp("", "billscan-*.png")
	if err != nil {
		return "", fmt.Errorf("%w: temp file: %v", ErrImageProcessing, err)
	}
	tmp := tmpFile.Name()
	_ = tmpFile.Close()
	if err := imaging.Save(gray, tmp); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: save normalized image: %v", ErrImageProcessing, err)
	}
	return tmp, nil
}

// stretchContrast linearly remaps the intensity histogram to the full
// 0-255 range. Compensates for the uneven lighting and shadows common in
// photographed bills.
func stretchContrast(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	lo, hi := uint8(255), uint8(0)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := img.NRGBAAt(x, y).R // already grayscale, R is the intensity
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if hi <= lo {
		return img // flat image, nothing to stretch
	}
	span := float64(hi - lo)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		v := uint8(float64(c.R-lo) / span * 255)
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})
}
