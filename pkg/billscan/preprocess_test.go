package billscan

import (
	"errors"
	"image/color"
	"os"
	"testing"

	"github.com/disintegration/imaging"
)

func TestNormalizeResizesToTargetWidth(t *testing.T) {
	src := imaging.New(400, 200, color.NRGBA{200, 120, 40, 255})
	f, err := os.CreateTemp("", "bill-*.png")
	if err != nil {
		t.Skip("temp file")
	}
	_ = f.Close()
	if err := imaging.Save(src, f.Name()); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	defer os.Remove(f.Name())

	out, err := Normalize(f.Name())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	defer os.Remove(out)
	img, err := imaging.Open(out)
	if err != nil {
		t.Fatalf("open normalized: %v", err)
	}
	if img.Bounds().Dx() != targetWidth {
		t.Fatalf("width=%d want %d", img.Bounds().Dx(), targetWidth)
	}
	if img.Bounds().Dy() != 800 {
		t.Fatalf("height=%d want 800 (aspect preserved)", img.Bounds().Dy())
	}
}

func TestNormalizeMissingFile(t *testing.T) {
	_, err := Normalize("no-such-bill.png")
	if !errors.Is(err, ErrImageProcessing) {
		t.Fatalf("expected ErrImageProcessing got %v", err)
	}
}

func TestNormalizeCorruptInput(t *testing.T) {
	f, err := os.CreateTemp("", "bill-*.png")
	if err != nil {
		t.Skip("temp file")
	}
	_, _ = f.WriteString("definitely not an image")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err = Normalize(f.Name())
	if !errors.Is(err, ErrImageProcessing) {
		t.Fatalf("expected ErrImageProcessing got %v", err)
	}
}

func TestStretchContrastExpandsRange(t *testing.T) {
	// Two mid-gray bands should be pushed toward the 0-255 extremes.
	img := imaging.New(4, 2, color.NRGBA{100, 100, 100, 255})
	for x := 0; x < 4; x++ {
		img.SetNRGBA(x, 1, color.NRGBA{150, 150, 150, 255})
	}
	out := stretchContrast(img)
	if v := out.NRGBAAt(0, 0).R; v != 0 {
		t.Fatalf("low band=%d want 0", v)
	}
	if v := out.NRGBAAt(0, 1).R; v != 255 {
		t.Fatalf("high band=%d want 255", v)
	}
}

func TestStretchContrastFlatImage(t *testing.T) {
	img := imaging.New(2, 2, color.NRGBA{90, 90, 90, 255})
	out := stretchContrast(img)
	if v := out.NRGBAAt(0, 0).R; v != 90 {
		t.Fatalf("flat image changed: %d", v)
	}
}
