package billscan

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Recognize runs Tesseract over a normalized image and returns the raw
// recognized text. The engine handle is scoped to this single call and
// released on every exit path; a fresh client per request keeps runs
// independent of each other.
func Recognize(path string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage("eng"); err != nil {
		return "", fmt.Errorf("%w: set language: %v", ErrOCREngine, err)
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("%w: set image %s: %v", ErrOCREngine, path, err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: recognize %s: %v", ErrOCREngine, path, err)
	}
	return text, nil
}
