package billscan

import "errors"

var (
	// ErrImageProcessing is returned when the input cannot be read or decoded
	// as an image. Fatal for the pipeline run: OCR needs a normalized image.
	ErrImageProcessing = errors.New("image processing failed")
	// ErrOCREngine is returned when the recognition engine fails to
	// initialize or crashes mid-recognition.
	ErrOCREngine = errors.New("ocr engine failed")
	// ErrTimeout is returned when recognition exceeds the caller's deadline.
	// Distinct from ErrOCREngine: slow recognition is an engine
	// characteristic, not a logic failure.
	ErrTimeout = errors.New("recognition timed out")
)
