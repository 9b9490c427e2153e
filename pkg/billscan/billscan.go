// Package billscan extracts structured fields from photographed or scanned
// electricity bills: image normalization, Tesseract OCR, and heuristic
// field parsing of the recognized text. Each extraction request is a
// self-contained run with no shared mutable state, so requests may run
// concurrently as independent pipeline instances.
package billscan

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
)

// previewLen is how much recognized text travels back to the caller for
// diagnostic display.
const previewLen = 2000

// BillData is the structured result of one extraction run. Every field is
// independently nullable: OCR noise is field-specific, so the absence of
// one field never blocks extraction of the others.
type BillData struct {
	ConsumerNo     *string       `json:"consumerNo"`
	Name           *string       `json:"name"`
	BillDate       *string       `json:"billDate"`
	Amount         *float64      `json:"amount"`
	Readings       MeterReadings `json:"readings"`
	Units          *int          `json:"units"`
	RawTextPreview string        `json:"rawTextPreview"`
}

// ExtractFields runs the five field extractors plus units derivation over
// recognized text. Pure and idempotent; it always returns a complete
// BillData even when every field comes back nil.
func ExtractFields(text string) *BillData {
	d := &BillData{RawTextPreview: preview(text, previewLen)}
	if v := ExtractConsumerNo(text); v != "" {
		d.ConsumerNo = &v
	}
	if v := ExtractName(text); v != "" {
		d.Name = &v
	}
	if v := ExtractBillDate(text); v != "" {
		d.BillDate = &v
	}
	if raw := ExtractAmount(text); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			d.Amount = &f
		}
	}
	d.Readings = ExtractReadings(text)
	d.Units = ComputeUnits(d.Readings)
	return d
}

// ExtractBillData runs the whole pipeline on one image: normalize,
// recognize, extract, derive. Normalization and OCR are the long-latency
// steps, so the caller bounds the run through ctx; exceeding the deadline
// surfaces ErrTimeout. The normalized temp image is removed on success and
// failure alike.
func ExtractBillData(ctx context.Context, path string) (*BillData, error) {
	type outcome struct {
		data *BillData
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		pre, err := Normalize(path)
		if err != nil {
			ch <- outcome{nil, err}
			return
		}
		text, rerr := Recognize(pre)
		// remove before reporting so a caller never observes a stale temp
		if err := os.Remove(pre); err != nil {
			log.Printf("billscan: remove temp %s: %v", pre, err)
		}
		if rerr != nil {
			ch <- outcome{nil, rerr}
			return
		}
		log.Printf("billscan %s snippet=%q", path, snippet(text, 180))
		ch <- outcome{ExtractFields(text), nil}
	}()
	select {
	case <-ctx.Done():
		// The worker goroutine still owns the temp file and removes it
		// when recognition eventually returns.
		return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	case o := <-ch:
		return o.data, o.err
	}
}
