package models

import "time"

// BillUpload records one uploaded bill image together with whatever the
// extraction pipeline managed to pull out of it. Extracted columns are
// nullable on purpose: a mostly-empty row is a legitimate outcome of OCR
// on a poor photograph, and the frontend offers the values for manual
// correction. Failed uploads are kept (not deleted) so an admin can
// review them.
type BillUpload struct {
	ID              uint `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	FileName        string   `gorm:"size:255;not null"`
	StorePath       string   `gorm:"column:store_path;size:512"`
	ContentType     string   `gorm:"size:128"`
	ConsumerNo      *string  `gorm:"size:64"`
	CustomerName    *string  `gorm:"size:255"`
	BillDate        *string  `gorm:"size:32"`
	Amount          *float64
	CurrentReading  *int
	PreviousReading *int
	Units           *int
	RawTextPreview  string `gorm:"type:text"`
	CalculationID   *uint  `gorm:"index"` // set when a savings estimate was derived
	Failed          bool   `gorm:"default:false;index"`
	FailedReason    string `gorm:"size:255"`
}
