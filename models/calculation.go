package models

import "time"

// Calculation persists one savings estimate. Inputs are kept alongside
// the rounded outputs so an estimate can be re-derived or audited later.
// Source records whether the inputs were typed in manually or derived
// from a scanned bill.
type Calculation struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Usage         float64 `gorm:"not null"`
	Tariff        float64 `gorm:"not null"`
	Sunlight      float64 `gorm:"not null"`
	Efficiency    float64 `gorm:"not null"`
	MonthlyCost   float64 `gorm:"not null"`
	Savings       float64 `gorm:"not null"` // monthly savings
	YearlySavings float64 `gorm:"not null"`
	Source        string  `gorm:"size:16;default:manual"` // manual | bill
	CustomerName  string  `gorm:"size:255"`
	BillDate      string  `gorm:"size:32"`
}
