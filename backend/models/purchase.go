package models

import "gorm.io/gorm"

const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusFailed    = "failed"
)

// Purchase is the two-phase payment ledger row. Amount is snapshotted from the
// course price and discount at initiation and never recomputed. Completed is a
// terminal status.
type Purchase struct {
	gorm.Model
	CourseID      uint   `gorm:"index;not null"`
	UserID        string `gorm:"index;not null"`
	Amount        float64
	PaymentMethod string
	TransactionID string
	Status        string `gorm:"default:pending"`
}
