package models

import "time"

// RecoveredRevenue is an append-only ledger row written when reconciliation
// flips a failed payment to recovered. Never mutated or deleted.
type RecoveredRevenue struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FailedPaymentID uint      `gorm:"not null;uniqueIndex" json:"failed_payment_id"`
	AmountRecovered int64     `gorm:"not null;default:0" json:"amount_recovered"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}
