package models

import "time"

const (
	FailedPaymentStatusUnresolved = "unresolved"
	FailedPaymentStatusRecovered  = "recovered"
)

// FailedPayment is the central workflow record: one row per detected payment
// failure, linked to exactly one invoice and one customer. After creation it
// is mutated only by reconciliation (unresolved -> recovered).
type FailedPayment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	InvoiceID  uint      `gorm:"not null;index" json:"invoice_id"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Amount     int64     `gorm:"not null;default:0" json:"amount"`
	ErrorCode  string    `gorm:"type:varchar(64);not null;default:'unknown_failure'" json:"error_code"`
	Status     string    `gorm:"type:varchar(32);not null;default:'unresolved';index" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Customer         Customer          `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Invoice          Invoice           `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
	RecoveryAttempts []RecoveryAttempt `gorm:"foreignKey:FailedPaymentID" json:"recovery_attempts,omitempty"`
}
