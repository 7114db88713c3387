package models

import "time"

const (
	RecoveryAttemptStatusSending = "sending"
	RecoveryAttemptStatusSent    = "sent"
	RecoveryAttemptStatusFailed  = "failed"
)

// RecoveryAttempt is one outreach attempt for a failed payment. Created with
// status "sending" before dispatch and moved to its terminal status (sent or
// failed) once the delivery call returns. Manual retriggers add more rows.
type RecoveryAttempt struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FailedPaymentID uint      `gorm:"not null;index" json:"failed_payment_id"`
	EmailBody       string    `gorm:"type:longtext" json:"email_body"`
	Status          string    `gorm:"type:varchar(32);not null;default:'sending'" json:"status"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
