package models

import "time"

const (
	InvoiceStatusOpen = "open"
	InvoiceStatusPaid = "paid"
	InvoiceStatusVoid = "void"
)

// Invoice mirrors a processor invoice. Amounts are integer minor currency
// units. One row per external invoice id, upserted on webhook retries.
type Invoice struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	StripeInvoiceID  string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_invoice_id"`
	CustomerID       uint      `gorm:"not null;index" json:"customer_id"`
	AmountDue        int64     `gorm:"not null;default:0" json:"amount_due"`
	Status           string    `gorm:"type:varchar(32);not null;default:'open'" json:"status"`
	HostedInvoiceURL string    `gorm:"type:varchar(512);default:null" json:"hosted_invoice_url,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
