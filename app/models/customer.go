package models

import "time"

// Payment provider constants used across recovery-related models.
const (
	PaymentProviderStripe = "stripe"
)

// Customer is a billing customer as known to the payment processor. A customer
// is created on the first observed failure for an email/processor id we have
// not seen before and never deleted by the recovery workflow.
type Customer struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	StripeCustomerID string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_customer_id"`
	Name             string    `gorm:"type:varchar(150)" json:"name"`
	Email            string    `gorm:"type:varchar(200);not null;index" json:"email"`
	CompanyName      string    `gorm:"type:varchar(200);default:null" json:"company_name,omitempty"`
	Country          string    `gorm:"type:varchar(100);default:null" json:"country,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
