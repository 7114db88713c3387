package models

import "time"

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription carries the plan tier and monthly revenue used for dashboard
// filtering. The row is advisory: the recovery workflow never depends on it
// and its upsert failing must not abort anything.
type Subscription struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CustomerID     uint      `gorm:"not null;uniqueIndex" json:"customer_id"`
	StripeSubID    string    `gorm:"type:varchar(191);not null" json:"stripe_sub_id"`
	Status         string    `gorm:"type:varchar(32);not null;default:'active'" json:"status"`
	PlanLevel      string    `gorm:"type:varchar(50);not null;default:'Basic'" json:"plan_level"`
	MonthlyRevenue int64     `gorm:"not null;default:0" json:"monthly_revenue"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
