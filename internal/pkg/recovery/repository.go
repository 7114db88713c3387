package recovery

import (
	"time"

	"github.com/recoverly/recoverly/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the recovery service.
type Repository interface {
	GetCustomerByStripeID(stripeCustomerID string) (*models.Customer, error)
	GetCustomerByEmail(email string) (*models.Customer, error)
	CreateCustomer(customer *models.Customer) error
	// CreateCustomerBasic inserts only the mandatory customer columns. Used
	// as the one-shot fallback when the store lacks the optional profile
	// columns.
	CreateCustomerBasic(customer *models.Customer) error

	UpsertInvoice(invoice *models.Invoice) error
	GetInvoiceByStripeID(stripeInvoiceID string) (*models.Invoice, error)

	UpsertSubscription(sub *models.Subscription) error

	CreateFailedPayment(fp *models.FailedPayment) error
	GetUnresolvedFailedPaymentByInvoice(invoiceID uint) (*models.FailedPayment, error)
	MarkFailedPaymentRecovered(id uint) error
	GetFailedPaymentWithRelations(id uint) (*FailedPaymentWithRelations, error)
	ListFailedPaymentsWithRelations() ([]FailedPaymentWithRelations, error)

	CreateRecoveryAttempt(attempt *models.RecoveryAttempt) error
	UpdateRecoveryAttemptStatus(id uint, status string) error

	CreateRecoveredRevenue(rr *models.RecoveredRevenue) error
	SumRecoveredRevenue() (int64, error)

	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error

	// Transaction runs fn against a repository bound to a single DB
	// transaction, committing on nil and rolling back on error.
	Transaction(fn func(Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a recovery repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetCustomerByStripeID(stripeCustomerID string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("stripe_customer_id = ?", stripeCustomerID).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *gormRepository) GetCustomerByEmail(email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("email = ?", email).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *gormRepository) CreateCustomer(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

func (r *gormRepository) CreateCustomerBasic(customer *models.Customer) error {
	return r.db.
		Select("StripeCustomerID", "Name", "Email", "CreatedAt", "UpdatedAt").
		Create(customer).Error
}

func (r *gormRepository) UpsertInvoice(invoice *models.Invoice) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stripe_invoice_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer_id",
			"amount_due",
			"status",
			"hosted_invoice_url",
			"updated_at",
		}),
	}).Create(invoice).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("stripe_invoice_id = ?", invoice.StripeInvoiceID).
		First(invoice).Error
}

func (r *gormRepository) GetInvoiceByStripeID(stripeInvoiceID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Where("stripe_invoice_id = ?", stripeInvoiceID).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *gormRepository) UpsertSubscription(sub *models.Subscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"stripe_sub_id",
			"status",
			"plan_level",
			"monthly_revenue",
			"updated_at",
		}),
	}).Create(sub).Error
}

func (r *gormRepository) CreateFailedPayment(fp *models.FailedPayment) error {
	return r.db.Create(fp).Error
}

func (r *gormRepository) GetUnresolvedFailedPaymentByInvoice(invoiceID uint) (*models.FailedPayment, error) {
	var fp models.FailedPayment
	err := r.db.
		Where("invoice_id = ? AND status = ?", invoiceID, models.FailedPaymentStatusUnresolved).
		First(&fp).Error
	if err != nil {
		return nil, err
	}
	return &fp, nil
}

func (r *gormRepository) MarkFailedPaymentRecovered(id uint) error {
	return r.db.Model(&models.FailedPayment{}).
		Where("id = ?", id).
		Update("status", models.FailedPaymentStatusRecovered).Error
}

func (r *gormRepository) GetFailedPaymentWithRelations(id uint) (*FailedPaymentWithRelations, error) {
	var fp models.FailedPayment
	err := r.db.
		Preload("Customer").
		Preload("Invoice").
		Preload("RecoveryAttempts").
		First(&fp, id).Error
	if err != nil {
		return nil, err
	}
	return toRelations(fp), nil
}

func (r *gormRepository) ListFailedPaymentsWithRelations() ([]FailedPaymentWithRelations, error) {
	var fps []models.FailedPayment
	err := r.db.
		Preload("Customer").
		Preload("Invoice").
		Preload("RecoveryAttempts").
		Order("created_at DESC").
		Find(&fps).Error
	if err != nil {
		return nil, err
	}

	out := make([]FailedPaymentWithRelations, 0, len(fps))
	for _, fp := range fps {
		out = append(out, *toRelations(fp))
	}
	return out, nil
}

func toRelations(fp models.FailedPayment) *FailedPaymentWithRelations {
	rel := &FailedPaymentWithRelations{
		Customer: fp.Customer,
		Invoice:  fp.Invoice,
		Attempts: fp.RecoveryAttempts,
	}
	fp.Customer = models.Customer{}
	fp.Invoice = models.Invoice{}
	fp.RecoveryAttempts = nil
	rel.FailedPayment = fp
	return rel
}

func (r *gormRepository) CreateRecoveryAttempt(attempt *models.RecoveryAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *gormRepository) UpdateRecoveryAttemptStatus(id uint, status string) error {
	return r.db.Model(&models.RecoveryAttempt{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *gormRepository) CreateRecoveredRevenue(rr *models.RecoveredRevenue) error {
	return r.db.Create(rr).Error
}

func (r *gormRepository) SumRecoveredRevenue() (int64, error) {
	var total int64
	err := r.db.Model(&models.RecoveredRevenue{}).
		Select("COALESCE(SUM(amount_recovered), 0)").
		Scan(&total).Error
	return total, err
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
