package recovery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/recoverly/recoverly/app/models"
	"gorm.io/gorm"
)

// simulatedHostedInvoiceURL stands in for the processor's hosted invoice page
// on simulated failures.
const simulatedHostedInvoiceURL = "https://billing.stripe.com/test/invoice/hosted_url"

// SimulateFailedPayment synthesizes a failure for manual testing: resolve or
// create the customer, create an invoice and failed payment, best-effort
// upsert the subscription and run the recovery workflow. The result surface
// is closed; no error escapes.
func (s *Service) SimulateFailedPayment(ctx context.Context, in SimulationInput) SimulationResult {
	if err := in.Validate(); err != nil {
		return failedSimulation(err)
	}

	customer, err := s.resolveOrCreateCustomer(in)
	if err != nil {
		log.Printf("Simulation customer resolution failed: %v", err)
		return failedSimulation(errors.New("failed to identify or create test customer"))
	}

	invoice := &models.Invoice{
		StripeInvoiceID: syntheticID("test_inv"),
		CustomerID:      customer.ID,
		AmountDue:       in.Amount,
		Status:          models.InvoiceStatusOpen,
	}
	if err := s.repo.UpsertInvoice(invoice); err != nil {
		log.Printf("Simulation invoice creation failed: %v", err)
		return failedSimulation(errors.New("failed to create test invoice"))
	}

	// Advisory write: the subscription row only feeds dashboard filtering.
	plan := in.Plan
	if plan == "" {
		plan = "Basic"
	}
	if err := s.repo.UpsertSubscription(&models.Subscription{
		CustomerID:     customer.ID,
		StripeSubID:    syntheticID("test_sub"),
		Status:         models.SubscriptionStatusActive,
		PlanLevel:      plan,
		MonthlyRevenue: in.Amount,
	}); err != nil {
		log.Printf("Subscription upsert skipped: %v", err)
	}

	fp := &models.FailedPayment{
		InvoiceID:  invoice.ID,
		CustomerID: customer.ID,
		Amount:     in.Amount,
		ErrorCode:  in.Reason,
		Status:     models.FailedPaymentStatusUnresolved,
	}
	if err := s.repo.CreateFailedPayment(fp); err != nil {
		log.Printf("Simulation failed payment creation failed: %v", err)
		return failedSimulation(errors.New("failed to create failed payment record"))
	}

	result := s.RunRecoveryWorkflow(ctx, RecoveryInput{
		FailedPaymentID:  fp.ID,
		CustomerName:     in.Name,
		CustomerEmail:    in.Email,
		AmountDue:        in.Amount,
		DeclineCode:      in.Reason,
		HostedInvoiceURL: simulatedHostedInvoiceURL,
		Tone:             in.Tone,
	})

	return SimulationResult{Success: true, EmailPreview: result.EmailBody}
}

// resolveOrCreateCustomer finds the customer by email or creates one. When the
// store lacks the optional profile columns the insert is retried exactly once
// with only the mandatory fields.
func (s *Service) resolveOrCreateCustomer(in SimulationInput) (*models.Customer, error) {
	customer, err := s.repo.GetCustomerByEmail(in.Email)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer = &models.Customer{
		StripeCustomerID: syntheticID("test_cus"),
		Name:             in.Name,
		Email:            in.Email,
		CompanyName:      in.Company,
		Country:          in.Country,
	}
	createErr := s.repo.CreateCustomer(customer)
	if createErr == nil {
		return customer, nil
	}
	if !isSchemaMismatchError(createErr) {
		return nil, createErr
	}

	log.Printf("Falling back to basic customer creation (missing profile columns): %v", createErr)
	basic := &models.Customer{
		StripeCustomerID: customer.StripeCustomerID,
		Name:             in.Name,
		Email:            in.Email,
	}
	if err := s.repo.CreateCustomerBasic(basic); err != nil {
		return nil, err
	}
	return basic, nil
}

// RetriggerRecovery re-runs outreach for an existing failed payment. It does
// not create new invoice or failure records.
func (s *Service) RetriggerRecovery(ctx context.Context, failedPaymentID uint) error {
	rel, err := s.repo.GetFailedPaymentWithRelations(failedPaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load failed payment %d: %w", failedPaymentID, err)
	}

	s.RunRecoveryWorkflow(ctx, RecoveryInput{
		FailedPaymentID:  rel.FailedPayment.ID,
		CustomerName:     rel.Customer.Name,
		CustomerEmail:    rel.Customer.Email,
		AmountDue:        rel.FailedPayment.Amount,
		DeclineCode:      rel.FailedPayment.ErrorCode,
		HostedInvoiceURL: rel.Invoice.HostedInvoiceURL,
		Tone:             ToneFriendly,
	})
	return nil
}

// isSchemaMismatchError detects the MySQL unknown-column error raised when the
// optional customer profile columns are absent from the store.
func isSchemaMismatchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Unknown column") || strings.Contains(msg, "Error 1054")
}

func failedSimulation(err error) SimulationResult {
	return SimulationResult{Success: false, Error: err.Error()}
}

func syntheticID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", ""))
}
