package recovery

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/recoverly/recoverly/app/models"
	"gorm.io/gorm"
)

const unknownDeclineCode = "unknown_failure"

// HandlePaymentFailed processes an invoice.payment_failed event: resolve the
// customer, upsert the invoice, record the failed payment and trigger the
// recovery workflow. Missing or broken customer/invoice/failed-payment stages
// abort the event silently so the processor is not asked to retry; only a
// payment-intent lookup failure is surfaced to the caller.
func (s *Service) HandlePaymentFailed(ctx context.Context, inv StripeInvoice) error {
	if inv.CustomerID == "" || inv.PaymentIntentID == "" {
		log.Printf("Ignoring payment_failed event without customer or payment intent (invoice %s)", inv.ID)
		return nil
	}

	customer, err := s.repo.GetCustomerByStripeID(inv.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Customer not found for Stripe ID: %s", inv.CustomerID)
		} else {
			log.Printf("Customer lookup failed for Stripe ID %s: %v", inv.CustomerID, err)
		}
		return nil
	}

	pi, err := s.processor.RetrievePaymentIntent(ctx, inv.PaymentIntentID)
	if err != nil {
		return fmt.Errorf("retrieve payment intent %s: %w", inv.PaymentIntentID, err)
	}
	declineCode := pi.DeclineCode
	if declineCode == "" {
		declineCode = unknownDeclineCode
	}

	// Invoice upsert and failed-payment insert commit or fail together so a
	// mid-sequence store error cannot leave an invoice without its failure
	// record.
	var fp *models.FailedPayment
	txErr := s.repo.Transaction(func(tx Repository) error {
		invoice := &models.Invoice{
			StripeInvoiceID:  inv.ID,
			CustomerID:       customer.ID,
			AmountDue:        inv.AmountDue,
			Status:           models.InvoiceStatusOpen,
			HostedInvoiceURL: inv.HostedInvoiceURL,
		}
		if err := tx.UpsertInvoice(invoice); err != nil {
			return fmt.Errorf("upsert invoice %s: %w", inv.ID, err)
		}

		fp = &models.FailedPayment{
			InvoiceID:  invoice.ID,
			CustomerID: customer.ID,
			Amount:     inv.AmountDue,
			ErrorCode:  declineCode,
			Status:     models.FailedPaymentStatusUnresolved,
		}
		return tx.CreateFailedPayment(fp)
	})
	if txErr != nil {
		log.Printf("Failed to record payment failure for invoice %s: %v", inv.ID, txErr)
		return nil
	}

	customerName := customer.Name
	if customerName == "" {
		customerName = "Valued Customer"
	}

	s.RunRecoveryWorkflow(ctx, RecoveryInput{
		FailedPaymentID:  fp.ID,
		CustomerName:     customerName,
		CustomerEmail:    customer.Email,
		AmountDue:        inv.AmountDue,
		DeclineCode:      declineCode,
		HostedInvoiceURL: inv.HostedInvoiceURL,
	})
	return nil
}
