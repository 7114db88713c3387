package recovery

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/recoverly/recoverly/app/models"
	"gorm.io/gorm"
)

// ReconcileSucceededInvoice marks the unresolved failed payment for an
// external invoice id as recovered and writes the recovered-revenue ledger
// row. Idempotent: a second call finds no unresolved record and no-ops.
func (s *Service) ReconcileSucceededInvoice(ctx context.Context, stripeInvoiceID string) error {
	_ = ctx

	invoice, err := s.repo.GetInvoiceByStripeID(stripeInvoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("invoice lookup %s: %w", stripeInvoiceID, err)
	}

	fp, err := s.repo.GetUnresolvedFailedPaymentByInvoice(invoice.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed payment lookup for invoice %d: %w", invoice.ID, err)
	}

	if err := s.repo.MarkFailedPaymentRecovered(fp.ID); err != nil {
		return fmt.Errorf("mark failed payment %d recovered: %w", fp.ID, err)
	}

	// No rollback path: a ledger insert failure after the status flip leaves
	// the payment recovered and the ledger row missing.
	if err := s.repo.CreateRecoveredRevenue(&models.RecoveredRevenue{
		FailedPaymentID: fp.ID,
		AmountRecovered: fp.Amount,
	}); err != nil {
		return fmt.Errorf("record recovered revenue for failed payment %d: %w", fp.ID, err)
	}

	log.Printf("Successfully logged recovered revenue for invoice %s", stripeInvoiceID)
	return nil
}
