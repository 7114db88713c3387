package recovery

import (
	"context"
	"log"

	"github.com/recoverly/recoverly/app/models"
)

// RecoverySubject is the subject line of every outreach email.
const RecoverySubject = "Action Required: Update your Payment Method"

// RunRecoveryWorkflow drives one recovery run for an existing failed payment:
// compose the email, log the attempt, dispatch, record the terminal status.
// It never returns an error: generation, attempt-log and delivery failures
// are absorbed and reported as recoverable steps on the result.
func (s *Service) RunRecoveryWorkflow(ctx context.Context, in RecoveryInput) WorkflowResult {
	tone := NormalizeTone(in.Tone)
	log.Printf("Initiating recovery workflow for %s - Amount: $%s - Tone: %s",
		in.CustomerEmail, FormatAmount(in.AmountDue), tone)

	var result WorkflowResult

	// 1. Compose. A generation failure means the deterministic fallback body
	// was used; the workflow continues either way.
	body, genErr := s.composer.ComposeEmail(ctx, in)
	result.EmailBody = body
	result.Steps = append(result.Steps, stepResult(StepCompose, genErr))
	if genErr != nil {
		log.Printf("Email generation failed, using fallback body: %v", genErr)
	}

	// 2. Log the attempt. A failed insert must not block customer-facing
	// recovery; the terminal status update degrades to a no-op instead.
	attempt := &models.RecoveryAttempt{
		FailedPaymentID: in.FailedPaymentID,
		EmailBody:       body,
		Status:          models.RecoveryAttemptStatusSending,
	}
	if err := s.repo.CreateRecoveryAttempt(attempt); err != nil {
		log.Printf("Failed to log recovery attempt for failed payment %d: %v", in.FailedPaymentID, err)
		result.Steps = append(result.Steps, stepResult(StepLogAttempt, err))
		attempt.ID = 0
	} else {
		result.Steps = append(result.Steps, stepResult(StepLogAttempt, nil))
	}

	// 3. Dispatch.
	deliveryID, sendErr := s.mailer.Send(ctx, in.CustomerEmail, RecoverySubject, body)
	result.Steps = append(result.Steps, stepResult(StepDeliver, sendErr))

	// 4. Terminal status. Skipped when the attempt row was never written.
	status := models.RecoveryAttemptStatusSent
	if sendErr != nil {
		log.Printf("Email dispatch failed for %s: %v", in.CustomerEmail, sendErr)
		status = models.RecoveryAttemptStatusFailed
	}
	if attempt.ID != 0 {
		if err := s.repo.UpdateRecoveryAttemptStatus(attempt.ID, status); err != nil {
			log.Printf("Failed to update recovery attempt %d status: %v", attempt.ID, err)
			result.Steps = append(result.Steps, stepResult(StepFinalize, err))
		} else {
			result.Steps = append(result.Steps, stepResult(StepFinalize, nil))
		}
	}

	if sendErr == nil {
		log.Printf("Recovery email dispatched to %s (delivery id %s)", in.CustomerEmail, deliveryID)
	}
	return result
}

func stepResult(step string, err error) StepResult {
	if err != nil {
		return StepResult{Step: step, Outcome: OutcomeRecoverable, Err: err}
	}
	return StepResult{Step: step, Outcome: OutcomeOK}
}
