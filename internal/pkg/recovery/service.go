package recovery

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/recoverly/recoverly/app/models"
	"github.com/recoverly/recoverly/internal/pkg/mail"
	"github.com/recoverly/recoverly/internal/pkg/processor"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a retrigger names a failed payment that does
// not exist.
var ErrNotFound = errors.New("failed payment not found")

// Service drives the failed-payment recovery workflow: intake, composition,
// dispatch, status bookkeeping and reconciliation. Constructed once at startup
// with its collaborators and reused across requests.
type Service struct {
	repo      Repository
	composer  *Composer
	mailer    mail.Mailer
	processor processor.Client
}

// NewService creates a recovery service from injected collaborators.
func NewService(repo Repository, gen TextGenerator, mailer mail.Mailer, proc processor.Client) *Service {
	return &Service{
		repo:      repo,
		composer:  NewComposer(gen),
		mailer:    mailer,
		processor: proc,
	}
}

// NewServiceFromDB creates a recovery service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, gen TextGenerator, mailer mail.Mailer, proc processor.Client) *Service {
	return NewService(NewRepository(db), gen, mailer, proc)
}

// RecordWebhookEvent persists webhook payloads idempotently. Events without a
// provider event id are keyed by a payload hash.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// DashboardRecords returns all failed payments with their joined customer,
// invoice and attempt rows, newest first.
func (s *Service) DashboardRecords(ctx context.Context) ([]FailedPaymentWithRelations, error) {
	_ = ctx
	return s.repo.ListFailedPaymentsWithRelations()
}

// Repo exposes the underlying repository for read-side consumers (statistics).
func (s *Service) Repo() Repository {
	return s.repo
}
