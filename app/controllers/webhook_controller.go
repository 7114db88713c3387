package controllers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/recoverly/recoverly/app/models"
	"github.com/recoverly/recoverly/internal/pkg/env"
	"github.com/recoverly/recoverly/internal/pkg/recovery"
	"github.com/recoverly/recoverly/internal/pkg/statistics"
)

// WebhookController handles payment-processor webhook deliveries.
type WebhookController struct {
	svc *recovery.Service
}

// NewWebhookController creates the controller with an injected recovery service.
func NewWebhookController(svc *recovery.Service) *WebhookController {
	return &WebhookController{svc: svc}
}

// HandleStripeWebhook verifies, records and dispatches a Stripe event.
// Deliveries with an already-seen event id are acknowledged as duplicates
// only once a previous delivery finished without a processing error, so a
// retry of a failed event is processed again instead of dropped.
func (wc *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")
	if secret == "" {
		log.Printf("Missing STRIPE_WEBHOOK_SECRET")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "config_error"})
	}

	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")

	if !recovery.VerifyStripeWebhookSignature(rawBody, signature, secret) {
		log.Printf("Webhook signature verification failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	event, err := recovery.ParseStripeInvoiceEvent(rawBody)
	if err != nil {
		log.Printf("Webhook payload decode failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	created, stored, err := wc.svc.RecordWebhookEvent(ctx, recovery.WebhookEventInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: event.EventID,
		EventType:       event.Type,
		PayloadJSON:     string(rawBody),
		SignatureValid:  true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created && stored.ProcessedAt != nil && stored.ProcessingError == "" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	}

	var handleErr error
	switch event.Type {
	case recovery.EventPaymentFailed:
		handleErr = wc.svc.HandlePaymentFailed(ctx, event.Invoice)
	case recovery.EventPaymentSucceeded:
		handleErr = wc.svc.ReconcileSucceededInvoice(ctx, event.Invoice.ID)
	default:
		log.Printf("Unhandled event type: %s", event.Type)
		_ = wc.svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "ignored": true})
	}

	_ = wc.svc.MarkWebhookProcessed(ctx, stored.ID, handleErr)
	if handleErr != nil {
		log.Printf("Error processing webhook event %s: %v", event.EventID, handleErr)
		resp := fiber.Map{"error": "internal_error"}
		if env.IsDev() {
			resp["detail"] = handleErr.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}

	statistics.InvalidateDashboardStats()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
