package recovery

import (
	"encoding/json"
	"fmt"
)

// Event types recognized by the webhook intake.
const (
	EventPaymentFailed    = "invoice.payment_failed"
	EventPaymentSucceeded = "invoice.payment_succeeded"
)

// StripeInvoiceEvent is the decoded shape of an invoice webhook event.
type StripeInvoiceEvent struct {
	EventID string
	Type    string
	Invoice StripeInvoice
}

// StripeInvoice carries the invoice fields used by intake and reconciliation.
type StripeInvoice struct {
	ID               string
	CustomerID       string
	PaymentIntentID  string
	AmountDue        int64
	HostedInvoiceURL string
}

// expandableID decodes Stripe fields that are either a bare id string or an
// expanded object carrying one.
type expandableID string

func (e *expandableID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = expandableID(s)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*e = expandableID(obj.ID)
	return nil
}

type stripeEventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID               string       `json:"id"`
			Customer         expandableID `json:"customer"`
			PaymentIntent    expandableID `json:"payment_intent"`
			AmountDue        int64        `json:"amount_due"`
			HostedInvoiceURL string       `json:"hosted_invoice_url"`
		} `json:"object"`
	} `json:"data"`
}

// ParseStripeInvoiceEvent decodes a raw webhook payload into the normalized
// invoice event shape.
func ParseStripeInvoiceEvent(raw []byte) (*StripeInvoiceEvent, error) {
	var envelope stripeEventEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	if envelope.Type == "" {
		return nil, fmt.Errorf("webhook event missing type")
	}

	return &StripeInvoiceEvent{
		EventID: envelope.ID,
		Type:    envelope.Type,
		Invoice: StripeInvoice{
			ID:               envelope.Data.Object.ID,
			CustomerID:       string(envelope.Data.Object.Customer),
			PaymentIntentID:  string(envelope.Data.Object.PaymentIntent),
			AmountDue:        envelope.Data.Object.AmountDue,
			HostedInvoiceURL: envelope.Data.Object.HostedInvoiceURL,
		},
	}, nil
}
