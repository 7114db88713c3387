package recovery

import (
	"testing"
)

func TestParseStripeInvoiceEvent(t *testing.T) {
	raw := []byte(`{
		"id": "evt_123",
		"type": "invoice.payment_failed",
		"data": {
			"object": {
				"id": "in_456",
				"customer": "cus_789",
				"payment_intent": "pi_abc",
				"amount_due": 2900,
				"hosted_invoice_url": "https://invoice.example/in_456"
			}
		}
	}`)

	ev, err := ParseStripeInvoiceEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.EventID != "evt_123" || ev.Type != EventPaymentFailed {
		t.Fatalf("unexpected envelope: id=%q type=%q", ev.EventID, ev.Type)
	}
	if ev.Invoice.ID != "in_456" || ev.Invoice.CustomerID != "cus_789" || ev.Invoice.PaymentIntentID != "pi_abc" {
		t.Fatalf("unexpected invoice ids: %+v", ev.Invoice)
	}
	if ev.Invoice.AmountDue != 2900 {
		t.Fatalf("expected amount_due 2900, got %d", ev.Invoice.AmountDue)
	}
}

func TestParseStripeInvoiceEventExpandedObjects(t *testing.T) {
	raw := []byte(`{
		"id": "evt_124",
		"type": "invoice.payment_succeeded",
		"data": {
			"object": {
				"id": "in_457",
				"customer": {"id": "cus_790", "email": "c@example.com"},
				"payment_intent": {"id": "pi_abd"},
				"amount_due": 1500
			}
		}
	}`)

	ev, err := ParseStripeInvoiceEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Invoice.CustomerID != "cus_790" || ev.Invoice.PaymentIntentID != "pi_abd" {
		t.Fatalf("expected expanded objects to decode to ids, got %+v", ev.Invoice)
	}
}

func TestParseStripeInvoiceEventRejectsGarbage(t *testing.T) {
	if _, err := ParseStripeInvoiceEvent([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
	if _, err := ParseStripeInvoiceEvent([]byte(`{"id":"evt_1"}`)); err == nil {
		t.Fatalf("expected error for event without type")
	}
}
