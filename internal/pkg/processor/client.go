package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/recoverly/recoverly/internal/pkg/env"
)

const (
	stripeBaseURL  = "https://api.stripe.com"
	requestTimeout = 30 * time.Second
)

// PaymentIntent carries the fields of a processor payment intent the recovery
// workflow cares about.
type PaymentIntent struct {
	ID          string
	DeclineCode string
}

// Client looks up processor-side objects referenced by webhook events.
type Client interface {
	RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

type stripeClient struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

type paymentIntentResponse struct {
	ID               string `json:"id"`
	LastPaymentError *struct {
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
	} `json:"last_payment_error"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewStripeClient creates a processor client authorized with the given secret key.
func NewStripeClient(secretKey string) Client {
	return &stripeClient{
		secretKey: secretKey,
		baseURL:   stripeBaseURL,
		client:    &http.Client{Timeout: requestTimeout},
	}
}

// NewStripeClientFromEnv builds the client from STRIPE_SECRET_KEY.
func NewStripeClientFromEnv() Client {
	return NewStripeClient(env.GetEnv("STRIPE_SECRET_KEY", ""))
}

func (c *stripeClient) RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	if c.secretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY not set")
	}

	url := fmt.Sprintf("%s/v1/payment_intents/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment intent request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr stripeError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("payment intent lookup (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("payment intent lookup: status %d", resp.StatusCode)
	}

	var parsed paymentIntentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	pi := &PaymentIntent{ID: parsed.ID}
	if parsed.LastPaymentError != nil {
		pi.DeclineCode = parsed.LastPaymentError.DeclineCode
		if pi.DeclineCode == "" {
			pi.DeclineCode = parsed.LastPaymentError.Code
		}
	}
	return pi, nil
}
