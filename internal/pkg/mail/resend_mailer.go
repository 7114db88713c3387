package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/recoverly/recoverly/internal/pkg/env"
)

const (
	resendBaseURL  = "https://api.resend.com/emails"
	requestTimeout = 30 * time.Second
)

// Mailer delivers a transactional HTML email and returns the provider's
// delivery id.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

// ResendMailer sends emails through the Resend HTTP API. When no API key is
// configured it logs the message and reports a simulated delivery id so local
// setups without credentials keep working.
type ResendMailer struct {
	apiKey  string
	sender  string
	baseURL string
	client  *http.Client
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type sendError struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// NewResendMailer creates a mailer for the given API key and sender address.
func NewResendMailer(apiKey, sender string) *ResendMailer {
	if sender == "" {
		sender = "Billing Recovery <onboarding@resend.dev>"
	}
	return &ResendMailer{
		apiKey:  apiKey,
		sender:  sender,
		baseURL: resendBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// NewResendMailerFromEnv builds the mailer from RESEND_* environment settings.
func NewResendMailerFromEnv() *ResendMailer {
	return NewResendMailer(
		env.GetEnv("RESEND_API_KEY", ""),
		env.GetEnv("RESEND_SENDER", ""),
	)
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	if m.apiKey == "" {
		log.Printf("RESEND_API_KEY not set, simulating email send to %s: %s", to, subject)
		return "simulated_email_id", nil
	}

	payload, err := json.Marshal(sendRequest{
		From:    m.sender,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("email send request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr sendError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return "", fmt.Errorf("email send error (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("email send error: status %d", resp.StatusCode)
	}

	var parsed sendResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	log.Printf("Email sent to %s (delivery id %s)", to, parsed.ID)
	return parsed.ID, nil
}
