package recovery

import (
	"context"
	"fmt"
)

// TextGenerator is the language-model collaborator: system+user prompt in,
// generated text out.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Composer produces the recovery email body. Generation failures never
// surface: a deterministic fallback template is substituted instead.
type Composer struct {
	gen TextGenerator
}

// NewComposer creates a composer using the given language-model collaborator.
func NewComposer(gen TextGenerator) *Composer {
	return &Composer{gen: gen}
}

// ComposeEmail returns the email body for a failure context. The body is
// always usable; the returned error, if any, is the underlying generation
// failure that forced the fallback template.
func (c *Composer) ComposeEmail(ctx context.Context, in RecoveryInput) (string, error) {
	amountFormatted := FormatAmount(in.AmountDue)

	body, err := c.gen.Generate(ctx, systemPrompt(in.Tone), userPrompt(in, amountFormatted))
	if err != nil || body == "" {
		if err == nil {
			err = fmt.Errorf("language model returned empty body")
		}
		return fallbackBody(in, amountFormatted), err
	}
	return body, nil
}

// FormatAmount renders minor currency units as a two-decimal string.
func FormatAmount(minorUnits int64) string {
	return fmt.Sprintf("%.2f", float64(minorUnits)/100)
}

func systemPrompt(tone string) string {
	return fmt.Sprintf(
		"You are a professional customer success manager at a SaaS company specializing in subscription recovery. %s",
		ToneInstruction(tone),
	)
}

func userPrompt(in RecoveryInput, amountFormatted string) string {
	return fmt.Sprintf(`Write a personalized recovery email to a customer whose subscription payment failed.

Context:
- Customer Name: %s
- Amount Due: $%s
- Decline Reason: %s
- Payment Update Link: %s

Requirements:
- Provide ONLY the email body (no "Subject:" prefix)
- Format with HTML (use <p>, <a>, <strong>, etc.)
- Be concise (3-4 paragraphs max)
- Include a clear call-to-action button/link to update payment
- Adapt the message to the specific decline reason
- Make it feel personal, not template-generated`,
		in.CustomerName, amountFormatted, DeclineExplanation(in.DeclineCode), in.HostedInvoiceURL)
}

func fallbackBody(in RecoveryInput, amountFormatted string) string {
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>We noticed your recent payment of <strong>$%s</strong> couldn't be processed (Reason: %s).</p>
<p>To keep your subscription active and avoid any interruption, please update your payment method at your earliest convenience:</p>
<p><a href="%s" style="display:inline-block;padding:10px 24px;background-color:#4f46e5;color:white;text-decoration:none;border-radius:8px;font-weight:bold;">Update Payment Method</a></p>
<p>If you have any questions, we're here to help.</p>
<p>Best regards,<br/>The Billing Team</p>`,
		in.CustomerName, amountFormatted, in.DeclineCode, in.HostedInvoiceURL)
}
