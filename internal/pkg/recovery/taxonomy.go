package recovery

import (
	"fmt"
	"strings"
)

// Tone identifiers accepted by the composer. Anything else resolves to friendly.
const (
	ToneFriendly = "friendly"
	ToneFormal   = "formal"
	ToneUrgent   = "urgent"
)

var toneInstructions = map[string]string{
	ToneFriendly: "Use a warm, empathetic, and slightly casual tone. Show genuine concern for the customer. Use encouraging language.",
	ToneFormal:   "Use a professional, corporate tone. Be courteous but businesslike. Reference account details precisely.",
	ToneUrgent:   "Use a time-sensitive, direct tone. Emphasize the importance of immediate action to prevent service disruption. Be clear but not aggressive.",
}

var declineExplanations = map[string]string{
	"insufficient_funds": "The payment failed because the card on file did not have sufficient funds.",
	"expired_card":       "The card on file has expired and needs to be replaced with an updated payment method.",
	"bank_declined":      "The issuing bank declined the transaction. The customer may need to contact their bank or use a different card.",
	"fraudulent":         "The payment was flagged by the fraud detection system. The customer should verify their identity and payment details.",
	"processing_error":   "A temporary processing error occurred. The customer should retry or use an alternative payment method.",
}

// NormalizeTone maps any tone identifier to one of the known tones,
// defaulting to friendly.
func NormalizeTone(tone string) string {
	t := strings.ToLower(strings.TrimSpace(tone))
	if _, ok := toneInstructions[t]; ok {
		return t
	}
	return ToneFriendly
}

// ToneInstruction returns the writing-style instruction for a tone identifier.
func ToneInstruction(tone string) string {
	return toneInstructions[NormalizeTone(tone)]
}

// DeclineExplanation returns a human-readable explanation for a decline code.
// Unknown codes get a generic explanation that still names the code.
func DeclineExplanation(code string) string {
	if explanation, ok := declineExplanations[strings.TrimSpace(code)]; ok {
		return explanation
	}
	return fmt.Sprintf("The payment was declined with reason: %s", code)
}
