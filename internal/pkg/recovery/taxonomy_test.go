package recovery

import (
	"strings"
	"testing"
)

func TestDeclineExplanationKnownCodes(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{code: "insufficient_funds", want: "sufficient funds"},
		{code: "expired_card", want: "expired"},
		{code: "bank_declined", want: "issuing bank"},
		{code: "fraudulent", want: "fraud"},
		{code: "processing_error", want: "processing error"},
	}

	for _, tt := range tests {
		got := DeclineExplanation(tt.code)
		if !strings.Contains(got, tt.want) {
			t.Fatalf("DeclineExplanation(%q) = %q, want substring %q", tt.code, got, tt.want)
		}
	}
}

func TestDeclineExplanationUnknownCodeNamesTheCode(t *testing.T) {
	for _, code := range []string{"do_not_honor", "some_new_code", ""} {
		got := DeclineExplanation(code)
		if !strings.Contains(got, code) {
			t.Fatalf("DeclineExplanation(%q) = %q, expected the literal code", code, got)
		}
	}
}

func TestToneInstructionDefaultsToFriendly(t *testing.T) {
	friendly := ToneInstruction(ToneFriendly)
	for _, tone := range []string{"", "sarcastic", "FRIENDLY", " friendly "} {
		if got := ToneInstruction(tone); got != friendly {
			t.Fatalf("ToneInstruction(%q) = %q, want friendly instruction", tone, got)
		}
	}
}

func TestToneInstructionsDiffer(t *testing.T) {
	friendly := ToneInstruction(ToneFriendly)
	formal := ToneInstruction(ToneFormal)
	urgent := ToneInstruction(ToneUrgent)

	if friendly == formal || friendly == urgent || formal == urgent {
		t.Fatalf("expected distinct instructions per tone")
	}
}

func TestNormalizeTone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "urgent", want: ToneUrgent},
		{in: " Formal ", want: ToneFormal},
		{in: "unknown", want: ToneFriendly},
		{in: "", want: ToneFriendly},
	}

	for _, tt := range tests {
		if got := NormalizeTone(tt.in); got != tt.want {
			t.Fatalf("NormalizeTone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
