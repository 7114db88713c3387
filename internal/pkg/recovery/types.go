package recovery

import (
	"github.com/go-playground/validator/v10"
	"github.com/recoverly/recoverly/app/models"
)

// RecoveryInput is the failure context handed to the workflow. The failed
// payment row must already exist; intake adapters create it before invoking
// the workflow.
type RecoveryInput struct {
	FailedPaymentID  uint
	CustomerName     string
	CustomerEmail    string
	AmountDue        int64 // minor currency units
	DeclineCode      string
	HostedInvoiceURL string
	Tone             string
}

// SimulationInput is a manually submitted failure used for testing the
// pipeline without a processor event. Amount is in minor currency units.
type SimulationInput struct {
	Name    string `json:"name" validate:"required,min=1,max=150"`
	Email   string `json:"email" validate:"required,email,max=200"`
	Amount  int64  `json:"amount" validate:"required,gt=0"`
	Reason  string `json:"reason" validate:"required,max=64"`
	Company string `json:"company" validate:"max=200"`
	Country string `json:"country" validate:"max=100"`
	Plan    string `json:"plan" validate:"max=50"`
	Tone    string `json:"tone" validate:"max=20"`
}

// Validate checks the simulation input against its field constraints.
func (in *SimulationInput) Validate() error {
	v := validator.New()
	return v.Struct(in)
}

// SimulationResult is the closed result surface of the simulation entry point.
type SimulationResult struct {
	Success      bool   `json:"success"`
	EmailPreview string `json:"emailPreview,omitempty"`
	Error        string `json:"error,omitempty"`
}

// StepOutcome classifies how a workflow step ended.
type StepOutcome int

const (
	OutcomeOK StepOutcome = iota
	// OutcomeRecoverable marks a step that failed but did not stop the
	// workflow (generation fallback, attempt-log write, delivery).
	OutcomeRecoverable
	OutcomeFatal
)

func (o StepOutcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRecoverable:
		return "recoverable"
	default:
		return "fatal"
	}
}

// Workflow step names, in execution order.
const (
	StepCompose    = "compose"
	StepLogAttempt = "log_attempt"
	StepDeliver    = "deliver"
	StepFinalize   = "finalize"
)

// StepResult records one workflow step's outcome, making the
// absorb-vs-abort decision per step visible instead of buried in logging.
type StepResult struct {
	Step    string
	Outcome StepOutcome
	Err     error
}

// WorkflowResult is returned by every workflow run. EmailBody is always
// usable; failures along the way show up in Steps, never as a raised error.
type WorkflowResult struct {
	EmailBody string
	Steps     []StepResult
}

// Delivered reports whether the email dispatch step succeeded.
func (r WorkflowResult) Delivered() bool {
	for _, s := range r.Steps {
		if s.Step == StepDeliver {
			return s.Outcome == OutcomeOK
		}
	}
	return false
}

// StepFor returns the result of a named step, if the workflow reached it.
func (r WorkflowResult) StepFor(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// FailedPaymentWithRelations is the explicit shape of the dashboard join:
// a failed payment with its customer, invoice and outreach attempts decoded
// once at the store boundary.
type FailedPaymentWithRelations struct {
	FailedPayment models.FailedPayment     `json:"failed_payment"`
	Customer      models.Customer          `json:"customer"`
	Invoice       models.Invoice           `json:"invoice"`
	Attempts      []models.RecoveryAttempt `json:"attempts"`
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}
