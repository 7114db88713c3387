package recovery

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/recoverly/recoverly/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func janeSimulation() SimulationInput {
	return SimulationInput{
		Name:   "Jane Doe",
		Email:  "jane@x.com",
		Amount: 2900,
		Reason: "expired_card",
		Tone:   ToneUrgent,
	}
}

func TestSimulateFailedPaymentCreatesFullRecordSet(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{}
	svc := newTestService(repo, &fakeGenerator{err: errors.New("llm down")}, mailer, nil)

	result := svc.SimulateFailedPayment(context.Background(), janeSimulation())

	require.True(t, result.Success, "simulation should succeed: %s", result.Error)
	assert.True(t, strings.Contains(result.EmailPreview, "expired") || strings.Contains(result.EmailPreview, "Jane Doe"))

	require.Len(t, repo.customers, 1)
	assert.Equal(t, "jane@x.com", repo.customers[0].Email)
	assert.True(t, strings.HasPrefix(repo.customers[0].StripeCustomerID, "test_cus_"))

	require.Len(t, repo.invoices, 1)
	assert.Equal(t, int64(2900), repo.invoices[0].AmountDue)
	assert.Equal(t, models.InvoiceStatusOpen, repo.invoices[0].Status)

	require.Len(t, repo.failedPayments, 1)
	assert.Equal(t, models.FailedPaymentStatusUnresolved, repo.failedPayments[0].Status)
	assert.Equal(t, "expired_card", repo.failedPayments[0].ErrorCode)

	require.Len(t, repo.attempts, 1)
	assert.Contains(t, []string{models.RecoveryAttemptStatusSent, models.RecoveryAttemptStatusFailed}, repo.attempts[0].Status)

	require.Len(t, repo.subscriptions, 1)
	assert.Equal(t, "Basic", repo.subscriptions[0].PlanLevel)
	assert.Equal(t, int64(2900), repo.subscriptions[0].MonthlyRevenue)
}

func TestSimulateFailedPaymentReusesExistingCustomer(t *testing.T) {
	repo := newFakeRepo()
	_ = repo.CreateCustomer(&models.Customer{StripeCustomerID: "cus_1", Name: "Jane Doe", Email: "jane@x.com"})
	svc := newTestService(repo, nil, nil, nil)

	result := svc.SimulateFailedPayment(context.Background(), janeSimulation())

	require.True(t, result.Success)
	assert.Len(t, repo.customers, 1)
}

func TestSimulateFailedPaymentSchemaFallback(t *testing.T) {
	repo := newFakeRepo()
	repo.createCustomerErr = errors.New("Error 1054 (42S22): Unknown column 'company_name' in 'field list'")
	svc := newTestService(repo, nil, nil, nil)

	in := janeSimulation()
	in.Company = "Acme"
	in.Country = "DE"
	result := svc.SimulateFailedPayment(context.Background(), in)

	require.True(t, result.Success, "fallback path should succeed: %s", result.Error)
	assert.Equal(t, 1, repo.basicCustomerCalls)
	require.Len(t, repo.customers, 1)
	assert.Equal(t, "Jane Doe", repo.customers[0].Name)
	assert.Empty(t, repo.customers[0].CompanyName)
	assert.Empty(t, repo.customers[0].Country)
}

func TestSimulateFailedPaymentOtherCustomerErrorFails(t *testing.T) {
	repo := newFakeRepo()
	repo.createCustomerErr = errors.New("connection refused")
	svc := newTestService(repo, nil, nil, nil)

	result := svc.SimulateFailedPayment(context.Background(), janeSimulation())

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, 0, repo.basicCustomerCalls)
	assert.Empty(t, repo.failedPayments)
}

func TestSimulateFailedPaymentSubscriptionFailureIsAdvisory(t *testing.T) {
	repo := newFakeRepo()
	repo.subscriptionErr = errors.New("table does not exist")
	svc := newTestService(repo, nil, nil, nil)

	result := svc.SimulateFailedPayment(context.Background(), janeSimulation())

	require.True(t, result.Success)
	assert.Empty(t, repo.subscriptions)
	assert.Len(t, repo.failedPayments, 1)
}

func TestSimulateFailedPaymentValidatesInput(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil, nil, nil)

	result := svc.SimulateFailedPayment(context.Background(), SimulationInput{
		Name:   "Jane",
		Email:  "not-an-email",
		Amount: 2900,
		Reason: "expired_card",
	})

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestRetriggerRecovery(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{}
	svc := newTestService(repo, nil, mailer, nil)
	in := seededFailureContext(repo)

	require.NoError(t, svc.RetriggerRecovery(context.Background(), in.FailedPaymentID))
	assert.Equal(t, 1, mailer.calls)
	assert.Equal(t, "jane@x.com", mailer.lastTo)
	// Retrigger adds a new attempt, never new invoice or failure rows.
	assert.Len(t, repo.attempts, 1)
	assert.Len(t, repo.failedPayments, 1)
	assert.Len(t, repo.invoices, 1)
}

func TestRetriggerRecoveryNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil, nil, nil)

	err := svc.RetriggerRecovery(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsSchemaMismatchError(t *testing.T) {
	assert.True(t, isSchemaMismatchError(errors.New("Unknown column 'country' in 'field list'")))
	assert.True(t, isSchemaMismatchError(errors.New("Error 1054: bad things")))
	assert.False(t, isSchemaMismatchError(errors.New("duplicate entry")))
	assert.False(t, isSchemaMismatchError(nil))
}
