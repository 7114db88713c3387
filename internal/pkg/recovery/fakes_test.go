package recovery

import (
	"context"
	"time"

	"github.com/recoverly/recoverly/app/models"
	"github.com/recoverly/recoverly/internal/pkg/processor"
	"gorm.io/gorm"
)

// fakeRepo is an in-memory Repository used by the workflow and intake tests.
type fakeRepo struct {
	customers      []*models.Customer
	invoices       []*models.Invoice
	subscriptions  []*models.Subscription
	failedPayments []*models.FailedPayment
	attempts       []*models.RecoveryAttempt
	revenues       []*models.RecoveredRevenue
	events         []*models.WebhookEvent
	nextID         uint

	createCustomerErr  error
	createAttemptErr   error
	subscriptionErr    error
	createRevenueErr   error
	updateStatusErr    error
	basicCustomerCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{}
}

func (f *fakeRepo) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) GetCustomerByStripeID(stripeCustomerID string) (*models.Customer, error) {
	for _, c := range f.customers {
		if c.StripeCustomerID == stripeCustomerID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetCustomerByEmail(email string) (*models.Customer, error) {
	for _, c := range f.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateCustomer(customer *models.Customer) error {
	if f.createCustomerErr != nil {
		return f.createCustomerErr
	}
	customer.ID = f.id()
	f.customers = append(f.customers, customer)
	return nil
}

func (f *fakeRepo) CreateCustomerBasic(customer *models.Customer) error {
	f.basicCustomerCalls++
	customer.ID = f.id()
	customer.CompanyName = ""
	customer.Country = ""
	f.customers = append(f.customers, customer)
	return nil
}

func (f *fakeRepo) UpsertInvoice(invoice *models.Invoice) error {
	for _, existing := range f.invoices {
		if existing.StripeInvoiceID == invoice.StripeInvoiceID {
			existing.CustomerID = invoice.CustomerID
			existing.AmountDue = invoice.AmountDue
			existing.Status = invoice.Status
			existing.HostedInvoiceURL = invoice.HostedInvoiceURL
			invoice.ID = existing.ID
			return nil
		}
	}
	invoice.ID = f.id()
	f.invoices = append(f.invoices, invoice)
	return nil
}

func (f *fakeRepo) GetInvoiceByStripeID(stripeInvoiceID string) (*models.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.StripeInvoiceID == stripeInvoiceID {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpsertSubscription(sub *models.Subscription) error {
	if f.subscriptionErr != nil {
		return f.subscriptionErr
	}
	for _, existing := range f.subscriptions {
		if existing.CustomerID == sub.CustomerID {
			existing.StripeSubID = sub.StripeSubID
			existing.Status = sub.Status
			existing.PlanLevel = sub.PlanLevel
			existing.MonthlyRevenue = sub.MonthlyRevenue
			sub.ID = existing.ID
			return nil
		}
	}
	sub.ID = f.id()
	f.subscriptions = append(f.subscriptions, sub)
	return nil
}

func (f *fakeRepo) CreateFailedPayment(fp *models.FailedPayment) error {
	fp.ID = f.id()
	f.failedPayments = append(f.failedPayments, fp)
	return nil
}

func (f *fakeRepo) GetUnresolvedFailedPaymentByInvoice(invoiceID uint) (*models.FailedPayment, error) {
	for _, fp := range f.failedPayments {
		if fp.InvoiceID == invoiceID && fp.Status == models.FailedPaymentStatusUnresolved {
			return fp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) MarkFailedPaymentRecovered(id uint) error {
	for _, fp := range f.failedPayments {
		if fp.ID == id {
			fp.Status = models.FailedPaymentStatusRecovered
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetFailedPaymentWithRelations(id uint) (*FailedPaymentWithRelations, error) {
	for _, fp := range f.failedPayments {
		if fp.ID == id {
			return f.relations(fp), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListFailedPaymentsWithRelations() ([]FailedPaymentWithRelations, error) {
	out := make([]FailedPaymentWithRelations, 0, len(f.failedPayments))
	for _, fp := range f.failedPayments {
		out = append(out, *f.relations(fp))
	}
	return out, nil
}

func (f *fakeRepo) relations(fp *models.FailedPayment) *FailedPaymentWithRelations {
	rel := &FailedPaymentWithRelations{FailedPayment: *fp}
	for _, c := range f.customers {
		if c.ID == fp.CustomerID {
			rel.Customer = *c
		}
	}
	for _, inv := range f.invoices {
		if inv.ID == fp.InvoiceID {
			rel.Invoice = *inv
		}
	}
	for _, a := range f.attempts {
		if a.FailedPaymentID == fp.ID {
			rel.Attempts = append(rel.Attempts, *a)
		}
	}
	return rel
}

func (f *fakeRepo) CreateRecoveryAttempt(attempt *models.RecoveryAttempt) error {
	if f.createAttemptErr != nil {
		return f.createAttemptErr
	}
	attempt.ID = f.id()
	f.attempts = append(f.attempts, attempt)
	return nil
}

func (f *fakeRepo) UpdateRecoveryAttemptStatus(id uint, status string) error {
	if f.updateStatusErr != nil {
		return f.updateStatusErr
	}
	for _, a := range f.attempts {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateRecoveredRevenue(rr *models.RecoveredRevenue) error {
	if f.createRevenueErr != nil {
		return f.createRevenueErr
	}
	rr.ID = f.id()
	f.revenues = append(f.revenues, rr)
	return nil
}

func (f *fakeRepo) SumRecoveredRevenue() (int64, error) {
	var total int64
	for _, rr := range f.revenues {
		total += rr.AmountRecovered
	}
	return total, nil
}

func (f *fakeRepo) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	for _, existing := range f.events {
		if existing.Provider == event.Provider && existing.ProviderEventID == event.ProviderEventID {
			return false, existing, nil
		}
	}
	event.ID = f.id()
	f.events = append(f.events, event)
	return true, event, nil
}

func (f *fakeRepo) MarkWebhookProcessed(id uint, processingError string) error {
	for _, e := range f.events {
		if e.ID == id {
			now := time.Now()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) Transaction(fn func(Repository) error) error {
	return fn(f)
}

// fakeGenerator is a canned language-model collaborator.
type fakeGenerator struct {
	text       string
	err        error
	lastSystem string
	lastUser   string
}

func (g *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	g.lastSystem = systemPrompt
	g.lastUser = userPrompt
	return g.text, g.err
}

// fakeMailer records deliveries and can be told to fail.
type fakeMailer struct {
	err         error
	calls       int
	lastTo      string
	lastSubject string
	lastHTML    string
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	m.calls++
	m.lastTo = to
	m.lastSubject = subject
	m.lastHTML = html
	if m.err != nil {
		return "", m.err
	}
	return "mock_delivery_id", nil
}

// fakeProcessor serves canned payment intents.
type fakeProcessor struct {
	intent *processor.PaymentIntent
	err    error
}

func (p *fakeProcessor) RetrievePaymentIntent(ctx context.Context, id string) (*processor.PaymentIntent, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.intent != nil {
		return p.intent, nil
	}
	return &processor.PaymentIntent{ID: id}, nil
}

func newTestService(repo Repository, gen TextGenerator, mailer *fakeMailer, proc processor.Client) *Service {
	if gen == nil {
		gen = &fakeGenerator{text: "<p>generated</p>"}
	}
	if mailer == nil {
		mailer = &fakeMailer{}
	}
	if proc == nil {
		proc = &fakeProcessor{}
	}
	return NewService(repo, gen, mailer, proc)
}
