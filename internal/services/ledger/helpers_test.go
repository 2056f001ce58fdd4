package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"fintrivox/internal/models"
	"fintrivox/internal/repositories/memory"
	"fintrivox/internal/services/notification"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s got %s", want, got.String()}, msgAndArgs...)...)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (r *recordingNotifier) Notify(msg notification.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingNotifier) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i] = m.Title
	}
	return out
}

type stubProcessor struct {
	id     string
	err    error
	calls  []PaymentRequest
	onCall func()
}

func (p *stubProcessor) CreatePayment(ctx context.Context, req PaymentRequest) (string, error) {
	p.calls = append(p.calls, req)
	if p.onCall != nil {
		p.onCall()
	}
	return p.id, p.err
}

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func testMethods() *memory.PaymentMethods {
	return memory.NewPaymentMethods(
		models.PaymentMethod{
			Name:      "usdt",
			Direction: models.DirectionBoth,
			Provider:  models.ProviderManual,
			FeeType:   models.FeeTypePercentage,
			Fee:       dec("2"),
			MinAmount: dec("10"),
			MaxAmount: dec("10000"),
			Networks:  pq.StringArray{"TRC20", "ERC20"},
			Status:    models.StatusActive,
		},
		models.PaymentMethod{
			Name:      "bank",
			Direction: models.DirectionDeposit,
			Provider:  models.ProviderManual,
			FeeType:   models.FeeTypeFixed,
			Fee:       dec("5"),
			MinAmount: dec("50"),
			Status:    models.StatusActive,
		},
		models.PaymentMethod{
			Name:      "card",
			Direction: models.DirectionDeposit,
			Provider:  models.ProviderStripe,
			FeeType:   models.FeeTypePercentage,
			Fee:       dec("3"),
			MinAmount: dec("1"),
			Status:    models.StatusActive,
		},
		models.PaymentMethod{
			Name:      "legacy",
			Direction: models.DirectionBoth,
			FeeType:   models.FeeTypeFixed,
			Status:    models.StatusInactive,
		},
	)
}

type fixture struct {
	ledger    *memory.Ledger
	notifier  *recordingNotifier
	processor *stubProcessor
	service   *Service
}

func newFixture() *fixture {
	ledger := memory.NewLedger()
	notifier := &recordingNotifier{}
	processor := &stubProcessor{id: "pi_123"}
	factory := NewFactory(testMethods(), NewReferenceGenerator(nil))
	svc := NewService(ledger, factory, notifier,
		WithPaymentProcessor(processor),
		WithClock(func() time.Time { return fixedNow }),
	)
	return &fixture{ledger: ledger, notifier: notifier, processor: processor, service: svc}
}
