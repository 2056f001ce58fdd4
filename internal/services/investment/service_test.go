package investment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/models"
	"fintrivox/internal/repositories/memory"
	"fintrivox/internal/services/ledger"
	"fintrivox/internal/services/notification"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s got %s", want, got.String())
}

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingNotifier) Notify(msg notification.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, msg.Title)
}

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	ledger   *memory.Ledger
	plans    *memory.Plans
	notifier *recordingNotifier
	service  *Service
	user     models.User
}

func newFixture() *fixture {
	l := memory.NewLedger()
	plans := memory.NewPlans(
		models.InvestmentPlan{
			Name:        "Starter",
			MinAmount:   dec("100"),
			MaxAmount:   dec("1000"),
			DailyProfit: dec("1.5"),
			Duration:    3,
			Status:      models.StatusActive,
		},
		models.InvestmentPlan{
			Name:        "Retired",
			MinAmount:   dec("100"),
			MaxAmount:   dec("1000"),
			DailyProfit: dec("2"),
			Duration:    10,
			Status:      models.StatusInactive,
		},
	)
	notifier := &recordingNotifier{}
	factory := ledger.NewFactory(memory.NewPaymentMethods(), nil)
	svc := NewService(l, plans, factory, notifier, WithClock(func() time.Time { return t0 }))
	user := l.AddUser(models.User{
		Email:            "jane@example.com",
		Balance:          dec("500"),
		AvailableBalance: dec("500"),
	})
	return &fixture{ledger: l, plans: plans, notifier: notifier, service: svc, user: user}
}

func TestCreateInvestmentScenario(t *testing.T) {
	fx := newFixture()

	inv, err := fx.service.Create(context.Background(), fx.user.ID, CreateRequest{PlanID: 1, Amount: dec("300")})
	require.NoError(t, err)

	assert.Equal(t, models.InvestmentStatusActive, inv.Status)
	assertDec(t, "1.5", inv.DailyProfitRate)
	assert.Equal(t, t0, inv.StartDate)
	assert.Equal(t, t0.AddDate(0, 0, 3), inv.EndDate)
	assert.Equal(t, t0.AddDate(0, 0, 1), inv.NextProfitDate)

	u := fx.ledger.User(fx.user.ID)
	assertDec(t, "200", u.AvailableBalance)
	assertDec(t, "200", u.Balance)
	assertDec(t, "300", u.InvestedAmount)

	txs := fx.ledger.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, models.TransactionTypeInvestment, txs[0].Type)
	assert.Equal(t, models.TransactionStatusCompleted, txs[0].Status)
	assertDec(t, "300", txs[0].Amount)
	require.NotNil(t, txs[0].InvestmentID)
	assert.Equal(t, inv.ID, *txs[0].InvestmentID)
	assert.Equal(t, []string{"Investment started"}, fx.notifier.titles)
}

func TestCreateInvestmentRejections(t *testing.T) {
	cases := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"below minimum", CreateRequest{PlanID: 1, Amount: dec("99.99")}, apperrors.ErrValidation},
		{"above maximum", CreateRequest{PlanID: 1, Amount: dec("1000.01")}, apperrors.ErrValidation},
		{"inactive plan", CreateRequest{PlanID: 2, Amount: dec("300")}, apperrors.ErrValidation},
		{"missing plan", CreateRequest{PlanID: 42, Amount: dec("300")}, apperrors.ErrNotFound},
		{"exceeds available", CreateRequest{PlanID: 1, Amount: dec("600")}, apperrors.ErrInsufficientBalance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture()
			_, err := fx.service.Create(context.Background(), fx.user.ID, tc.req)
			assert.ErrorIs(t, err, tc.want)

			u := fx.ledger.User(fx.user.ID)
			assertDec(t, "500", u.AvailableBalance)
			assertDec(t, "0", u.InvestedAmount)
			assert.Empty(t, fx.ledger.Transactions())
		})
	}
}

func TestAccrueCreditsDailyThenMatures(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	inv, err := fx.service.Create(ctx, fx.user.ID, CreateRequest{PlanID: 1, Amount: dec("300")})
	require.NoError(t, err)

	res, err := fx.service.AccrueAt(ctx, t0.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, AccrualResult{Processed: 1, DaysCredited: 1}, res)

	got := fx.ledger.Investment(inv.ID)
	assertDec(t, "4.5", got.EarnedProfit)
	assert.Equal(t, 1, got.DaysPaid)
	assert.Equal(t, t0.AddDate(0, 0, 2), got.NextProfitDate)

	res, err = fx.service.AccrueAt(ctx, t0.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)

	res, err = fx.service.AccrueAt(ctx, t0.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, AccrualResult{Processed: 1, DaysCredited: 2, Matured: 1}, res)

	got = fx.ledger.Investment(inv.ID)
	assert.Equal(t, models.InvestmentStatusCompleted, got.Status)
	assertDec(t, "13.5", got.EarnedProfit)
	assert.Equal(t, 3, got.DaysPaid)
	require.NotNil(t, got.CompletedAt)

	u := fx.ledger.User(fx.user.ID)
	assertDec(t, "13.5", u.TotalProfit)
	assertDec(t, "513.5", u.Balance)
	assertDec(t, "513.5", u.AvailableBalance)
	assertDec(t, "0", u.InvestedAmount)

	txs := fx.ledger.Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, models.TransactionTypeProfit, txs[1].Type)
	assertDec(t, "13.5", txs[1].Amount)
	assert.Equal(t, models.TransactionTypeCapitalReturn, txs[2].Type)
	assertDec(t, "300", txs[2].Amount)
	for _, tx := range txs {
		assert.Equal(t, models.TransactionStatusCompleted, tx.Status)
	}

	res, err = fx.service.AccrueAt(ctx, t0.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)
	assert.Len(t, fx.ledger.Transactions(), 3)
	assertDec(t, "513.5", fx.ledger.User(fx.user.ID).Balance)
}

func TestAccrueNeverPaysPastEndDate(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	inv, err := fx.service.Create(ctx, fx.user.ID, CreateRequest{PlanID: 1, Amount: dec("200")})
	require.NoError(t, err)

	res, err := fx.service.AccrueAt(ctx, t0.AddDate(0, 0, 40))
	require.NoError(t, err)
	assert.Equal(t, 3, res.DaysCredited)
	assert.Equal(t, 1, res.Matured)

	got := fx.ledger.Investment(inv.ID)
	assert.Equal(t, 3, got.DaysPaid)
	assertDec(t, "9", got.EarnedProfit)
	assertDec(t, "9", fx.ledger.User(fx.user.ID).TotalProfit)
}

func TestAccrueContinuesAfterFailure(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	orphan := &models.Investment{
		UserID:          999,
		PlanID:          1,
		Amount:          dec("100"),
		DailyProfitRate: dec("1"),
		StartDate:       t0.AddDate(0, 0, -5),
		EndDate:         t0.AddDate(0, 0, -1),
		NextProfitDate:  t0.AddDate(0, 0, -4),
		Status:          models.InvestmentStatusActive,
	}
	require.NoError(t, fx.ledger.CreateInvestment(ctx, orphan))

	inv, err := fx.service.Create(ctx, fx.user.ID, CreateRequest{PlanID: 1, Amount: dec("100")})
	require.NoError(t, err)

	res, err := fx.service.AccrueAt(ctx, t0.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Matured)

	assert.Equal(t, models.InvestmentStatusActive, fx.ledger.Investment(orphan.ID).Status)
	assertDec(t, "0", fx.ledger.Investment(orphan.ID).EarnedProfit)
	assert.Equal(t, models.InvestmentStatusCompleted, fx.ledger.Investment(inv.ID).Status)
}

func TestAccrueSmallBatchesReachRowsBehindFailures(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	svc := NewService(fx.ledger, fx.plans, ledger.NewFactory(memory.NewPaymentMethods(), nil), fx.notifier,
		WithClock(func() time.Time { return t0 }), WithBatchSize(1))

	var orphans []uint
	for i := 0; i < 2; i++ {
		orphan := &models.Investment{
			UserID:          999,
			PlanID:          1,
			Amount:          dec("100"),
			DailyProfitRate: dec("1"),
			StartDate:       t0.AddDate(0, 0, -5),
			EndDate:         t0.AddDate(0, 0, -1),
			NextProfitDate:  t0.AddDate(0, 0, -4),
			Status:          models.InvestmentStatusActive,
		}
		require.NoError(t, fx.ledger.CreateInvestment(ctx, orphan))
		orphans = append(orphans, orphan.ID)
	}

	inv, err := svc.Create(ctx, fx.user.ID, CreateRequest{PlanID: 1, Amount: dec("100")})
	require.NoError(t, err)

	res, err := svc.AccrueAt(ctx, t0.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, AccrualResult{Processed: 3, DaysCredited: 3, Matured: 1, Failed: 2}, res)
	assert.Equal(t, models.InvestmentStatusCompleted, fx.ledger.Investment(inv.ID).Status)
	for _, id := range orphans {
		assert.Equal(t, models.InvestmentStatusActive, fx.ledger.Investment(id).Status)
	}

	// A second pass sees the same failures once each and terminates.
	res, err = svc.AccrueAt(ctx, t0.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Equal(t, AccrualResult{Processed: 2, Failed: 2}, res)
}

func TestCreateInvestmentRollsBackOnWriteFailure(t *testing.T) {
	for _, op := range []string{"CreateInvestment", "CreateTransaction"} {
		t.Run(op, func(t *testing.T) {
			fx := newFixture()
			boom := errors.New("write failed")
			fx.ledger.FailOn[op] = boom

			_, err := fx.service.Create(context.Background(), fx.user.ID, CreateRequest{PlanID: 1, Amount: dec("300")})
			require.ErrorIs(t, err, boom)

			u := fx.ledger.User(fx.user.ID)
			assertDec(t, "500", u.Balance)
			assertDec(t, "500", u.AvailableBalance)
			assertDec(t, "0", u.InvestedAmount)
			assert.Empty(t, fx.ledger.Transactions())
			assert.Empty(t, fx.notifier.titles)

			items, total, err := fx.service.List(context.Background(), models.InvestmentFilter{UserID: fx.user.ID})
			require.NoError(t, err)
			assert.Zero(t, total)
			assert.Empty(t, items)
		})
	}
}

func TestCancelRefundsPrincipalAndForfeitsProfit(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	inv, err := fx.service.Create(ctx, fx.user.ID, CreateRequest{PlanID: 1, Amount: dec("300")})
	require.NoError(t, err)
	_, err = fx.service.AccrueAt(ctx, t0.Add(25*time.Hour))
	require.NoError(t, err)

	cancelled, err := fx.service.Cancel(ctx, 77, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentStatusCancelled, cancelled.Status)

	u := fx.ledger.User(fx.user.ID)
	assertDec(t, "500", u.Balance)
	assertDec(t, "500", u.AvailableBalance)
	assertDec(t, "0", u.InvestedAmount)
	assertDec(t, "0", u.TotalProfit)

	txs := fx.ledger.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, models.TransactionTypeRefund, txs[1].Type)
	assertDec(t, "300", txs[1].Amount)
	require.NotNil(t, txs[1].ProcessedBy)
	assert.Equal(t, uint(77), *txs[1].ProcessedBy)

	_, err = fx.service.Cancel(ctx, 77, inv.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = fx.service.Cancel(ctx, 77, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListInvestments(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := fx.service.Create(ctx, fx.user.ID, CreateRequest{PlanID: 1, Amount: dec("100")})
		require.NoError(t, err)
	}

	items, total, err := fx.service.List(ctx, models.InvestmentFilter{UserID: fx.user.ID, Status: models.InvestmentStatusActive})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	fx := newFixture()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewScheduler(fx.service, time.Hour).Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
