// Package investment runs the investment lifecycle: creation from a plan,
// daily profit accrual, maturity and admin cancellation.
package investment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/metrics"
	"fintrivox/internal/models"
	"fintrivox/internal/repositories"
	"fintrivox/internal/services/ledger"
	"fintrivox/internal/services/notification"

	"github.com/shopspring/decimal"
)

const defaultBatchSize = 200

type CreateRequest struct {
	PlanID uint            `json:"planId"`
	Amount decimal.Decimal `json:"amount"`
}

// AccrualResult summarises one accrual pass.
type AccrualResult struct {
	Processed    int `json:"processed"`
	DaysCredited int `json:"days_credited"`
	Matured      int `json:"matured"`
	Failed       int `json:"failed"`
}

type Service struct {
	repo      repositories.LedgerRepository
	plans     repositories.PlanRepository
	factory   *ledger.Factory
	notifier  ledger.Notifier
	metrics   metrics.Collector
	now       func() time.Time
	batchSize int
}

type Option func(*Service)

func WithMetrics(m metrics.Collector) Option {
	return func(s *Service) { s.metrics = metrics.OrNoop(m) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func NewService(repo repositories.LedgerRepository, plans repositories.PlanRepository, factory *ledger.Factory, notifier ledger.Notifier, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		plans:     plans,
		factory:   factory,
		notifier:  notifier,
		metrics:   metrics.NoopCollector{},
		now:       time.Now,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create moves amount from the available balance into a new ACTIVE
// investment and records a COMPLETED INVESTMENT transaction.
func (s *Service) Create(ctx context.Context, userID uint, req CreateRequest) (inv *models.Investment, err error) {
	defer s.track("create_investment", time.Now(), &err)

	plan, err := s.plans.GetByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.NotFound("investment plan")
		}
		return nil, err
	}
	if !plan.IsActive() {
		return nil, apperrors.Validation("investment plan %s is not available", plan.Name)
	}
	if req.Amount.LessThan(plan.MinAmount) || req.Amount.GreaterThan(plan.MaxAmount) {
		return nil, apperrors.Validation("amount must be between %s and %s for plan %s",
			plan.MinAmount.String(), plan.MaxAmount.String(), plan.Name)
	}

	tx, _, err := s.factory.Build(ctx, ledger.Request{
		UserID:      userID,
		Type:        models.TransactionTypeInvestment,
		Amount:      req.Amount,
		Description: "Investment in " + plan.Name,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	inv = &models.Investment{
		UserID:          userID,
		PlanID:          plan.ID,
		Amount:          req.Amount,
		DailyProfitRate: plan.DailyProfit,
		StartDate:       now,
		EndDate:         now.AddDate(0, 0, plan.Duration),
		NextProfitDate:  now.AddDate(0, 0, 1),
		Status:          models.InvestmentStatusActive,
		EarnedProfit:    decimal.Zero,
	}

	var user *models.User
	err = s.repo.ExecuteInTransaction(ctx, func(repo repositories.LedgerRepository) error {
		u, err := repo.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if u.IsSuspended() {
			return apperrors.Forbidden("account is suspended")
		}
		if u.AvailableBalance.LessThan(req.Amount) {
			return apperrors.InsufficientBalance("available balance is too low for this investment")
		}

		u.Balance = u.Balance.Sub(req.Amount)
		u.AvailableBalance = u.AvailableBalance.Sub(req.Amount)
		u.InvestedAmount = u.InvestedAmount.Add(req.Amount)
		if err := repo.SaveBalances(ctx, u); err != nil {
			return err
		}
		if err := repo.CreateInvestment(ctx, inv); err != nil {
			return err
		}

		id := inv.ID
		tx.InvestmentID = &id
		tx.Status = models.TransactionStatusCompleted
		processed := now
		tx.ProcessedAt = &processed
		user = u
		return repo.CreateTransaction(ctx, tx)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	inv.Plan = plan
	s.metrics.RecordTransaction(tx.Type, tx.Status, tx.Amount)
	s.notify(user, notification.EventInvestmentCreated, inv,
		"Investment started",
		fmt.Sprintf("You invested %s in %s. It matures on %s.", inv.Amount.String(), plan.Name, inv.EndDate.Format("2006-01-02")))
	return inv, nil
}

// Accrue runs one accrual pass at the current time.
func (s *Service) Accrue(ctx context.Context) (AccrualResult, error) {
	return s.AccrueAt(ctx, s.now())
}

// AccrueAt credits every elapsed profit day up to now and matures
// investments whose end date has passed. Each investment is handled in its
// own database transaction; a failure is logged and the pass continues.
// Batches are paged by id so rows that keep failing never hide later ones.
func (s *Service) AccrueAt(ctx context.Context, now time.Time) (AccrualResult, error) {
	var (
		result AccrualResult
		lastID uint
	)

	for {
		due, err := s.repo.ListDueInvestments(ctx, now, lastID, s.batchSize)
		if err != nil {
			return result, err
		}

		for _, candidate := range due {
			lastID = candidate.ID

			if err := ctx.Err(); err != nil {
				return result, err
			}

			days, matured, err := s.accrueOne(ctx, candidate.ID, now)
			result.Processed++
			if err != nil {
				result.Failed++
				log.Printf("accrual: investment %d failed: %v", candidate.ID, err)
				continue
			}
			result.DaysCredited += days
			if matured {
				result.Matured++
			}
		}
		if len(due) < s.batchSize {
			break
		}
	}

	s.metrics.RecordAccrual(result.DaysCredited, result.Matured, result.Failed)
	return result, nil
}

func (s *Service) accrueOne(ctx context.Context, id uint, now time.Time) (int, bool, error) {
	var (
		days    int
		matured bool
		user    *models.User
		inv     *models.Investment
		profit  *models.Transaction
		capital *models.Transaction
	)

	err := s.repo.ExecuteInTransaction(ctx, func(repo repositories.LedgerRepository) error {
		i, err := repo.GetInvestmentForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !i.IsActive() {
			return nil
		}

		daily := i.DailyProfitAmount()
		for !i.NextProfitDate.After(now) && !i.NextProfitDate.After(i.EndDate) {
			i.EarnedProfit = i.EarnedProfit.Add(daily)
			i.DaysPaid++
			i.NextProfitDate = i.NextProfitDate.AddDate(0, 0, 1)
			days++
		}

		if now.Before(i.EndDate) {
			inv = i
			return repo.SaveInvestment(ctx, i)
		}

		u, err := repo.GetUserForUpdate(ctx, i.UserID)
		if err != nil {
			return err
		}
		payout := i.Amount.Add(i.EarnedProfit)
		u.TotalProfit = u.TotalProfit.Add(i.EarnedProfit)
		u.Balance = u.Balance.Add(payout)
		u.AvailableBalance = u.AvailableBalance.Add(payout)
		u.InvestedAmount = u.InvestedAmount.Sub(i.Amount)
		if err := repo.SaveBalances(ctx, u); err != nil {
			return err
		}

		if i.EarnedProfit.IsPositive() {
			profit, err = s.internalTransaction(ctx, repo, i, models.TransactionTypeProfit, i.EarnedProfit, now,
				fmt.Sprintf("Profit for investment #%d (%d days)", i.ID, i.DaysPaid))
			if err != nil {
				return err
			}
		}
		capital, err = s.internalTransaction(ctx, repo, i, models.TransactionTypeCapitalReturn, i.Amount, now,
			fmt.Sprintf("Capital return for investment #%d", i.ID))
		if err != nil {
			return err
		}

		completedAt := now
		i.Status = models.InvestmentStatusCompleted
		i.CompletedAt = &completedAt
		if err := repo.SaveInvestment(ctx, i); err != nil {
			return err
		}
		inv, user, matured = i, u, true
		return nil
	})
	if err != nil {
		return 0, false, mapRepoError(err)
	}

	if matured {
		if profit != nil {
			s.metrics.RecordTransaction(profit.Type, profit.Status, profit.Amount)
		}
		s.metrics.RecordTransaction(capital.Type, capital.Status, capital.Amount)
		s.notify(user, notification.EventInvestmentCompleted, inv,
			"Investment completed",
			fmt.Sprintf("Your investment #%d matured. %s principal and %s profit were credited to your balance.",
				inv.ID, inv.Amount.String(), inv.EarnedProfit.String()))
	}
	return days, matured, nil
}

// Cancel stops an ACTIVE investment and refunds the principal. Profit
// accrued so far is forfeited.
func (s *Service) Cancel(ctx context.Context, adminID, id uint) (inv *models.Investment, err error) {
	defer s.track("cancel_investment", time.Now(), &err)

	var (
		user   *models.User
		refund *models.Transaction
	)
	err = s.repo.ExecuteInTransaction(ctx, func(repo repositories.LedgerRepository) error {
		i, err := repo.GetInvestmentForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !i.IsActive() {
			return apperrors.InvalidState("investment #%d is %s", i.ID, i.Status)
		}
		u, err := repo.GetUserForUpdate(ctx, i.UserID)
		if err != nil {
			return err
		}

		u.Balance = u.Balance.Add(i.Amount)
		u.AvailableBalance = u.AvailableBalance.Add(i.Amount)
		u.InvestedAmount = u.InvestedAmount.Sub(i.Amount)
		if err := repo.SaveBalances(ctx, u); err != nil {
			return err
		}

		now := s.now()
		refund, err = s.internalTransaction(ctx, repo, i, models.TransactionTypeRefund, i.Amount, now,
			fmt.Sprintf("Refund for cancelled investment #%d", i.ID))
		if err != nil {
			return err
		}
		if adminID != 0 {
			by := adminID
			refund.ProcessedBy = &by
		}

		i.Status = models.InvestmentStatusCancelled
		i.CompletedAt = &now
		if err := repo.SaveInvestment(ctx, i); err != nil {
			return err
		}
		inv, user = i, u
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.metrics.RecordTransaction(refund.Type, refund.Status, refund.Amount)
	s.notify(user, notification.EventInvestmentCancelled, inv,
		"Investment cancelled",
		fmt.Sprintf("Your investment #%d was cancelled and %s was returned to your balance.", inv.ID, inv.Amount.String()))
	return inv, nil
}

// List returns one page of investments, newest first.
func (s *Service) List(ctx context.Context, filter models.InvestmentFilter) ([]models.Investment, int64, error) {
	filter.Page, filter.Limit = ledger.NormalizePage(filter.Page, filter.Limit)
	return s.repo.ListInvestments(ctx, filter)
}

func (s *Service) internalTransaction(ctx context.Context, repo repositories.LedgerRepository, inv *models.Investment, txType string, amount decimal.Decimal, now time.Time, description string) (*models.Transaction, error) {
	id := inv.ID
	tx, _, err := s.factory.Build(ctx, ledger.Request{
		UserID:       inv.UserID,
		Type:         txType,
		Amount:       amount,
		Description:  description,
		InvestmentID: &id,
	})
	if err != nil {
		return nil, err
	}
	tx.Status = models.TransactionStatusCompleted
	tx.ProcessedAt = &now
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Service) notify(user *models.User, eventType string, inv *models.Investment, title, body string) {
	if s.notifier == nil || user == nil {
		return
	}
	s.notifier.Notify(notification.Message{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Type:   models.NotificationTypeInvestment,
		Title:  title,
		Body:   body,
		Event:  notification.NewInvestmentEvent(eventType, inv),
	})
}

func (s *Service) track(op string, start time.Time, errp *error) {
	metrics.Track(s.metrics, op, start, errp)
	if de, ok := apperrors.As(*errp); ok {
		s.metrics.RecordError(op, de.Code)
	}
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.NotFound("user")
	case errors.Is(err, repositories.ErrInvestmentNotFound):
		return apperrors.NotFound("investment")
	}
	return err
}
