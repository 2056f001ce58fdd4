// Package ledger owns deposits and withdrawals: building transactions,
// applying balance mutations under row locks and the admin approval flow.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/metrics"
	"fintrivox/internal/models"
	"fintrivox/internal/repositories"
	"fintrivox/internal/services/notification"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Notifier receives post-commit messages.
type Notifier interface {
	Notify(msg notification.Message)
}

// PaymentProcessor creates a payment with an external provider and returns
// its id.
type PaymentProcessor interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (string, error)
}

type PaymentRequest struct {
	UserID    uint
	Email     string
	Amount    decimal.Decimal
	Reference string
}

type DepositRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method"`
	TxHash  string          `json:"txHash"`
	Network string          `json:"network"`
}

type WithdrawRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	WithdrawalKey string          `json:"withdrawalKey"`
	WalletAddress string          `json:"walletAddress"`
	Network       string          `json:"network"`
}

// Default page size for listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Service struct {
	repo      repositories.LedgerRepository
	factory   *Factory
	processor PaymentProcessor
	notifier  Notifier
	metrics   metrics.Collector
	now       func() time.Time
}

type Option func(*Service)

// WithPaymentProcessor enables provider-backed deposit methods.
func WithPaymentProcessor(p PaymentProcessor) Option {
	return func(s *Service) { s.processor = p }
}

func WithMetrics(m metrics.Collector) Option {
	return func(s *Service) { s.metrics = metrics.OrNoop(m) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo repositories.LedgerRepository, factory *Factory, notifier Notifier, opts ...Option) *Service {
	if repo == nil {
		panic("repo is required")
	}
	if factory == nil {
		panic("factory is required")
	}
	s := &Service{
		repo:     repo,
		factory:  factory,
		notifier: notifier,
		metrics:  metrics.NoopCollector{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deposit records a PENDING deposit. Nothing is credited until an admin
// approves it.
func (s *Service) Deposit(ctx context.Context, userID uint, req DepositRequest) (tx *models.Transaction, err error) {
	defer s.track("deposit", time.Now(), &err)

	tx, method, err := s.factory.Build(ctx, Request{
		UserID:  userID,
		Type:    models.TransactionTypeDeposit,
		Amount:  req.Amount,
		Method:  req.Method,
		TxHash:  req.TxHash,
		Network: req.Network,
	})
	if err != nil {
		return nil, err
	}

	// Provider calls run before the database transaction, never under a row
	// lock. A processor failure leaves no ledger row behind.
	if method.Provider == models.ProviderStripe {
		u, err := s.repo.GetUser(ctx, userID)
		if err != nil {
			return nil, mapRepoError(err)
		}
		if u.IsSuspended() {
			return nil, apperrors.Forbidden("account is suspended")
		}
		id, err := s.createPayment(ctx, u, tx)
		if err != nil {
			return nil, err
		}
		tx.TxHash = id
		tx.Metadata = models.JSON{"provider": models.ProviderStripe, "payment_intent": id}
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
		user = u
		return repo.CreateTransaction(ctx, tx)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.metrics.RecordTransaction(tx.Type, tx.Status, tx.Amount)
	s.notify(user, tx, notification.EventTransactionCreated,
		"Deposit submitted",
		fmt.Sprintf("Your deposit of %s via %s (ref %s) is awaiting confirmation.", tx.Amount.String(), tx.Method, tx.Reference))
	return tx, nil
}

func (s *Service) createPayment(ctx context.Context, user *models.User, tx *models.Transaction) (string, error) {
	if s.processor == nil {
		return "", apperrors.DependencyFailure("payment processor", errors.New("not configured"))
	}
	id, err := s.processor.CreatePayment(ctx, PaymentRequest{
		UserID:    user.ID,
		Email:     user.Email,
		Amount:    tx.Amount,
		Reference: tx.Reference,
	})
	if err != nil {
		return "", apperrors.DependencyFailure("payment processor", err)
	}
	return id, nil
}

// CancelDeposit lets the owner withdraw a deposit that is still PENDING.
func (s *Service) CancelDeposit(ctx context.Context, userID, txID uint) (tx *models.Transaction, err error) {
	defer s.track("cancel_deposit", time.Now(), &err)

	err = s.repo.ExecuteInTransaction(ctx, func(repo repositories.LedgerRepository) error {
		t, err := s.lockPending(ctx, repo, txID, models.TransactionTypeDeposit)
		if err != nil {
			return err
		}
		if t.UserID != userID {
			return apperrors.NotFound("transaction")
		}
		now := s.now()
		t.Status = models.TransactionStatusCancelled
		t.ProcessedAt = &now
		tx = t
		return repo.UpdateTransactionStatus(ctx, t, models.TransactionStatusPending)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.metrics.RecordTransaction(tx.Type, tx.Status, tx.Amount)
	return tx, nil
}

// ApproveDeposit completes a PENDING deposit and credits its net amount.
func (s *Service) ApproveDeposit(ctx context.Context, adminID, txID uint) (tx *models.Transaction, err error) {
	defer s.track("approve_deposit", time.Now(), &err)

	var user *models.User
	err = s.repo.ExecuteInTransaction(ctx, func(repo repositories.LedgerRepository) error {
		t, err := s.lockPending(ctx, repo, txID, models.TransactionTypeDeposit)
		if err != nil {
			return err
		}
		u, err := repo.GetUserForUpdate(ctx, t.UserID)
		if err != nil {
			return err
		}

		u.Balance = u.Balance.Add(t.NetAmount)
		u.AvailableBalance = u.AvailableBalance.Add(t.NetAmount)
		u.TotalDeposited = u.TotalDeposited.Add(t.NetAmount)
		if err := repo.SaveBalances(ctx, u); err != nil {
			return err
		}

		s.markProcessed(t, models.TransactionStatusCompleted, adminID)
		tx, user = t, u
		return repo.UpdateTransactionStatus(ctx, t, models.TransactionStatusPending)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.metrics.RecordTransaction(tx.Type, tx.Status, tx.NetAmount)
	s.notify(user, tx, notification.EventTransactionUpdated,
		"Deposit approved",
		fmt.Sprintf("Your deposit %s was approved and %s has been credited to your balance.", tx.Reference, tx.NetAmount.String()))
	return tx, nil
}

// RejectDeposit fails a PENDING deposit. Balances are untouched.
func (s *Service) RejectDeposit(ctx context.Context, adminID, txID uint, reason string) (tx *models.Transaction, err error) {
	defer s.track("reject_deposit", time.Now(), &err)

	var user *models.User
	err = s.repo.ExecuteInTransaction(ctx, func(repo repositories.LedgerRepository) error {
		t, err := s.lockPending(ctx, repo, txID, models.TransactionTypeDeposit)
		if err != nil {
			return err
		}
		u, err := repo.GetUserForUpdate(ctx, t.UserID)
		if err != nil {
			return err
		}
		s.markProcessed(t, models.TransactionStatusFailed, adminID)
		setReason(t, reason)
		tx, user = t, u
		return repo.UpdateTransactionStatus(ctx, t, models.TransactionStatusPending)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.metrics.RecordTransaction(tx.Type, tx.Status, tx.Amount)
	s.notify(user, tx, notification.EventTransactionUpdated,
		"Deposit rejected",
		withReason(fmt.Sprintf("Your deposit %s was rejected.", tx.Reference), reason))
	return tx, nil
}

// Withdraw freezes amount from the available balance and records a PENDING
// withdrawal. Only realised profit can be withdrawn.
func (s *Service) Withdraw(ctx context.Context, userID uint, req WithdrawRequest) (tx *models.Transaction, err error) {
	defer s.track("withdraw", time.Now(), &err)

	if req.WithdrawalKey == "" {
		return nil, apperrors.Validation("withdrawal key is required")
	}
	tx, _, err = s.factory.Build(ctx, Request{
		UserID:        userID,
		Type:          models.TransactionTypeWithdrawal,
		Amount:        req.Amount,
		Method:        req.Method,
		Network:       req.Network,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		return nil, err
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
		if u.KYCStatus != models.KYCStatusVerified {
			return apperrors.ErrKycRequired
		}
		if err := s.checkWithdrawalKey(ctx, repo, u, req.WithdrawalKey); err != nil {
			return err
		}

		pending, err := repo.SumPendingWithdrawals(ctx, userID)
		if err != nil {
			return err
		}
		if req.Amount.Add(pending).GreaterThan(u.TotalProfit) {
			return apperrors.InsufficientBalance("withdrawal exceeds withdrawable profit")
		}
		if req.Amount.GreaterThan(u.AvailableBalance) {
			return apperrors.InsufficientBalance("withdrawal exceeds available balance")
		}

		u.AvailableBalance = u.AvailableBalance.Sub(req.Amount)
		if err := repo.SaveBalances(ctx, u); err != nil {
			return err
		}
		user = u
		return repo.CreateTransaction(ctx, tx)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.metrics.RecordTransaction(tx.Type, tx.Status, tx.Amount)
	s.notify(user, tx, notification.EventTransactionCreated,
		"Withdrawal requested",
		fmt.Sprintf("Your withdrawal of %s (ref %s) is being processed. You will receive %s after fees.", tx.Amount.String(), tx.Reference, tx.NetAmount.String()))
	return tx, nil
}

// checkWithdrawalKey compares against the stored hash, or stores the
// supplied key when the user has none yet.
func (s *Service) checkWithdrawalKey(ctx context.Context, repo repositories.LedgerRepository, u *models.User, key string) error {
	if u.HasWithdrawalKey() {
		if bcrypt.CompareHashAndPassword([]byte(u.WithdrawalKey), []byte(key)) != nil {
			return apperrors.ErrInvalidWithdrawalKey
		}
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash withdrawal key: %w", err)
	}
	if err := repo.SetWithdrawalKey(ctx, u.ID, string(hash)); err != nil {
		return err
	}
	u.WithdrawalKey = string(hash)
	return nil
}

// ApproveWithdrawal completes a PENDING withdrawal and debits the frozen
// amount from balance and profit.
func (s *Service) ApproveWithdrawal(ctx context.Context, adminID, txID uint, txHash string) (tx *models.Transaction, err error) {
	defer s.track("approve_withdrawal", time.Now(), &err)

	var user *models.User
	err = s.repo.ExecuteInTransaction(ctx, func(repo repositories.LedgerRepository) error {
		t, err := s.lockPending(ctx, repo, txID, models.TransactionTypeWithdrawal)
		if err != nil {
			return err
		}
		u, err := repo.GetUserForUpdate(ctx, t.UserID)
		if err != nil {
			return err
		}

		u.Balance = u.Balance.Sub(t.Amount)
		u.TotalProfit = u.TotalProfit.Sub(t.Amount)
		u.TotalWithdrawn = u.TotalWithdrawn.Add(t.Amount)
		if u.Balance.IsNegative() || u.AvailableBalance.GreaterThan(u.Balance) {
			return apperrors.InvalidState("balance for user %d cannot cover withdrawal %s", u.ID, t.Reference)
		}
		if err := repo.SaveBalances(ctx, u); err != nil {
			return err
		}

		s.markProcessed(t, models.TransactionStatusCompleted, adminID)
		if txHash != "" {
			t.TxHash = txHash
		}
		tx, user = t, u
		return repo.UpdateTransactionStatus(ctx, t, models.TransactionStatusPending)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.metrics.RecordTransaction(tx.Type, tx.Status, tx.Amount)
	s.notify(user, tx, notification.EventTransactionUpdated,
		"Withdrawal approved",
		fmt.Sprintf("Your withdrawal %s of %s has been sent.", tx.Reference, tx.NetAmount.String()))
	return tx, nil
}

// RejectWithdrawal fails a PENDING withdrawal and releases the frozen amount.
func (s *Service) RejectWithdrawal(ctx context.Context, adminID, txID uint, reason string) (tx *models.Transaction, err error) {
	defer s.track("reject_withdrawal", time.Now(), &err)

	var user *models.User
	err = s.repo.ExecuteInTransaction(ctx, func(repo repositories.LedgerRepository) error {
		t, err := s.lockPending(ctx, repo, txID, models.TransactionTypeWithdrawal)
		if err != nil {
			return err
		}
		u, err := repo.GetUserForUpdate(ctx, t.UserID)
		if err != nil {
			return err
		}

		u.AvailableBalance = u.AvailableBalance.Add(t.Amount)
		if u.AvailableBalance.GreaterThan(u.Balance) {
			return apperrors.InvalidState("releasing withdrawal %s would exceed balance", t.Reference)
		}
		if err := repo.SaveBalances(ctx, u); err != nil {
			return err
		}

		s.markProcessed(t, models.TransactionStatusFailed, adminID)
		setReason(t, reason)
		tx, user = t, u
		return repo.UpdateTransactionStatus(ctx, t, models.TransactionStatusPending)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.metrics.RecordTransaction(tx.Type, tx.Status, tx.Amount)
	s.notify(user, tx, notification.EventTransactionUpdated,
		"Withdrawal rejected",
		withReason(fmt.Sprintf("Your withdrawal %s was rejected and %s returned to your available balance.", tx.Reference, tx.Amount.String()), reason))
	return tx, nil
}

// GetTransaction returns a transaction owned by userID.
func (s *Service) GetTransaction(ctx context.Context, userID, txID uint) (*models.Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, txID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if tx.UserID != userID {
		return nil, apperrors.NotFound("transaction")
	}
	return tx, nil
}

// ListTransactions returns one page of transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int64, error) {
	filter.Page, filter.Limit = NormalizePage(filter.Page, filter.Limit)
	return s.repo.ListTransactions(ctx, filter)
}

// NormalizePage clamps paging input to sane values.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func (s *Service) lockPending(ctx context.Context, repo repositories.LedgerRepository, txID uint, txType string) (*models.Transaction, error) {
	t, err := repo.GetTransactionForUpdate(ctx, txID)
	if err != nil {
		return nil, err
	}
	if t.Type != txType {
		return nil, apperrors.NotFound(lowerType(txType))
	}
	if t.Status != models.TransactionStatusPending {
		return nil, apperrors.InvalidState("transaction %s is %s", t.Reference, t.Status)
	}
	return t, nil
}

func (s *Service) markProcessed(t *models.Transaction, status string, adminID uint) {
	now := s.now()
	t.Status = status
	t.ProcessedAt = &now
	if adminID != 0 {
		id := adminID
		t.ProcessedBy = &id
	}
}

func (s *Service) notify(user *models.User, tx *models.Transaction, eventType, title, body string) {
	if s.notifier == nil || user == nil {
		return
	}
	kind := models.NotificationTypeDeposit
	if tx.Type == models.TransactionTypeWithdrawal {
		kind = models.NotificationTypeWithdrawal
	}
	s.notifier.Notify(notification.Message{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Type:   kind,
		Title:  title,
		Body:   body,
		Event:  notification.NewTransactionEvent(eventType, tx),
	})
}

func (s *Service) track(op string, start time.Time, errp *error) {
	metrics.Track(s.metrics, op, start, errp)
	if de, ok := apperrors.As(*errp); ok {
		s.metrics.RecordError(op, de.Code)
	}
}

func setReason(t *models.Transaction, reason string) {
	if reason == "" {
		return
	}
	meta := models.JSON{}
	for k, v := range t.Metadata {
		meta[k] = v
	}
	meta["reason"] = reason
	t.Metadata = meta
}

func withReason(msg, reason string) string {
	if reason == "" {
		return msg
	}
	return msg + " Reason: " + reason
}

func lowerType(txType string) string {
	switch txType {
	case models.TransactionTypeDeposit:
		return "deposit"
	case models.TransactionTypeWithdrawal:
		return "withdrawal"
	}
	return "transaction"
}

// mapRepoError turns repository sentinels into domain errors. Domain errors
// and unknown errors pass through.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.NotFound("user")
	case errors.Is(err, repositories.ErrTransactionNotFound):
		return apperrors.NotFound("transaction")
	case errors.Is(err, repositories.ErrInvestmentNotFound):
		return apperrors.NotFound("investment")
	case errors.Is(err, repositories.ErrStatusConflict):
		return apperrors.InvalidState("transaction was already processed")
	}
	return err
}
