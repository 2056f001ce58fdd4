package repositories

import (
	"context"
	"time"

	"fintrivox/internal/models"

	"github.com/shopspring/decimal"
)

// LedgerRepository owns user balances, ledger transactions and
// investments. Writes that must be atomic go through ExecuteInTransaction;
// the repository handed to fn is bound to that database transaction.
type LedgerRepository interface {
	ExecuteInTransaction(ctx context.Context, fn func(LedgerRepository) error) error

	// Users
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	GetUserForUpdate(ctx context.Context, userID uint) (*models.User, error)
	SaveBalances(ctx context.Context, user *models.User) error
	SetWithdrawalKey(ctx context.Context, userID uint, hash string) error

	// Transactions
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, id uint) (*models.Transaction, error)
	GetTransactionForUpdate(ctx context.Context, id uint) (*models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, tx *models.Transaction, from string) error
	SumPendingWithdrawals(ctx context.Context, userID uint) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int64, error)

	// Investments
	CreateInvestment(ctx context.Context, inv *models.Investment) error
	GetInvestmentForUpdate(ctx context.Context, id uint) (*models.Investment, error)
	SaveInvestment(ctx context.Context, inv *models.Investment) error
	// ListDueInvestments pages due investments by ascending id, starting
	// after afterID.
	ListDueInvestments(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.Investment, error)
	ListInvestments(ctx context.Context, filter models.InvestmentFilter) ([]models.Investment, int64, error)
}
