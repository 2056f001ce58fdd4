package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrivox/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) ExecuteInTransaction(ctx context.Context, fn func(LedgerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}

func (r *ledgerRepository) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *ledgerRepository) GetUserForUpdate(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	return &user, nil
}

func (r *ledgerRepository) SaveBalances(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Model(user).
		Select(models.BalanceColumns).
		Updates(user).Error
	if err != nil {
		return fmt.Errorf("failed to save balances: %w", err)
	}
	return nil
}

func (r *ledgerRepository) SetWithdrawalKey(ctx context.Context, userID uint, hash string) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("withdrawal_key", hash)
	if result.Error != nil {
		return fmt.Errorf("failed to set withdrawal key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *ledgerRepository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *ledgerRepository) GetTransactionForUpdate(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&tx, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to lock transaction: %w", err)
	}
	return &tx, nil
}

// UpdateTransactionStatus writes only the status columns, and only if the
// row is still in status from.
func (r *ledgerRepository) UpdateTransactionStatus(ctx context.Context, tx *models.Transaction, from string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", tx.ID, from).
		Updates(map[string]interface{}{
			"status":       tx.Status,
			"tx_hash":      tx.TxHash,
			"processed_at": tx.ProcessedAt,
			"processed_by": tx.ProcessedBy,
			"metadata":     tx.Metadata,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *ledgerRepository) SumPendingWithdrawals(ctx context.Context, userID uint) (decimal.Decimal, error) {
	var result sumResult
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND status = ?",
			userID, models.TransactionTypeWithdrawal, models.TransactionStatusPending).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum pending withdrawals: %w", err)
	}
	return result.Total, nil
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txs []models.Transaction
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(offset(filter.Page, filter.Limit)).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, total, nil
}

func (r *ledgerRepository) CreateInvestment(ctx context.Context, inv *models.Investment) error {
	if err := r.db.WithContext(ctx).Omit("Plan").Create(inv).Error; err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetInvestmentForUpdate(ctx context.Context, id uint) (*models.Investment, error) {
	var inv models.Investment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvestmentNotFound
		}
		return nil, fmt.Errorf("failed to lock investment: %w", err)
	}
	return &inv, nil
}

func (r *ledgerRepository) SaveInvestment(ctx context.Context, inv *models.Investment) error {
	if err := r.db.WithContext(ctx).Omit("Plan").Save(inv).Error; err != nil {
		return fmt.Errorf("failed to save investment: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListDueInvestments(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.Investment, error) {
	var invs []models.Investment
	err := r.db.WithContext(ctx).
		Where("status = ? AND id > ?", models.InvestmentStatusActive, afterID).
		Where("(next_profit_date <= ? OR end_date <= ?)", now, now).
		Order("id ASC").
		Limit(limit).
		Find(&invs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due investments: %w", err)
	}
	return invs, nil
}

func (r *ledgerRepository) ListInvestments(ctx context.Context, filter models.InvestmentFilter) ([]models.Investment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Investment{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count investments: %w", err)
	}

	var invs []models.Investment
	err := query.Preload("Plan").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(offset(filter.Page, filter.Limit)).
		Find(&invs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list investments: %w", err)
	}
	return invs, total, nil
}

type sumResult struct {
	Total decimal.Decimal
}

func offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}
