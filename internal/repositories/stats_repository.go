package repositories

import (
	"context"
	"fmt"

	"fintrivox/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatsRepository computes the back office aggregates.
type StatsRepository interface {
	AdminStats(ctx context.Context) (*models.AdminStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

type countSum struct {
	Count int64
	Total decimal.Decimal
}

func (r *statsRepository) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	db := r.db.WithContext(ctx)
	stats := &models.AdminStats{}

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := db.Model(&models.User{}).Where("status = ?", models.UserStatusActive).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}
	if err := db.Model(&models.User{}).Where("kyc_status = ?", models.KYCStatusVerified).Count(&stats.VerifiedUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count verified users: %w", err)
	}
	if err := db.Model(&models.KYCVerification{}).Where("status = ?", models.KYCVerificationPending).Count(&stats.PendingKYC).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending kyc: %w", err)
	}

	pendingDeposits, err := r.transactionTotals(db, "net_amount", models.TransactionTypeDeposit, models.TransactionStatusPending)
	if err != nil {
		return nil, err
	}
	stats.PendingDeposits, stats.PendingDepositAmount = pendingDeposits.Count, pendingDeposits.Total

	pendingWithdrawals, err := r.transactionTotals(db, "amount", models.TransactionTypeWithdrawal, models.TransactionStatusPending)
	if err != nil {
		return nil, err
	}
	stats.PendingWithdrawals, stats.PendingWithdrawAmount = pendingWithdrawals.Count, pendingWithdrawals.Total

	deposited, err := r.transactionTotals(db, "net_amount", models.TransactionTypeDeposit, models.TransactionStatusCompleted)
	if err != nil {
		return nil, err
	}
	stats.TotalDeposited = deposited.Total

	withdrawn, err := r.transactionTotals(db, "amount", models.TransactionTypeWithdrawal, models.TransactionStatusCompleted)
	if err != nil {
		return nil, err
	}
	stats.TotalWithdrawn = withdrawn.Total

	var active countSum
	err = db.Model(&models.Investment{}).
		Where("status = ?", models.InvestmentStatusActive).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Scan(&active).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum active investments: %w", err)
	}
	stats.ActiveInvestments, stats.ActivePrincipal = active.Count, active.Total

	return stats, nil
}

// transactionTotals sums column, which is net_amount for deposits (what was
// credited) and amount for withdrawals (what was debited).
func (r *statsRepository) transactionTotals(db *gorm.DB, column, txType, status string) (countSum, error) {
	var out countSum
	err := db.Model(&models.Transaction{}).
		Where("type = ? AND status = ?", txType, status).
		Select("COUNT(*) AS count, COALESCE(SUM(" + column + "), 0) AS total").
		Scan(&out).Error
	if err != nil {
		return out, fmt.Errorf("failed to total %s %s transactions: %w", status, txType, err)
	}
	return out, nil
}
