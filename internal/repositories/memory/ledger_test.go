package memory

import (
	"context"
	"errors"
	"testing"

	"fintrivox/internal/models"
	"fintrivox/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	ledger.AddUser(models.User{Email: "a@example.com", Balance: decimal.NewFromInt(10)})

	boom := errors.New("boom")
	err := ledger.ExecuteInTransaction(ctx, func(repo repositories.LedgerRepository) error {
		u, err := repo.GetUserForUpdate(ctx, 1)
		require.NoError(t, err)
		u.Balance = decimal.NewFromInt(99)
		require.NoError(t, repo.SaveBalances(ctx, u))
		require.NoError(t, repo.CreateTransaction(ctx, &models.Transaction{UserID: 1, Reference: "DEP-1-AAAA"}))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.True(t, decimal.NewFromInt(10).Equal(ledger.User(1).Balance))
	assert.Empty(t, ledger.Transactions())
}

func TestLedgerConditionalStatusUpdate(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	tx := &models.Transaction{UserID: 1, Reference: "WDR-1-AAAA", Status: models.TransactionStatusPending}
	require.NoError(t, ledger.CreateTransaction(ctx, tx))

	tx.Status = models.TransactionStatusCompleted
	require.NoError(t, ledger.UpdateTransactionStatus(ctx, tx, models.TransactionStatusPending))

	tx.Status = models.TransactionStatusFailed
	err := ledger.UpdateTransactionStatus(ctx, tx, models.TransactionStatusPending)
	assert.ErrorIs(t, err, repositories.ErrStatusConflict)
	assert.Equal(t, models.TransactionStatusCompleted, ledger.Transactions()[0].Status)
}

func TestLedgerRejectsDuplicateReference(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	require.NoError(t, ledger.CreateTransaction(ctx, &models.Transaction{Reference: "DEP-1-AAAA"}))
	assert.Error(t, ledger.CreateTransaction(ctx, &models.Transaction{Reference: "DEP-1-AAAA"}))
}
