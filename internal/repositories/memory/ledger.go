// Package memory holds in-process repository implementations used by
// service tests. Transactions copy the whole state on begin and swap it in
// on commit, so a failed unit leaves nothing behind.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fintrivox/internal/models"
	"fintrivox/internal/repositories"

	"github.com/shopspring/decimal"
)

type ledgerState struct {
	users        map[uint]models.User
	transactions map[uint]models.Transaction
	investments  map[uint]models.Investment
	references   map[string]uint
	nextTxID     uint
	nextInvID    uint
}

func (s *ledgerState) clone() *ledgerState {
	c := &ledgerState{
		users:        make(map[uint]models.User, len(s.users)),
		transactions: make(map[uint]models.Transaction, len(s.transactions)),
		investments:  make(map[uint]models.Investment, len(s.investments)),
		references:   make(map[string]uint, len(s.references)),
		nextTxID:     s.nextTxID,
		nextInvID:    s.nextInvID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.investments {
		c.investments[k] = v
	}
	for k, v := range s.references {
		c.references[k] = v
	}
	return c
}

// Ledger is an in-memory repositories.LedgerRepository.
type Ledger struct {
	mu    *sync.Mutex
	state *ledgerState
	inTx  bool

	// FailOn makes the named operation return an error, for rollback tests.
	FailOn map[string]error
}

func NewLedger() *Ledger {
	return &Ledger{
		mu: &sync.Mutex{},
		state: &ledgerState{
			users:        make(map[uint]models.User),
			transactions: make(map[uint]models.Transaction),
			investments:  make(map[uint]models.Investment),
			references:   make(map[string]uint),
		},
		FailOn: make(map[string]error),
	}
}

var _ repositories.LedgerRepository = (*Ledger)(nil)

func (l *Ledger) lock() func() {
	if l.inTx {
		return func() {}
	}
	l.mu.Lock()
	return l.mu.Unlock
}

func (l *Ledger) fail(op string) error {
	return l.FailOn[op]
}

func (l *Ledger) ExecuteInTransaction(ctx context.Context, fn func(repositories.LedgerRepository) error) error {
	if l.inTx {
		return fn(l)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	child := &Ledger{mu: l.mu, state: l.state.clone(), inTx: true, FailOn: l.FailOn}
	if err := fn(child); err != nil {
		return err
	}
	l.state = child.state
	return nil
}

// InTransaction reports whether a unit of work currently holds the ledger.
func (l *Ledger) InTransaction() bool {
	if l.mu.TryLock() {
		l.mu.Unlock()
		return false
	}
	return true
}

// AddUser seeds a user and returns its stored copy.
func (l *Ledger) AddUser(u models.User) models.User {
	defer l.lock()()
	if u.ID == 0 {
		u.ID = uint(len(l.state.users) + 1)
	}
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}
	l.state.users[u.ID] = u
	return u
}

// User returns the committed copy of a user.
func (l *Ledger) User(id uint) models.User {
	defer l.lock()()
	return l.state.users[id]
}

// Transactions returns committed transactions ordered by id.
func (l *Ledger) Transactions() []models.Transaction {
	defer l.lock()()
	out := make([]models.Transaction, 0, len(l.state.transactions))
	for _, tx := range l.state.transactions {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Investment returns the committed copy of an investment.
func (l *Ledger) Investment(id uint) models.Investment {
	defer l.lock()()
	return l.state.investments[id]
}

func (l *Ledger) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	return l.GetUserForUpdate(ctx, userID)
}

func (l *Ledger) GetUserForUpdate(ctx context.Context, userID uint) (*models.User, error) {
	defer l.lock()()
	u, ok := l.state.users[userID]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (l *Ledger) SaveBalances(ctx context.Context, user *models.User) error {
	defer l.lock()()
	if err := l.fail("SaveBalances"); err != nil {
		return err
	}
	cur, ok := l.state.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	cur.Balance = user.Balance
	cur.AvailableBalance = user.AvailableBalance
	cur.InvestedAmount = user.InvestedAmount
	cur.TotalProfit = user.TotalProfit
	cur.TotalWithdrawn = user.TotalWithdrawn
	cur.TotalDeposited = user.TotalDeposited
	l.state.users[user.ID] = cur
	return nil
}

func (l *Ledger) SetWithdrawalKey(ctx context.Context, userID uint, hash string) error {
	defer l.lock()()
	cur, ok := l.state.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	cur.WithdrawalKey = hash
	l.state.users[userID] = cur
	return nil
}

func (l *Ledger) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	defer l.lock()()
	if err := l.fail("CreateTransaction"); err != nil {
		return err
	}
	if _, dup := l.state.references[tx.Reference]; dup {
		return fmt.Errorf("duplicate reference %s", tx.Reference)
	}
	l.state.nextTxID++
	tx.ID = l.state.nextTxID
	now := time.Now()
	tx.CreatedAt, tx.UpdatedAt = now, now
	l.state.transactions[tx.ID] = *tx
	l.state.references[tx.Reference] = tx.ID
	return nil
}

func (l *Ledger) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	defer l.lock()()
	tx, ok := l.state.transactions[id]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	return &tx, nil
}

func (l *Ledger) GetTransactionForUpdate(ctx context.Context, id uint) (*models.Transaction, error) {
	return l.GetTransaction(ctx, id)
}

func (l *Ledger) UpdateTransactionStatus(ctx context.Context, tx *models.Transaction, from string) error {
	defer l.lock()()
	cur, ok := l.state.transactions[tx.ID]
	if !ok || cur.Status != from {
		return repositories.ErrStatusConflict
	}
	cur.Status = tx.Status
	cur.TxHash = tx.TxHash
	cur.ProcessedAt = tx.ProcessedAt
	cur.ProcessedBy = tx.ProcessedBy
	cur.Metadata = tx.Metadata
	cur.UpdatedAt = time.Now()
	l.state.transactions[tx.ID] = cur
	return nil
}

func (l *Ledger) SumPendingWithdrawals(ctx context.Context, userID uint) (decimal.Decimal, error) {
	defer l.lock()()
	total := decimal.Zero
	for _, tx := range l.state.transactions {
		if tx.UserID == userID &&
			tx.Type == models.TransactionTypeWithdrawal &&
			tx.Status == models.TransactionStatusPending {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

func (l *Ledger) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int64, error) {
	defer l.lock()()
	var matched []models.Transaction
	for _, tx := range l.state.transactions {
		if filter.UserID != 0 && tx.UserID != filter.UserID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		matched = append(matched, tx)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (l *Ledger) CreateInvestment(ctx context.Context, inv *models.Investment) error {
	defer l.lock()()
	if err := l.fail("CreateInvestment"); err != nil {
		return err
	}
	l.state.nextInvID++
	inv.ID = l.state.nextInvID
	now := time.Now()
	inv.CreatedAt, inv.UpdatedAt = now, now
	l.state.investments[inv.ID] = *inv
	return nil
}

func (l *Ledger) GetInvestmentForUpdate(ctx context.Context, id uint) (*models.Investment, error) {
	defer l.lock()()
	inv, ok := l.state.investments[id]
	if !ok {
		return nil, repositories.ErrInvestmentNotFound
	}
	return &inv, nil
}

func (l *Ledger) SaveInvestment(ctx context.Context, inv *models.Investment) error {
	defer l.lock()()
	if err := l.fail("SaveInvestment"); err != nil {
		return err
	}
	if _, ok := l.state.investments[inv.ID]; !ok {
		return repositories.ErrInvestmentNotFound
	}
	inv.UpdatedAt = time.Now()
	l.state.investments[inv.ID] = *inv
	return nil
}

func (l *Ledger) ListDueInvestments(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.Investment, error) {
	defer l.lock()()
	var due []models.Investment
	for _, inv := range l.state.investments {
		if inv.Status != models.InvestmentStatusActive || inv.ID <= afterID {
			continue
		}
		if !inv.NextProfitDate.After(now) || !inv.EndDate.After(now) {
			due = append(due, inv)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (l *Ledger) ListInvestments(ctx context.Context, filter models.InvestmentFilter) ([]models.Investment, int64, error) {
	defer l.lock()()
	var matched []models.Investment
	for _, inv := range l.state.investments {
		if filter.UserID != 0 && inv.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		matched = append(matched, inv)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
