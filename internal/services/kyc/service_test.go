package kyc

import (
	"context"
	"sync"
	"testing"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/models"
	"fintrivox/internal/repositories"
	"fintrivox/internal/repositories/memory"
	"fintrivox/internal/services/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockKYCRepository struct {
	mock.Mock
}

func (m *MockKYCRepository) ExecuteInTransaction(ctx context.Context, fn func(repositories.KYCRepository) error) error {
	return fn(m)
}

func (m *MockKYCRepository) LockUser(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockKYCRepository) Create(ctx context.Context, v *models.KYCVerification) error {
	args := m.Called(ctx, v)
	v.ID = 1
	return args.Error(0)
}

func (m *MockKYCRepository) GetForUpdate(ctx context.Context, id uint) (*models.KYCVerification, error) {
	args := m.Called(ctx, id)
	if v, ok := args.Get(0).(*models.KYCVerification); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockKYCRepository) Save(ctx context.Context, v *models.KYCVerification) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockKYCRepository) LatestForUser(ctx context.Context, userID uint) (*models.KYCVerification, error) {
	args := m.Called(ctx, userID)
	if v, ok := args.Get(0).(*models.KYCVerification); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockKYCRepository) ListByStatus(ctx context.Context, status string, page, limit int) ([]models.KYCVerification, int64, error) {
	args := m.Called(ctx, status, page, limit)
	return args.Get(0).([]models.KYCVerification), args.Get(1).(int64), args.Error(2)
}

func (m *MockKYCRepository) SetUserKYCStatus(ctx context.Context, userID uint, status string) error {
	return m.Called(ctx, userID, status).Error(0)
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

func validInput() SubmitInput {
	return SubmitInput{
		DocumentType:   "Passport",
		DocumentNumber: "P1234567",
		DocumentURL:    "https://files.example.com/p.png",
	}
}

func TestSubmit(t *testing.T) {
	repo := new(MockKYCRepository)
	repo.On("LockUser", mock.Anything, uint(7)).Return(nil)
	repo.On("LatestForUser", mock.Anything, uint(7)).Return(nil, repositories.ErrKYCNotFound)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(v *models.KYCVerification) bool {
		return v.UserID == 7 && v.DocumentType == "passport" && v.Status == models.KYCVerificationPending
	})).Return(nil)
	repo.On("SetUserKYCStatus", mock.Anything, uint(7), models.KYCStatusSubmitted).Return(nil)

	jane := models.User{Email: "jane@example.com", Name: "Jane"}
	jane.ID = 7
	users := memory.NewUsers(jane)
	notifier := &recordingNotifier{}
	svc := NewService(repo, users, notifier)

	v, err := svc.Submit(context.Background(), 7, validInput())
	require.NoError(t, err)
	assert.Equal(t, models.KYCVerificationPending, v.Status)
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "jane@example.com", notifier.messages[0].Email)
	repo.AssertExpectations(t)
}

func TestSubmitRejectsWhilePending(t *testing.T) {
	repo := new(MockKYCRepository)
	repo.On("LockUser", mock.Anything, uint(7)).Return(nil)
	repo.On("LatestForUser", mock.Anything, uint(7)).
		Return(&models.KYCVerification{Status: models.KYCVerificationPending}, nil)

	svc := NewService(repo, nil, nil)
	_, err := svc.Submit(context.Background(), 7, validInput())
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitLocksUserBeforeReadingLatest(t *testing.T) {
	repo := new(MockKYCRepository)
	var calls []string
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) { calls = append(calls, name) }
	}
	repo.On("LockUser", mock.Anything, uint(7)).Return(nil).Run(record("LockUser"))
	repo.On("LatestForUser", mock.Anything, uint(7)).Return(nil, repositories.ErrKYCNotFound).Run(record("LatestForUser"))
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Run(record("Create"))
	repo.On("SetUserKYCStatus", mock.Anything, uint(7), models.KYCStatusSubmitted).Return(nil).Run(record("SetUserKYCStatus"))

	svc := NewService(repo, nil, nil)
	_, err := svc.Submit(context.Background(), 7, validInput())
	require.NoError(t, err)
	assert.Equal(t, []string{"LockUser", "LatestForUser", "Create", "SetUserKYCStatus"}, calls)
}

func TestSubmitUnknownUser(t *testing.T) {
	repo := new(MockKYCRepository)
	repo.On("LockUser", mock.Anything, uint(8)).Return(repositories.ErrUserNotFound)

	svc := NewService(repo, nil, nil)
	_, err := svc.Submit(context.Background(), 8, validInput())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "LatestForUser", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitValidatesDocuments(t *testing.T) {
	svc := NewService(new(MockKYCRepository), nil, nil)
	_, err := svc.Submit(context.Background(), 7, SubmitInput{DocumentType: "selfie"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestApproveAndReject(t *testing.T) {
	repo := new(MockKYCRepository)
	pending := &models.KYCVerification{UserID: 7, Status: models.KYCVerificationPending}
	pending.ID = 3
	repo.On("GetForUpdate", mock.Anything, uint(3)).Return(pending, nil).Once()
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	repo.On("SetUserKYCStatus", mock.Anything, uint(7), models.KYCStatusVerified).Return(nil)

	svc := NewService(repo, nil, &recordingNotifier{})
	v, err := svc.Approve(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, models.KYCVerificationVerified, v.Status)
	require.NotNil(t, v.ReviewedBy)
	assert.Equal(t, uint(1), *v.ReviewedBy)

	repo.On("GetForUpdate", mock.Anything, uint(3)).Return(v, nil).Once()
	_, err = svc.Reject(context.Background(), 1, 3, "blurry")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	repo.On("GetForUpdate", mock.Anything, uint(9)).Return(nil, repositories.ErrKYCNotFound)
	_, err = svc.Approve(context.Background(), 1, 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRejectStoresNote(t *testing.T) {
	repo := new(MockKYCRepository)
	pending := &models.KYCVerification{UserID: 7, Status: models.KYCVerificationPending}
	repo.On("GetForUpdate", mock.Anything, uint(4)).Return(pending, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	repo.On("SetUserKYCStatus", mock.Anything, uint(7), models.KYCStatusRejected).Return(nil)

	notifier := &recordingNotifier{}
	svc := NewService(repo, nil, notifier)
	v, err := svc.Reject(context.Background(), 1, 4, " blurry scan ")
	require.NoError(t, err)
	assert.Equal(t, "blurry scan", v.ReviewNote)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0].Body, "blurry scan")
}
