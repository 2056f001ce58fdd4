package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fintrivox/internal/models"
	"fintrivox/internal/repositories"
	"fintrivox/internal/repositories/cache"
)

// Users is an in-memory repositories.UserRepository.
type Users struct {
	mu     sync.Mutex
	users  map[uint]models.User
	nextID uint
}

func NewUsers(users ...models.User) *Users {
	u := &Users{users: make(map[uint]models.User)}
	for _, user := range users {
		_ = u.Create(context.Background(), &user)
	}
	return u
}

var _ repositories.UserRepository = (*Users)(nil)

func (u *Users) Create(ctx context.Context, user *models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repositories.ErrEmailTaken
		}
	}
	if user.ID == 0 {
		u.nextID++
		user.ID = u.nextID
	} else if user.ID > u.nextID {
		u.nextID = user.ID
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.CreatedAt = time.Now()
	u.users[user.ID] = *user
	return nil
}

func (u *Users) GetByID(ctx context.Context, id uint) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &user, nil
}

func (u *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (u *Users) GetSession(ctx context.Context, id uint) (*cache.UserSession, error) {
	user, err := u.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &cache.UserSession{
		ID:           user.ID,
		Email:        user.Email,
		Role:         user.Role,
		Status:       user.Status,
		TokenVersion: user.TokenVersion,
	}, nil
}

func (u *Users) IncrementTokenVersion(ctx context.Context, userID uint) error {
	return u.update(userID, func(user *models.User) { user.TokenVersion++ })
}

func (u *Users) UpdatePassword(ctx context.Context, userID uint, hashedPassword string) error {
	return u.update(userID, func(user *models.User) { user.Password = hashedPassword })
}

func (u *Users) UpdateStatus(ctx context.Context, userID uint, status string) error {
	return u.update(userID, func(user *models.User) { user.Status = status })
}

func (u *Users) UpdateWithdrawalKey(ctx context.Context, userID uint, hashedKey string) error {
	return u.update(userID, func(user *models.User) { user.WithdrawalKey = hashedKey })
}

func (u *Users) TouchLogin(ctx context.Context, userID uint, at time.Time) error {
	return u.update(userID, func(user *models.User) { user.LastLoginAt = &at })
}

func (u *Users) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	all := make([]models.User, 0, len(u.users))
	for _, user := range u.users {
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page, limit), int64(len(all)), nil
}

func (u *Users) update(userID uint, fn func(*models.User)) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	fn(&user)
	u.users[userID] = user
	return nil
}
