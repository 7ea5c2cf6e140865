package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/cohorthub/internal/domain/user"
	"github.com/google/uuid"
)

type UsersRepo struct {
	mu      sync.RWMutex
	byID    map[string]user.User
	byEmail map[string]string // email -> id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		byID:    make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return r.byID[id], nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sortUsers(out)

	return out, nil
}

// Create checks and inserts under one lock, which is the memory equivalent of a unique index.
func (r *UsersRepo) Create(_ context.Context, email, passwordHash, name string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    time.Now().UTC(),
	}

	r.byID[u.ID] = u
	r.byEmail[email] = u.ID

	return u, nil
}

func sortUsers(us []user.User) {
	sort.Slice(us, func(i, j int) bool {
		if us[i].CreatedAt.Equal(us[j].CreatedAt) {
			return us[i].ID < us[j].ID
		}
		return us[i].CreatedAt.Before(us[j].CreatedAt)
	})
}
