package memory

import (
	"context"
	"sync"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
)

// UserDirectory is an in-memory, insertion-ordered app.UserDirectory.
type UserDirectory struct {
	mu    sync.RWMutex
	users []domain.User
}

var _ app.UserDirectory = (*UserDirectory)(nil)

func NewUserDirectory(users ...domain.User) *UserDirectory {
	return &UserDirectory{users: append([]domain.User(nil), users...)}
}

// Add appends a user; used for seeding.
func (d *UserDirectory) Add(user domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = append(d.users, user)
}

func (d *UserDirectory) FindByID(_ context.Context, id string) (domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.NotFound("user", id)
}

func (d *UserDirectory) FindByGrade(_ context.Context, grade string) ([]domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.User, 0)
	for _, u := range d.users {
		if u.Grade == grade {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *UserDirectory) List(_ context.Context) ([]domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]domain.User(nil), d.users...), nil
}

func (d *UserDirectory) Count(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users), nil
}
