package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/user-directory/internal/domain"
	apperrors "github.com/spec-kit/user-directory/pkg/util/errorutil"
)

const duplicateEmailMessage = "A user with this email already exists."

// UserRepository defines access to the user directory.
type UserRepository interface {
	Create(ctx context.Context, changes domain.UserChanges) (domain.User, error)
	Update(ctx context.Context, id int, changes domain.UserChanges) (domain.User, error)
	Delete(ctx context.Context, id int) (domain.User, error)
	GetByID(ctx context.Context, id int) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type memoryUserRepository struct {
	mu     sync.RWMutex
	users  []domain.User
	emails map[string]int
	nextID int
	now    func() time.Time
}

// NewMemoryUserRepository returns an in-memory repository holding seed, in order.
// Ids continue after the highest seeded id.
func NewMemoryUserRepository(seed []domain.User) UserRepository {
	r := &memoryUserRepository{
		users:  make([]domain.User, 0, len(seed)),
		emails: make(map[string]int, len(seed)),
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, u := range seed {
		r.users = append(r.users, u)
		r.emails[normalizeEmail(u.Email)] = u.ID
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
	}
	return r
}

// SeedUsers is the initial directory content.
func SeedUsers() []domain.User {
	created := time.Now().UTC()
	phone := func(s string) *string { return &s }
	return []domain.User{
		{ID: 1, FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", PhoneNumber: phone("555-0101"), DateCreated: created, IsActive: true},
		{ID: 2, FirstName: "Jane", LastName: "Smith", Email: "jane.smith@example.com", PhoneNumber: phone("555-0102"), DateCreated: created, IsActive: true},
		{ID: 3, FirstName: "Bob", LastName: "Johnson", Email: "bob.johnson@example.com", PhoneNumber: phone("555-0103"), DateCreated: created, IsActive: true},
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *memoryUserRepository) Create(_ context.Context, changes domain.UserChanges) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(changes.Email)
	if _, taken := r.emails[email]; taken {
		return domain.User{}, apperrors.NewConflict(duplicateEmailMessage)
	}

	user := domain.User{
		ID:          r.nextID,
		FirstName:   changes.FirstName,
		LastName:    changes.LastName,
		Email:       changes.Email,
		PhoneNumber: changes.PhoneNumber,
		DateCreated: r.now(),
		IsActive:    true,
	}
	r.nextID++
	r.users = append(r.users, user)
	r.emails[email] = user.ID
	return user, nil
}

func (r *memoryUserRepository) Update(_ context.Context, id int, changes domain.UserChanges) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return domain.User{}, apperrors.NewNotFound("User", id)
	}

	email := normalizeEmail(changes.Email)
	if owner, taken := r.emails[email]; taken && owner != id {
		return domain.User{}, apperrors.NewConflict(duplicateEmailMessage)
	}

	user := r.users[idx]
	delete(r.emails, normalizeEmail(user.Email))
	updated := r.now()
	user.FirstName = changes.FirstName
	user.LastName = changes.LastName
	user.Email = changes.Email
	user.PhoneNumber = changes.PhoneNumber
	user.IsActive = changes.IsActive
	user.DateUpdated = &updated

	r.users[idx] = user
	r.emails[email] = id
	return user, nil
}

func (r *memoryUserRepository) Delete(_ context.Context, id int) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return domain.User{}, apperrors.NewNotFound("User", id)
	}
	user := r.users[idx]
	r.users = slices.Delete(r.users, idx, idx+1)
	delete(r.emails, normalizeEmail(user.Email))
	return user, nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id int) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return domain.User{}, apperrors.NewNotFound("User", id)
	}
	return r.users[idx], nil
}

// List returns a snapshot in insertion order.
func (r *memoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

func (r *memoryUserRepository) indexOf(id int) int {
	for i := range r.users {
		if r.users[i].ID == id {
			return i
		}
	}
	return -1
}
