package user

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redmonkez12/shop-api/internal/filestore"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles user persistence in the users collection
type Repository struct {
	store *filestore.Store
}

func NewRepository(store *filestore.Store) *Repository {
	return &Repository{store: store}
}

// GetByEmail retrieves a user by email, ignoring case
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var users []User
	if err := r.store.Read(filestore.Users, &users); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	i := slices.IndexFunc(users, func(u User) bool { return sameEmail(u.Email, email) })
	if i < 0 {
		return nil, ErrNotFound
	}
	return &users[i], nil
}

// Create appends u unless another user already has the same email (ignoring case)
func (r *Repository) Create(ctx context.Context, u User) error {
	err := r.store.WithLock(func() error {
		var users []User
		if err := r.store.Read(filestore.Users, &users); err != nil {
			return err
		}

		if slices.ContainsFunc(users, func(existing User) bool { return sameEmail(existing.Email, u.Email) }) {
			return ErrDuplicateEmail
		}

		return r.store.Write(filestore.Users, append(users, u))
	}, filestore.Users)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Modify applies fn to the stored user with the given id and saves the result
func (r *Repository) Modify(ctx context.Context, id string, fn func(u *User) error) (*User, error) {
	var modified User
	err := r.store.WithLock(func() error {
		var users []User
		if err := r.store.Read(filestore.Users, &users); err != nil {
			return err
		}

		i := slices.IndexFunc(users, func(u User) bool { return u.ID == id })
		if i < 0 {
			return ErrNotFound
		}
		if err := fn(&users[i]); err != nil {
			return err
		}
		modified = users[i]

		return r.store.Write(filestore.Users, users)
	}, filestore.Users)
	if err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return &modified, nil
}
