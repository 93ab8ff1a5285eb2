package user

import (
	"context"

	"courseattend/internal/auth"
)

// Service handles account lifecycle.
type Service struct {
	repo *Repository
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Signup creates an account with a bcrypt-hashed password.
func (s *Service) Signup(ctx context.Context, name, email, password string) (User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}
	return s.repo.Insert(ctx, User{Name: name, Email: email, PasswordHash: hash})
}

// Signin verifies credentials and returns the account.
func (s *Service) Signin(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return User{}, ErrBadCredentials
	}
	return *u, nil
}

// Get returns a user's profile.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// UpdateProfile applies name/email/password changes. A changed email must not
// collide with another account.
func (s *Service) UpdateProfile(ctx context.Context, id string, upd Update) error {
	if upd.Email != nil {
		existing, err := s.repo.GetByEmail(ctx, *upd.Email)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != id {
			return ErrEmailTaken
		}
	}
	var hash *string
	if upd.Password != nil {
		h, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return err
		}
		hash = &h
	}
	return s.repo.UpdateFields(ctx, id, upd.Name, upd.Email, hash)
}

// DeleteAccount removes the account after re-verifying the password.
func (s *Service) DeleteAccount(ctx context.Context, id, passwordConfirmation string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrNotFound
	}
	if !auth.CheckPassword(u.PasswordHash, passwordConfirmation) {
		return ErrBadCredentials
	}
	return s.repo.Delete(ctx, id)
}
