// Package user manages accounts, password checks and reader profiles.
package user

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// bcryptCost is lowered by tests.
var bcryptCost = 12

// Service manages accounts and profiles.
type Service interface {
	// Register hashes the password with bcrypt and stores the account with
	// an empty profile. A taken username returns ErrUsernameDuplicate.
	Register(ctx context.Context, in RegisterInput) (*User, error)

	// Authenticate checks a username and password pair. An unknown username
	// and a wrong password both return ErrInvalidPassword.
	Authenticate(ctx context.Context, username, password string) (*User, error)

	Get(ctx context.Context, id uint) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error

	GetProfile(ctx context.Context, userID uint) (*Profile, error)

	// UpdateProfile writes names and email on the account and returns the
	// refreshed profile.
	UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*Profile, error)
	SetPhoto(ctx context.Context, userID uint, photoURL string) (*Profile, error)
}

type service struct {
	repo Repository
}

// NewService creates the user service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "hash password")
	}

	u := NewUser(in.Username, in.Email, string(hashed), in.Staff)
	u.FirstName = in.FirstName
	u.LastName = in.LastName

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidPassword
		}
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidPassword
		}
		return nil, apperrors.Wrap(err, "compare password")
	}
	return u, nil
}

func (s *service) Get(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.FindByUsername(ctx, username)
}

func (s *service) Exists(ctx context.Context, id uint) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	return s.repo.FindProfile(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*Profile, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Email = in.Email
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	return s.repo.FindProfile(ctx, userID)
}

func (s *service) SetPhoto(ctx context.Context, userID uint, photoURL string) (*Profile, error) {
	if err := s.repo.UpdatePhoto(ctx, userID, photoURL); err != nil {
		return nil, err
	}
	return s.repo.FindProfile(ctx, userID)
}
