package user

import (
	"context"
)

// Repository persists users and their profiles.
type Repository interface {
	// Create stores the user and an empty profile in one transaction.
	// A taken username yields ErrUsernameDuplicate.
	Create(ctx context.Context, user *User) error

	// FindByID and FindByUsername return ErrUserNotFound when no row matches.
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Exists reports whether id names a stored user.
	Exists(ctx context.Context, id uint) (bool, error)

	// Update writes email, names and the staff flag. Username and password
	// hash are not touched.
	Update(ctx context.Context, user *User) error

	// Delete removes the user and its profile, and clears reader_id on
	// instances and reviewer_id on reviews, in one transaction.
	Delete(ctx context.Context, id uint) error

	// FindProfile returns the profile of userID with its user loaded, or
	// ErrProfileNotFound.
	FindProfile(ctx context.Context, userID uint) (*Profile, error)

	// UpdatePhoto sets only the photo URL.
	UpdatePhoto(ctx context.Context, userID uint, photoURL string) error
}
