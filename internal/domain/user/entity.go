package user

import (
	"strings"
	"time"
)

// User is an account. Readers borrow and review, staff also administer
// instances and the catalog. Password holds the bcrypt hash.
type User struct {
	ID        uint
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	IsStaff   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser builds an account from an already hashed password.
func NewUser(username, email, hashedPassword string, staff bool) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		IsStaff:   staff,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FullName is "First Last", falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Profile belongs to exactly one user and goes away with it.
type Profile struct {
	ID       uint
	UserID   uint
	PhotoURL string

	// User is loaded together with the profile.
	User *User
}
