package user

import "errors"

var (
	ErrNotFound       = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already in use")
	ErrBadCredentials = errors.New("invalid email or password")
)

// User is a registered account. PasswordHash never leaves the package through
// JSON.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"created_at"`
}

// Update carries optional profile changes; nil fields are left untouched.
type Update struct {
	Name     *string
	Email    *string
	Password *string
}
