package model

import "time"

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole converts a string token into a Role.
func ParseRole(token string) (Role, error) {
	switch Role(token) {
	case RoleUser, RoleAdmin:
		return Role(token), nil
	default:
		return "", &ValidationError{Field: "role", Value: token, Msg: "must be user or admin"}
	}
}

// User is an account able to authenticate against the API.
// PasswordHash is only ever written to storage.
type User struct {
	Base
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	LastLogin    *time.Time
}

// NewUser creates an active user without a password.
func NewUser(username, email string, role Role) *User {
	return &User{
		Base:     newBase(),
		Username: username,
		Email:    email,
		Role:     role,
		IsActive: true,
	}
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
