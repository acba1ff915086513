package identity

import "time"

// Roles assigned to users. Admins may list all transactions.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account holder.
type User struct {
	ID           int64
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash []byte
	Role         string
	Active       bool
	CreatedAt    time.Time
}

// Credentials carries a login attempt.
type Credentials struct {
	Username string
	Password string
}
