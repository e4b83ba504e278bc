package domain

import "time"

// Role distinguishes administrators from citizens.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleCitizen Role = "CITIZEN"
)

// User is an account that raises or administers grievances.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	FullName     string
	MobileNumber string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
