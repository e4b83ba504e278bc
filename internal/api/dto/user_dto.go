package dto

import "github.com/spec-kit/grievance-service/internal/domain"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email        string      `json:"email"`
	Password     string      `json:"password"`
	Role         domain.Role `json:"role"`
	FullName     string      `json:"fullName"`
	MobileNumber string      `json:"mobileNumber"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Message  string      `json:"message"`
	UserID   int64       `json:"userId"`
	Role     domain.Role `json:"role"`
	FullName string      `json:"fullName"`
}

// UserResponse is the public user profile. It never carries the password hash.
type UserResponse struct {
	ID           int64       `json:"id"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
	FullName     string      `json:"fullName"`
	MobileNumber string      `json:"mobileNumber"`
}
