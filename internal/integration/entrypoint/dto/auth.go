// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"github.com/campus-coins/backend/internal/application/usecase/account"
)

// RegisterStudentRequest represents the request body for student registration.
type RegisterStudentRequest struct {
	Name       string `json:"name" binding:"required,max=150"`
	Email      string `json:"email" binding:"required,email"`
	NationalID string `json:"national_id" binding:"required,max=20"`
	Course     string `json:"course" binding:"max=150"`
	Password   string `json:"password" binding:"required"`
}

// RegisterTeacherRequest represents the request body for teacher registration.
type RegisterTeacherRequest struct {
	Name       string `json:"name" binding:"required,max=150"`
	Email      string `json:"email" binding:"required,email"`
	NationalID string `json:"national_id" binding:"required,max=20"`
	Department string `json:"department" binding:"max=150"`
	Password   string `json:"password" binding:"required"`
}

// RegisterCompanyRequest represents the request body for partner company registration.
type RegisterCompanyRequest struct {
	Name               string `json:"name" binding:"required,max=150"`
	Email              string `json:"email" binding:"required,email"`
	RegistrationNumber string `json:"registration_number" binding:"required,max=20"`
	Password           string `json:"password" binding:"required"`
}

// LoginRequest represents the request body for login.
// Fields are validated by the use case, so login only ever fails with an unknown
// role or invalid credentials.
type LoginRequest struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest represents the request body for an administrative password reset.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	NewPassword string `json:"new_password"`
}

// AccountResponse identifies an account in API responses.
type AccountResponse struct {
	ID    uint   `json:"id"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MessageResponse represents a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ToRegisterResponse converts a registration output to an AccountResponse.
func ToRegisterResponse(out *account.RegisterAccountOutput) AccountResponse {
	return AccountResponse{ID: out.ID, Role: out.Role.String(), Name: out.Name, Email: out.Email}
}

// ToLoginResponse converts a login output to an AccountResponse.
func ToLoginResponse(out *account.LoginOutput) AccountResponse {
	return AccountResponse{ID: out.ID, Role: out.Role.String(), Name: out.Name, Email: out.Email}
}
