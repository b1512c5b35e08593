package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	FullName       string   `json:"full_name"`
	Role           UserRole `json:"role"`
	CompanyID      string   `json:"company_id,omitempty"`
	CollaboratorID *string  `json:"collaborator_id,omitempty"`
}

// JWTClaims is the token payload carried through request contexts.
type JWTClaims struct {
	UserID         string   `json:"uid"`
	Email          string   `json:"email"`
	Role           UserRole `json:"role"`
	CompanyID      string   `json:"company_id,omitempty"`
	CollaboratorID string   `json:"collaborator_id,omitempty"`
	jwt.RegisteredClaims
}

// PasswordResetRequest is the body of the password-reset flow:
// the caller proves identity by answering the stored security questions.
type PasswordResetRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Answers     []string `json:"answers" validate:"required,min=1"`
	NewPassword string   `json:"new_password" validate:"required,min=6"`
}

// PasswordResetResult is the success body of the reset endpoint.
type PasswordResetResult struct {
	Message string `json:"message"`
}

// PasswordReset records one reset attempt for auditability.
type PasswordReset struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Succeeded bool      `db:"succeeded" json:"succeeded"`
	IPAddress string    `db:"ip_address" json:"ip_address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
