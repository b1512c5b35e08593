package models

import "time"

// UserRole represents the available roles for access control.
type UserRole string

const (
	RoleAdmin        UserRole = "ADMIN"
	RoleLeader       UserRole = "LEADER"
	RoleCollaborator UserRole = "COLLABORATOR"
)

// User represents an authenticated account. Collaborator accounts carry the
// collaborator id they act as.
type User struct {
	ID              string     `db:"id" json:"id"`
	Email           string     `db:"email" json:"email"`
	Username        string     `db:"username" json:"username"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	FullName        string     `db:"full_name" json:"full_name"`
	Role            UserRole   `db:"role" json:"role"`
	CompanyID       string     `db:"company_id" json:"company_id"`
	CollaboratorID  *string    `db:"collaborator_id" json:"collaborator_id,omitempty"`
	SecurityAnswers StringList `db:"security_answers" json:"-"`
	Active          bool       `db:"active" json:"active"`
	LastLogin       *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPagination derives the page count from the total.
func NewPagination(page, pageSize, total int) *Pagination {
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return &Pagination{Page: page, PageSize: pageSize, TotalCount: total, TotalPages: pages}
}
