package dto

import "github.com/bravoform/bravoform-api/internal/models"

// SaveCompanyRequest creates or renames a company.
type SaveCompanyRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=120"`
	Active *bool  `json:"active"`
}

// SaveDepartmentRequest creates or renames a department within a company.
type SaveDepartmentRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

// SaveCollaboratorRequest creates or updates a collaborator.
type SaveCollaboratorRequest struct {
	DepartmentID string `json:"department_id" validate:"required"`
	Username     string `json:"username" validate:"required,min=3,max=60"`
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	Active       *bool  `json:"active"`
}

// CompanyDetail pairs a company with its departments.
type CompanyDetail struct {
	Company     models.Company      `json:"company"`
	Departments []models.Department `json:"departments"`
}
