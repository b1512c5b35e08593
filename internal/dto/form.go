package dto

import "github.com/bravoform/bravoform-api/internal/models"

// SaveFormRequest is the builder payload for creating or updating a form.
// Partial documents are accepted; the normalizer fills the gaps.
type SaveFormRequest struct {
	Title         string            `json:"title" validate:"required"`
	Description   string            `json:"description"`
	CompanyID     string            `json:"company_id" validate:"required"`
	DepartmentID  string            `json:"department_id" validate:"required"`
	Fields        []models.Field    `json:"fields"`
	Theme         *models.Theme     `json:"theme"`
	Settings      *models.Settings  `json:"settings"`
	Automation    models.Automation `json:"automation"`
	Collaborators []string          `json:"collaborators"`
}

// FieldTypeInfo describes one entry of the field type registry for the
// builder palette.
type FieldTypeInfo struct {
	Type        models.FieldType `json:"type"`
	Label       string           `json:"label"`
	Icon        string           `json:"icon"`
	Description string           `json:"description"`
	Answerable  bool             `json:"answerable"`
	HasOptions  bool             `json:"has_options"`
	HasTable    bool             `json:"has_table"`
}

// AssignedForm is a collaborator-facing form annotated with today's
// completion state.
type AssignedForm struct {
	Form           models.Form `json:"form"`
	Pending        bool        `json:"pending"`
	UsedToday      int         `json:"used_today"`
	Limit          int         `json:"limit,omitempty"`
	LimitReached   bool        `json:"limit_reached"`
	RespondedToday bool        `json:"responded_today"`
}
