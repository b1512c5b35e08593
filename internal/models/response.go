package models

import (
	"database/sql/driver"
	"time"
)

// AnswerMap maps field id -> submitted value. Value shapes depend on the
// field type; see the answers service for the per-type contract. Persisted
// as a JSONB column.
type AnswerMap map[string]interface{}

func (a AnswerMap) Value() (driver.Value, error) { return jsonbValue(a) }
func (a *AnswerMap) Scan(src interface{}) error  { return jsonbScan(src, a) }

// AttachmentValue is one uploaded file reference inside an attachment answer.
type AttachmentValue struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Response is one submission of a form by one collaborator. It references
// form and collaborator weakly by id and may outlive either.
type Response struct {
	ID                   string     `db:"id" json:"id"`
	FormID               string     `db:"form_id" json:"form_id"`
	CollaboratorID       string     `db:"collaborator_id" json:"collaborator_id"`
	CollaboratorUsername string     `db:"collaborator_username" json:"collaborator_username"`
	Answers              AnswerMap  `db:"answers" json:"answers"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	SubmittedAt          *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
}

// EffectiveTime resolves the timestamp used for all time-windowed logic:
// SubmittedAt when present, else CreatedAt. Every consumer (daily limits,
// dashboards, exports) must go through this resolver.
func (r *Response) EffectiveTime() time.Time {
	if r.SubmittedAt != nil && !r.SubmittedAt.IsZero() {
		return *r.SubmittedAt
	}
	return r.CreatedAt
}

// ResponseFilter captures listing criteria for responses.
type ResponseFilter struct {
	FormID         string
	CollaboratorID string
	From           *time.Time
	To             *time.Time
	Page           int
	PageSize       int
}
