package dto

import "github.com/bravoform/bravoform-api/internal/models"

// SubmitResponseRequest is the payload for submitting a filled form.
type SubmitResponseRequest struct {
	FormID  string           `json:"form_id" validate:"required"`
	Answers models.AnswerMap `json:"answers" validate:"required"`
}

// EditResponseRequest replaces the answers of an existing response. Only the
// answers may change on the history-edit path.
type EditResponseRequest struct {
	Answers models.AnswerMap `json:"answers" validate:"required"`
}

// RenderedAnswer is one field of a response resolved to its display label and
// text, in form field order.
type RenderedAnswer struct {
	FieldID string `json:"field_id"`
	Label   string `json:"label"`
	Value   string `json:"value"`
}

// ResponseDetail pairs a stored response with its rendered answers.
type ResponseDetail struct {
	Response models.Response  `json:"response"`
	Rendered []RenderedAnswer `json:"rendered"`
}
