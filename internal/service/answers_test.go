package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravoform/bravoform-api/internal/models"
)

func textField(required bool) models.Field {
	return models.Field{ID: "f1", Type: models.FieldText, Label: "Name", Required: required}
}

func tableField() models.Field {
	return models.Field{
		ID: "tbl", Type: models.FieldTable, Label: "Stock",
		Columns: []models.TableColumn{
			{ID: "qty", Label: "Qty", Type: models.ColumnNumber},
			{ID: "exp", Label: "Expiry", Type: models.ColumnDate},
			{ID: "state", Label: "State", Type: models.ColumnSelect, Options: []string{"ok", "low"}},
		},
		Rows: []models.TableRow{{ID: "r1", Label: "Shelf A"}},
	}
}

func TestValidateAnswerRequired(t *testing.T) {
	err := ValidateAnswer(textField(true), "")
	require.Error(t, err)

	assert.NoError(t, ValidateAnswer(textField(false), ""))
	assert.NoError(t, ValidateAnswer(textField(true), "Ana"))
}

func TestValidateAnswerHeaderRejected(t *testing.T) {
	field := models.Field{ID: "h", Type: models.FieldHeader, Label: "Section"}
	assert.Error(t, ValidateAnswer(field, "anything"))
}

func TestValidateAnswerDate(t *testing.T) {
	field := models.Field{ID: "d", Type: models.FieldDate, Label: "Visited"}
	assert.NoError(t, ValidateAnswer(field, "2026-03-01"))
	assert.Error(t, ValidateAnswer(field, "01/03/2026"))
	assert.Error(t, ValidateAnswer(field, 20260301))
}

func TestValidateAnswerSingleChoiceMembership(t *testing.T) {
	field := models.Field{ID: "s", Type: models.FieldSingleChoice, Label: "Outcome", Options: []string{"ok", "fail"}}
	assert.NoError(t, ValidateAnswer(field, "ok"))
	assert.Error(t, ValidateAnswer(field, "maybe"))
}

func TestValidateAnswerCheckboxGroup(t *testing.T) {
	field := models.Field{ID: "c", Type: models.FieldCheckboxGroup, Label: "Issues", Options: []string{"a", "b"}}
	assert.NoError(t, ValidateAnswer(field, []string{"a"}))
	// generic slice shape produced by JSON decoding
	assert.NoError(t, ValidateAnswer(field, []interface{}{"a", "b"}))
	assert.Error(t, ValidateAnswer(field, []string{"z"}))
	assert.Error(t, ValidateAnswer(field, "a"))
}

func TestValidateAnswerSignature(t *testing.T) {
	field := models.Field{ID: "sig", Type: models.FieldSignature, Label: "Signature"}
	assert.NoError(t, ValidateAnswer(field, "data:image/png;base64,iVBOR"))
	assert.Error(t, ValidateAnswer(field, "not-an-image"))
}

func TestValidateAnswerAttachment(t *testing.T) {
	field := models.Field{ID: "att", Type: models.FieldAttachment, Label: "Photos"}
	assert.NoError(t, ValidateAnswer(field, "receipt.jpg"))
	assert.NoError(t, ValidateAnswer(field, []interface{}{
		map[string]interface{}{"name": "a.jpg", "url": "https://x/a.jpg", "type": "image/jpeg"},
	}))
	assert.Error(t, ValidateAnswer(field, []interface{}{"a.jpg"}))
}

func TestValidateAnswerTable(t *testing.T) {
	field := tableField()

	assert.NoError(t, ValidateAnswer(field, map[string]map[string]string{
		"r1": {"qty": "12", "exp": "2026-05-01", "state": "ok"},
	}))

	assert.Error(t, ValidateAnswer(field, map[string]map[string]string{
		"r1": {"qty": "twelve"},
	}))
	assert.Error(t, ValidateAnswer(field, map[string]map[string]string{
		"r1": {"state": "unknown"},
	}))
	assert.Error(t, ValidateAnswer(field, map[string]map[string]string{
		"ghost": {"qty": "1"},
	}))
	assert.Error(t, ValidateAnswer(field, map[string]map[string]string{
		"r1": {"ghost": "1"},
	}))
}

func TestAnsweredTable(t *testing.T) {
	field := tableField()
	assert.False(t, Answered(field, map[string]map[string]string{"r1": {"qty": ""}}))
	assert.True(t, Answered(field, map[string]map[string]string{"r1": {"qty": "3"}}))
	assert.False(t, Answered(field, nil))
}

func TestDisplayAnswerShapes(t *testing.T) {
	assert.Equal(t, "Ana", DisplayAnswer(textField(false), "Ana"))
	assert.Equal(t, "", DisplayAnswer(textField(false), nil))

	checkbox := models.Field{ID: "c", Type: models.FieldCheckboxGroup, Options: []string{"a", "b"}}
	assert.Equal(t, "a, b", DisplayAnswer(checkbox, []interface{}{"a", "b"}))

	sig := models.Field{ID: "s", Type: models.FieldSignature}
	assert.Equal(t, "[signature]", DisplayAnswer(sig, "data:image/png;base64,iVBOR"))

	att := models.Field{ID: "att", Type: models.FieldAttachment}
	assert.Equal(t, "a.jpg, b.jpg", DisplayAnswer(att, []models.AttachmentValue{
		{Name: "a.jpg"}, {Name: "b.jpg"},
	}))
}

func TestDisplayAnswerTable(t *testing.T) {
	field := tableField()
	got := DisplayAnswer(field, map[string]map[string]string{
		"r1": {"qty": "3", "state": "ok"},
	})
	assert.Equal(t, "Shelf A: Qty=3, State=ok", got)
}

func TestDisplayAnswerToleratesMismatchedShape(t *testing.T) {
	// a legacy number stored under a text field is stringified, not dropped
	got := DisplayAnswer(textField(false), 42)
	assert.Equal(t, "42", got)

	table := DisplayAnswer(tableField(), "flat value")
	assert.Equal(t, "flat value", table)
}
