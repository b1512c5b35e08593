package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bravoform/bravoform-api/internal/models"
	appErrors "github.com/bravoform/bravoform-api/pkg/errors"
)

// The legal answer shape per field type:
//
//	text, date, signature, single-choice  -> string ("" when empty)
//	checkbox-group                        -> []string of option members
//	attachment                            -> []{name,url,type} or a bare filename string
//	table                                 -> rowID -> colID -> cell value
//	header                                -> not answerable
//
// ValidateAnswer gates writes; Answered and DisplayAnswer are total over
// arbitrary stored values and never panic on legacy shapes.

const isoDateLayout = "2006-01-02"

// ValidateAnswer checks a submitted value against the field's contract.
func ValidateAnswer(field models.Field, value interface{}) error {
	desc, known := DescriptorFor(field.Type)
	if !known {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown field type %q", field.Type))
	}
	if !desc.Answerable {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %q does not accept answers", field.ID))
	}

	if field.Required && !Answered(field, value) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %q is required", field.Label))
	}
	// Only the type-agnostic empty sentinels skip shape checking. A non-empty
	// value of the wrong shape is malformed, not unanswered.
	if isEmptyAnswer(value) {
		return nil
	}

	switch field.Type {
	case models.FieldText:
		_, ok := value.(string)
		if !ok {
			return shapeError(field, "string")
		}
		return nil
	case models.FieldDate:
		raw, ok := value.(string)
		if !ok {
			return shapeError(field, "ISO date string")
		}
		if _, err := time.Parse(isoDateLayout, raw); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %q expects a YYYY-MM-DD date", field.Label))
		}
		return nil
	case models.FieldSignature:
		raw, ok := value.(string)
		if !ok || !strings.HasPrefix(raw, "data:image/") {
			return shapeError(field, "data-URL image")
		}
		return nil
	case models.FieldSingleChoice:
		raw, ok := value.(string)
		if !ok {
			return shapeError(field, "string")
		}
		if !containsString(field.Options, raw) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("value %q is not an option of field %q", raw, field.Label))
		}
		return nil
	case models.FieldCheckboxGroup:
		items, ok := toStringSlice(value)
		if !ok {
			return shapeError(field, "array of strings")
		}
		for _, item := range items {
			if !containsString(field.Options, item) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("value %q is not an option of field %q", item, field.Label))
			}
		}
		return nil
	case models.FieldAttachment:
		if _, ok := value.(string); ok {
			// lightweight flows store a bare filename
			return nil
		}
		if _, ok := toAttachmentSlice(value); !ok {
			return shapeError(field, "array of {name,url,type}")
		}
		return nil
	case models.FieldTable:
		return validateTableAnswer(field, value)
	default:
		return shapeError(field, "known answer shape")
	}
}

func validateTableAnswer(field models.Field, value interface{}) error {
	matrix, ok := toMatrix(value)
	if !ok {
		return shapeError(field, "rowId -> colId -> value mapping")
	}
	columns := make(map[string]models.TableColumn, len(field.Columns))
	for _, col := range field.Columns {
		columns[col.ID] = col
	}
	rows := make(map[string]struct{}, len(field.Rows))
	for _, row := range field.Rows {
		rows[row.ID] = struct{}{}
	}
	for rowID, cells := range matrix {
		if _, ok := rows[rowID]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown row %q in table %q", rowID, field.Label))
		}
		for colID, cell := range cells {
			col, ok := columns[colID]
			if !ok {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown column %q in table %q", colID, field.Label))
			}
			if err := validateCell(field, col, cell); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateCell(field models.Field, col models.TableColumn, cell string) error {
	if cell == "" {
		return nil
	}
	switch col.Type {
	case models.ColumnNumber:
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("column %q of table %q expects a number", col.Label, field.Label))
		}
	case models.ColumnDate:
		if _, err := time.Parse(isoDateLayout, cell); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("column %q of table %q expects a YYYY-MM-DD date", col.Label, field.Label))
		}
	case models.ColumnSelect:
		if !containsString(col.Options, cell) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("value %q is not an option of column %q", cell, col.Label))
		}
	}
	return nil
}

// isEmptyAnswer reports whether the value is one of the empty sentinels
// (nil, "", empty list, empty mapping) regardless of field type.
func isEmptyAnswer(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	case map[string]string:
		return len(v) == 0
	case map[string]map[string]string:
		return len(v) == 0
	}
	return false
}

// Answered reports whether the value differs from the type's empty sentinel.
// For tables, at least one non-empty cell counts.
func Answered(field models.Field, value interface{}) bool {
	if value == nil {
		return false
	}
	switch field.Type {
	case models.FieldText, models.FieldDate, models.FieldSignature, models.FieldSingleChoice:
		raw, ok := value.(string)
		return ok && raw != ""
	case models.FieldCheckboxGroup:
		items, ok := toStringSlice(value)
		return ok && len(items) > 0
	case models.FieldAttachment:
		if raw, ok := value.(string); ok {
			return raw != ""
		}
		if items, ok := toAttachmentSlice(value); ok {
			return len(items) > 0
		}
		return false
	case models.FieldTable:
		matrix, ok := toMatrix(value)
		if !ok {
			return false
		}
		for _, cells := range matrix {
			for _, cell := range cells {
				if cell != "" {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// DisplayAnswer renders a stored value as human-readable text. It tolerates
// any shape: a value that does not match the field's contract is stringified
// rather than rejected, so legacy documents always render.
func DisplayAnswer(field models.Field, value interface{}) string {
	if value == nil {
		return ""
	}
	switch field.Type {
	case models.FieldCheckboxGroup:
		if items, ok := toStringSlice(value); ok {
			return strings.Join(items, ", ")
		}
	case models.FieldAttachment:
		if items, ok := toAttachmentSlice(value); ok {
			names := make([]string, 0, len(items))
			for _, item := range items {
				names = append(names, item.Name)
			}
			return strings.Join(names, ", ")
		}
	case models.FieldSignature:
		if raw, ok := value.(string); ok && strings.HasPrefix(raw, "data:image/") {
			return "[signature]"
		}
	case models.FieldTable:
		if matrix, ok := toMatrix(value); ok {
			return displayTable(field, matrix)
		}
	}
	if raw, ok := value.(string); ok {
		return raw
	}
	return stringify(value)
}

func displayTable(field models.Field, matrix map[string]map[string]string) string {
	rowLabels := make(map[string]string, len(field.Rows))
	for _, row := range field.Rows {
		rowLabels[row.ID] = row.Label
	}
	colLabels := make(map[string]string, len(field.Columns))
	for _, col := range field.Columns {
		colLabels[col.ID] = col.Label
	}

	parts := make([]string, 0, len(matrix))
	for _, row := range field.Rows {
		cells, ok := matrix[row.ID]
		if !ok {
			continue
		}
		cellParts := make([]string, 0, len(cells))
		for _, col := range field.Columns {
			if cell, ok := cells[col.ID]; ok && cell != "" {
				cellParts = append(cellParts, col.Label+"="+cell)
			}
		}
		if len(cellParts) > 0 {
			parts = append(parts, row.Label+": "+strings.Join(cellParts, ", "))
		}
	}
	// rows stored under ids the current schema no longer knows are appended
	// verbatim instead of dropped
	known := make(map[string]struct{}, len(field.Rows))
	for _, row := range field.Rows {
		known[row.ID] = struct{}{}
	}
	extras := make([]string, 0)
	for rowID, cells := range matrix {
		if _, ok := known[rowID]; ok {
			continue
		}
		extras = append(extras, rowID+": "+stringify(cells))
	}
	sort.Strings(extras)
	return strings.Join(append(parts, extras...), "; ")
}

func stringify(value interface{}) string {
	return fmt.Sprintf("%v", value)
}

func shapeError(field models.Field, expected string) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %q expects %s", field.Label, expected))
}

func containsString(haystack []string, needle string) bool {
	for _, item := range haystack {
		if item == needle {
			return true
		}
	}
	return false
}

// toStringSlice accepts both []string and the []interface{} produced by
// decoding stored JSON.
func toStringSlice(value interface{}) ([]string, bool) {
	switch items := value.(type) {
	case []string:
		return items, true
	case []interface{}:
		out := make([]string, 0, len(items))
		for _, item := range items {
			raw, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, raw)
		}
		return out, true
	default:
		return nil, false
	}
}

func toAttachmentSlice(value interface{}) ([]models.AttachmentValue, bool) {
	switch items := value.(type) {
	case []models.AttachmentValue:
		return items, true
	case []interface{}:
		out := make([]models.AttachmentValue, 0, len(items))
		for _, item := range items {
			entry, ok := item.(map[string]interface{})
			if !ok {
				return nil, false
			}
			att := models.AttachmentValue{}
			if name, ok := entry["name"].(string); ok {
				att.Name = name
			}
			if url, ok := entry["url"].(string); ok {
				att.URL = url
			}
			if mime, ok := entry["type"].(string); ok {
				att.Type = mime
			}
			out = append(out, att)
		}
		return out, true
	default:
		return nil, false
	}
}

// toMatrix accepts the typed matrix and the generic map decoded from JSON.
// Non-string cells are stringified so one odd cell never discards a row.
func toMatrix(value interface{}) (map[string]map[string]string, bool) {
	switch matrix := value.(type) {
	case map[string]map[string]string:
		return matrix, true
	case map[string]interface{}:
		out := make(map[string]map[string]string, len(matrix))
		for rowID, rawCells := range matrix {
			cells, ok := rawCells.(map[string]interface{})
			if !ok {
				return nil, false
			}
			row := make(map[string]string, len(cells))
			for colID, cell := range cells {
				if raw, ok := cell.(string); ok {
					row[colID] = raw
				} else if cell == nil {
					row[colID] = ""
				} else {
					row[colID] = stringify(cell)
				}
			}
			out[rowID] = row
		}
		return out, true
	default:
		return nil, false
	}
}
