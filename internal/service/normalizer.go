package service

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/bravoform/bravoform-api/internal/models"
)

// DefaultTheme is the baseline presentation record; stored themes are
// overlaid onto it key by key.
var DefaultTheme = models.Theme{
	PrimaryColor:    "#2563eb",
	BackgroundColor: "#ffffff",
	TextColor:       "#111827",
	AccentColor:     "#f59e0b",
	FontFamily:      "Inter, sans-serif",
	BorderRadius:    "8px",
	Spacing:         "16px",
}

// DefaultSettings is the fixed policy applied when settings keys are absent.
var DefaultSettings = models.Settings{
	AllowSave:           true,
	ShowProgress:        true,
	ConfirmBeforeSubmit: false,
	DailyLimitEnabled:   false,
	DailyLimitCount:     0,
}

// NewFieldID generates an identifier for fields, columns and rows created
// without one: nanosecond timestamp plus a random suffix.
func NewFieldID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// rand failure still yields a usable, time-ordered id
		return "f" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return "f" + strconv.FormatInt(time.Now().UnixNano(), 36) + hex.EncodeToString(buf)
}

// NormalizeForm repairs an arbitrary, possibly partial form document into a
// structurally complete one. It is pure, total and idempotent: any input
// yields a form satisfying every structural invariant, and normalizing twice
// changes nothing.
func NormalizeForm(form *models.Form) {
	if form == nil {
		return
	}

	seen := make(map[string]struct{}, len(form.Fields))
	for i := range form.Fields {
		normalizeField(&form.Fields[i], seen)
	}
	if form.Fields == nil {
		form.Fields = models.FieldList{}
	}

	form.Theme = overlayTheme(form.Theme)
	form.Settings = normalizeSettings(form.Settings)

	if form.Collaborators == nil {
		form.Collaborators = models.StringList{}
	}
	if form.AuthorizedUsers == nil {
		form.AuthorizedUsers = models.StringList{}
	}
}

func normalizeField(field *models.Field, seen map[string]struct{}) {
	field.ID = uniqueID(field.ID, seen)

	desc, known := DescriptorFor(field.Type)
	if known && desc.HasOptions && field.Options == nil {
		field.Options = []string{}
	}
	if known && desc.HasTable {
		if field.Columns == nil {
			field.Columns = []models.TableColumn{}
		}
		if field.Rows == nil {
			field.Rows = []models.TableRow{}
		}
		colSeen := make(map[string]struct{}, len(field.Columns))
		for i := range field.Columns {
			field.Columns[i].ID = uniqueID(field.Columns[i].ID, colSeen)
			if field.Columns[i].Type == "" {
				field.Columns[i].Type = models.ColumnText
			}
			if field.Columns[i].Type == models.ColumnSelect && field.Columns[i].Options == nil {
				field.Columns[i].Options = []string{}
			}
		}
		rowSeen := make(map[string]struct{}, len(field.Rows))
		for i := range field.Rows {
			field.Rows[i].ID = uniqueID(field.Rows[i].ID, rowSeen)
		}
	}
	if known && desc.HasDisplayAs && field.DisplayAs == "" {
		field.DisplayAs = models.DisplayRadio
	}
}

// uniqueID keeps a non-blank id unless it collides within the enclosing
// collection; blank or colliding ids get a fresh one.
func uniqueID(id string, seen map[string]struct{}) string {
	if id != "" {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			return id
		}
	}
	for {
		fresh := NewFieldID()
		if _, dup := seen[fresh]; !dup {
			seen[fresh] = struct{}{}
			return fresh
		}
	}
}

func overlayTheme(t models.Theme) models.Theme {
	out := DefaultTheme
	if t.PrimaryColor != "" {
		out.PrimaryColor = t.PrimaryColor
	}
	if t.BackgroundColor != "" {
		out.BackgroundColor = t.BackgroundColor
	}
	if t.TextColor != "" {
		out.TextColor = t.TextColor
	}
	if t.AccentColor != "" {
		out.AccentColor = t.AccentColor
	}
	if t.FontFamily != "" {
		out.FontFamily = t.FontFamily
	}
	if t.BorderRadius != "" {
		out.BorderRadius = t.BorderRadius
	}
	if t.Spacing != "" {
		out.Spacing = t.Spacing
	}
	return out
}

func normalizeSettings(s models.Settings) models.Settings {
	if s.DailyLimitCount < 0 {
		s.DailyLimitCount = 0
	}
	return s
}
