package models

import (
	"database/sql/driver"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FieldType is the closed set of input kinds a form may contain.
type FieldType string

const (
	FieldText          FieldType = "text"
	FieldCheckboxGroup FieldType = "checkbox-group"
	FieldSingleChoice  FieldType = "single-choice"
	FieldDate          FieldType = "date"
	FieldSignature     FieldType = "signature"
	FieldAttachment    FieldType = "attachment"
	FieldTable         FieldType = "table"
	FieldHeader        FieldType = "header"
)

// ColumnType enumerates the cell kinds a table column may hold.
type ColumnType string

const (
	ColumnText   ColumnType = "text"
	ColumnNumber ColumnType = "number"
	ColumnDate   ColumnType = "date"
	ColumnSelect ColumnType = "select"
)

// DisplayAs selects the widget for single-choice fields.
const (
	DisplayRadio    = "radio"
	DisplayDropdown = "dropdown"
)

// TableColumn describes one column of a table field.
type TableColumn struct {
	ID      string     `json:"id"`
	Label   string     `json:"label"`
	Type    ColumnType `json:"type"`
	Options []string   `json:"options,omitempty"`
}

// TableRow describes one row of a table field.
type TableRow struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Field is one input element of a form. Order within Form.Fields is the
// render and fill order.
type Field struct {
	ID        string        `json:"id"`
	Type      FieldType     `json:"type"`
	Label     string        `json:"label"`
	Required  bool          `json:"required"`
	DisplayAs string        `json:"displayAs,omitempty"`
	Options   []string      `json:"options,omitempty"`
	Columns   []TableColumn `json:"columns,omitempty"`
	Rows      []TableRow    `json:"rows,omitempty"`
}

// FieldList is the ordered field collection persisted as a JSONB column.
type FieldList []Field

func (f FieldList) Value() (driver.Value, error) { return jsonbValue(f) }
func (f *FieldList) Scan(src interface{}) error  { return jsonbScan(src, f) }

// Theme holds the flat presentation record. After normalization every key is
// populated.
type Theme struct {
	PrimaryColor    string `json:"primaryColor"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	AccentColor     string `json:"accentColor"`
	FontFamily      string `json:"fontFamily"`
	BorderRadius    string `json:"borderRadius"`
	Spacing         string `json:"spacing"`
}

func (t Theme) Value() (driver.Value, error) { return jsonbValue(t) }
func (t *Theme) Scan(src interface{}) error  { return jsonbScan(src, t) }

// Settings captures workflow toggles. DailyLimitCount is meaningful only when
// DailyLimitEnabled is set.
type Settings struct {
	AllowSave           bool `json:"allowSave"`
	ShowProgress        bool `json:"showProgress"`
	ConfirmBeforeSubmit bool `json:"confirmBeforeSubmit"`
	DailyLimitEnabled   bool `json:"dailyLimitEnabled"`
	DailyLimitCount     int  `json:"dailyLimitCount"`
}

// UnmarshalJSON fills the fixed policy for absent keys (allowSave and
// showProgress default on, confirmBeforeSubmit off) and coerces legacy
// dailyLimitCount values stored as strings or floats.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type settingsDoc struct {
		AllowSave           *bool       `json:"allowSave"`
		ShowProgress        *bool       `json:"showProgress"`
		ConfirmBeforeSubmit *bool       `json:"confirmBeforeSubmit"`
		DailyLimitEnabled   *bool       `json:"dailyLimitEnabled"`
		DailyLimitCount     interface{} `json:"dailyLimitCount"`
	}
	var doc settingsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	s.AllowSave = boolOr(doc.AllowSave, true)
	s.ShowProgress = boolOr(doc.ShowProgress, true)
	s.ConfirmBeforeSubmit = boolOr(doc.ConfirmBeforeSubmit, false)
	s.DailyLimitEnabled = boolOr(doc.DailyLimitEnabled, false)
	s.DailyLimitCount = coerceCount(doc.DailyLimitCount)
	return nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func coerceCount(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func (s Settings) Value() (driver.Value, error) { return jsonbValue(s) }

// Scan applies the same fixed policy as the decoder when the column is NULL,
// so a row without settings never reads as allowSave=false.
func (s *Settings) Scan(src interface{}) error {
	if src == nil {
		*s = Settings{AllowSave: true, ShowProgress: true}
		return nil
	}
	return jsonbScan(src, s)
}

// AutomationType enumerates supported notification channels.
type AutomationType string

const (
	AutomationNone     AutomationType = ""
	AutomationEmail    AutomationType = "email"
	AutomationWhatsApp AutomationType = "whatsapp"
)

// Automation configures the downstream notification for new responses.
type Automation struct {
	Type   AutomationType `json:"type"`
	Target string         `json:"target"`
}

func (a Automation) Value() (driver.Value, error) { return jsonbValue(a) }
func (a *Automation) Scan(src interface{}) error  { return jsonbScan(src, a) }

// StringList is a JSONB-persisted string array column.
type StringList []string

func (l StringList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *StringList) Scan(src interface{}) error  { return jsonbScan(src, l) }

// Form is a named, ordered collection of fields scoped to one department of
// one company. Collaborators is the editable assignment list in the builder;
// AuthorizedUsers is the enforced copy kept in sync on save.
type Form struct {
	ID              string     `db:"id" json:"id"`
	Title           string     `db:"title" json:"title"`
	Description     string     `db:"description" json:"description"`
	CompanyID       string     `db:"company_id" json:"company_id"`
	DepartmentID    string     `db:"department_id" json:"department_id"`
	Fields          FieldList  `db:"fields" json:"fields"`
	Theme           Theme      `db:"theme" json:"theme"`
	Settings        Settings   `db:"settings" json:"settings"`
	Automation      Automation `db:"automation" json:"automation"`
	Collaborators   StringList `db:"collaborators" json:"collaborators"`
	AuthorizedUsers StringList `db:"authorized_users" json:"authorized_users"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// FormFilter captures listing criteria for forms.
type FormFilter struct {
	CompanyID      string
	DepartmentID   string
	CollaboratorID string
	Search         string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
