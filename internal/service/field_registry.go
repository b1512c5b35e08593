package service

import "github.com/bravoform/bravoform-api/internal/models"

// FieldDescriptor declares the builder/editor/renderer contract for one field
// type. The registry is a closed set: adding a type means extending the
// answer validation, display and aggregation switches alongside it.
type FieldDescriptor struct {
	Type        models.FieldType
	Label       string
	Icon        string
	Description string

	// Answerable is false for presentation-only elements.
	Answerable bool
	// HasOptions marks types whose fields carry an options list.
	HasOptions bool
	// HasTable marks types whose fields carry columns and rows.
	HasTable bool
	// HasDisplayAs marks types with a selectable widget.
	HasDisplayAs bool
}

var fieldRegistry = []FieldDescriptor{
	{
		Type:        models.FieldText,
		Label:       "Text",
		Icon:        "type",
		Description: "Single-line free text input",
		Answerable:  true,
	},
	{
		Type:        models.FieldCheckboxGroup,
		Label:       "Checkboxes",
		Icon:        "check-square",
		Description: "Multiple selection from a list of options",
		Answerable:  true,
		HasOptions:  true,
	},
	{
		Type:         models.FieldSingleChoice,
		Label:        "Single choice",
		Icon:         "circle-dot",
		Description:  "One selection, rendered as radio buttons or a dropdown",
		Answerable:   true,
		HasOptions:   true,
		HasDisplayAs: true,
	},
	{
		Type:        models.FieldDate,
		Label:       "Date",
		Icon:        "calendar",
		Description: "Calendar date picker",
		Answerable:  true,
	},
	{
		Type:        models.FieldSignature,
		Label:       "Signature",
		Icon:        "pen-line",
		Description: "Hand-drawn signature captured as an image",
		Answerable:  true,
	},
	{
		Type:        models.FieldAttachment,
		Label:       "Attachment",
		Icon:        "paperclip",
		Description: "One or more uploaded files",
		Answerable:  true,
	},
	{
		Type:        models.FieldTable,
		Label:       "Table",
		Icon:        "table",
		Description: "Grid of typed cells with fixed rows and columns",
		Answerable:  true,
		HasTable:    true,
	},
	{
		Type:        models.FieldHeader,
		Label:       "Header",
		Icon:        "heading",
		Description: "Section heading, not answerable",
	},
}

var fieldRegistryIndex = func() map[models.FieldType]FieldDescriptor {
	index := make(map[models.FieldType]FieldDescriptor, len(fieldRegistry))
	for _, desc := range fieldRegistry {
		index[desc.Type] = desc
	}
	return index
}()

// FieldTypes returns the registry in palette order.
func FieldTypes() []FieldDescriptor {
	out := make([]FieldDescriptor, len(fieldRegistry))
	copy(out, fieldRegistry)
	return out
}

// DescriptorFor looks up the descriptor for a field type tag.
func DescriptorFor(t models.FieldType) (FieldDescriptor, bool) {
	desc, ok := fieldRegistryIndex[t]
	return desc, ok
}

// KnownFieldType reports whether the tag belongs to the registry.
func KnownFieldType(t models.FieldType) bool {
	_, ok := fieldRegistryIndex[t]
	return ok
}
