package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bravoform/bravoform-api/internal/models"
	appErrors "github.com/bravoform/bravoform-api/pkg/errors"
	"github.com/bravoform/bravoform-api/pkg/export"
)

// ExportFormat enumerates the supported download formats.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

type exportResponseRepository interface {
	List(ctx context.Context, filter models.ResponseFilter) ([]models.Response, int, error)
}

// ExportService renders a form's responses as CSV or PDF. Columns follow the
// form's field order with the submission metadata up front; cell text goes
// through the same display rendering the detail view uses.
type ExportService struct {
	responses exportResponseRepository
	forms     responseFormLoader
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	maxRows   int
	logger    *zap.Logger
	location  *time.Location
}

// NewExportService constructs an ExportService.
func NewExportService(responses exportResponseRepository, forms responseFormLoader, maxRows int, logger *zap.Logger, location *time.Location) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	if maxRows <= 0 {
		maxRows = 5000
	}
	return &ExportService{
		responses: responses,
		forms:     forms,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		maxRows:   maxRows,
		logger:    logger,
		location:  location,
	}
}

// Export renders the form's responses inside the optional window.
func (s *ExportService) Export(ctx context.Context, formID string, format ExportFormat, from, to *time.Time) (*ExportFile, error) {
	form, err := s.forms.Get(ctx, formID)
	if err != nil {
		return nil, err
	}

	responses, _, err := s.responses.List(ctx, models.ResponseFilter{
		FormID:   formID,
		From:     from,
		To:       to,
		PageSize: s.maxRows,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load responses")
	}

	data := s.buildDataset(form, responses)
	stamp := time.Now().In(s.location).Format("2006-01-02")
	base := fmt.Sprintf("%s-responses-%s", slugify(form.Title), stamp)

	switch format {
	case FormatCSV:
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: base + ".csv", ContentType: "text/csv", Content: content}, nil
	case FormatPDF:
		subtitle := fmt.Sprintf("%d responses, generated %s", len(responses), stamp)
		content, err := s.pdf.Render(data, form.Title, subtitle)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *ExportService) buildDataset(form *models.Form, responses []models.Response) export.Dataset {
	headers := []string{"Respondent", "Submitted"}
	fieldHeaders := make(map[string]string, len(form.Fields))
	for _, field := range form.Fields {
		desc, known := DescriptorFor(field.Type)
		if !known || !desc.Answerable {
			continue
		}
		header := field.Label
		if header == "" {
			header = field.ID
		}
		// duplicate labels get the field id appended so columns stay distinct
		if _, taken := fieldHeaders[header]; taken {
			header = header + " (" + field.ID + ")"
		}
		fieldHeaders[header] = field.ID
		headers = append(headers, header)
	}

	rows := make([]map[string]string, 0, len(responses))
	fieldsByID := make(map[string]models.Field, len(form.Fields))
	for _, field := range form.Fields {
		fieldsByID[field.ID] = field
	}
	for i := range responses {
		resp := &responses[i]
		row := map[string]string{
			"Respondent": resp.CollaboratorUsername,
			"Submitted":  resp.EffectiveTime().In(s.location).Format("2006-01-02 15:04"),
		}
		for header, fieldID := range fieldHeaders {
			row[header] = DisplayAnswer(fieldsByID[fieldID], resp.Answers[fieldID])
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func slugify(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastDash := true
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "form"
	}
	return out
}
