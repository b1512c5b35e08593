package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bravoform/bravoform-api/internal/dto"
	"github.com/bravoform/bravoform-api/internal/models"
	appErrors "github.com/bravoform/bravoform-api/pkg/errors"
)

type dashboardFormRepository interface {
	ListByCompany(ctx context.Context, companyID string) ([]models.Form, error)
}

type dashboardResponseRepository interface {
	ListByForms(ctx context.Context, formIDs []string) ([]models.Response, error)
}

// DashboardQuery scopes an aggregation run. CompanyID is mandatory; the
// remaining fields narrow the result.
type DashboardQuery struct {
	CompanyID    string
	DepartmentID string
	FormID       string
	From         time.Time
	To           time.Time
}

// DashboardResult pairs the payload with cache provenance for the handler's
// meta block.
type DashboardResult struct {
	Data     dto.DashboardResponse
	CacheHit bool
}

// DashboardService computes company dashboards from forms and responses. The
// queries fetch the scope's raw rows; all shaping happens in the pure
// aggregation functions so the numbers are reproducible.
type DashboardService struct {
	forms     dashboardFormRepository
	responses dashboardResponseRepository
	cache     *CacheService
	cacheTTL  time.Duration
	logger    *zap.Logger
	location  *time.Location
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(forms dashboardFormRepository, responses dashboardResponseRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger, location *time.Location) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		forms:     forms,
		responses: responses,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
		location:  location,
	}
}

// Build assembles the dashboard for the query scope, serving from cache when
// possible.
func (s *DashboardService) Build(ctx context.Context, query DashboardQuery) (*DashboardResult, error) {
	if query.CompanyID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "company id is required")
	}

	key := s.cacheKey(query)
	if s.cache != nil {
		var cached dto.DashboardResponse
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			return &DashboardResult{Data: cached, CacheHit: true}, nil
		}
	}

	forms, err := s.forms.ListByCompany(ctx, query.CompanyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load forms")
	}
	forms = filterForms(forms, query)

	formIDs := make([]string, 0, len(forms))
	for i := range forms {
		formIDs = append(formIDs, forms[i].ID)
	}
	responses, err := s.responses.ListByForms(ctx, formIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load responses")
	}

	window := TimeWindow{From: query.From, To: query.To}
	data := dto.DashboardResponse{
		CompanyID:    query.CompanyID,
		DepartmentID: query.DepartmentID,
		Overview:     ComputeOverview(forms, responses, window),
		ByDay:        GroupByDay(responses, window, s.location),
		ByForm:       GroupByForm(forms, responses, window),
		ByUser:       GroupByCollaborator(responses, window),
		ByHour:       GroupByHour(responses, window, s.location),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard", zap.String("key", key), zap.Error(err))
		}
	}
	return &DashboardResult{Data: data}, nil
}

func filterForms(forms []models.Form, query DashboardQuery) []models.Form {
	if query.DepartmentID == "" && query.FormID == "" {
		return forms
	}
	filtered := forms[:0]
	for i := range forms {
		if query.DepartmentID != "" && forms[i].DepartmentID != query.DepartmentID {
			continue
		}
		if query.FormID != "" && forms[i].ID != query.FormID {
			continue
		}
		filtered = append(filtered, forms[i])
	}
	return filtered
}

func (s *DashboardService) cacheKey(query DashboardQuery) string {
	from, to := "", ""
	if !query.From.IsZero() {
		from = query.From.UTC().Format(time.RFC3339)
	}
	if !query.To.IsZero() {
		to = query.To.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("dashboard:%s:%s:%s:%s:%s", query.CompanyID, query.DepartmentID, query.FormID, from, to)
}
