package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bravoform/bravoform-api/internal/dto"
	"github.com/bravoform/bravoform-api/internal/models"
	"github.com/bravoform/bravoform-api/internal/service"
	appErrors "github.com/bravoform/bravoform-api/pkg/errors"
	"github.com/bravoform/bravoform-api/pkg/response"
)

// ResponseHandler wires the response submission, history and export endpoints.
type ResponseHandler struct {
	service *service.ResponseService
	exports *service.ExportService
}

// NewResponseHandler creates a new handler.
func NewResponseHandler(svc *service.ResponseService, exports *service.ExportService) *ResponseHandler {
	return &ResponseHandler{service: svc, exports: exports}
}

// Submit godoc
// @Summary Submit a filled form
// @Tags Responses
// @Accept json
// @Produce json
// @Param payload body dto.SubmitResponseRequest true "Response payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /responses [post]
func (h *ResponseHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.CollaboratorID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "collaborator account required"))
		return
	}

	var req dto.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid response payload"))
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), claims.CollaboratorID, req, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// List godoc
// @Summary List responses
// @Tags Responses
// @Produce json
// @Param formId query string false "Form ID"
// @Param collaboratorId query string false "Collaborator ID"
// @Param from query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /responses [get]
func (h *ResponseHandler) List(c *gin.Context) {
	filter := models.ResponseFilter{
		FormID:         c.Query("formId"),
		CollaboratorID: c.Query("collaboratorId"),
		Page:           queryInt(c, "page", 1),
		PageSize:       queryInt(c, "pageSize", 50),
	}

	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleCollaborator {
		// collaborators only see their own history
		filter.CollaboratorID = claims.CollaboratorID
	}
	if claims != nil && claims.Role == models.RoleLeader {
		// leaders list per form, scoped to their own company
		if filter.FormID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "formId is required"))
			return
		}
		if !h.formInCompany(c, filter.FormID, claims.CompanyID) {
			return
		}
	}

	from, err := queryTime(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryTime(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.From = from
	filter.To = to

	responses, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, responses, pagination)
}

// Detail godoc
// @Summary Fetch one response with rendered answers
// @Tags Responses
// @Produce json
// @Param id path string true "Response ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /responses/{id} [get]
func (h *ResponseHandler) Detail(c *gin.Context) {
	detail, err := h.service.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleCollaborator && detail.Response.CollaboratorID != claims.CollaboratorID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	if claims != nil && claims.Role == models.RoleLeader {
		if !h.formInCompany(c, detail.Response.FormID, claims.CompanyID) {
			return
		}
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Edit godoc
// @Summary Replace the answers of a response
// @Tags Responses
// @Accept json
// @Produce json
// @Param id path string true "Response ID"
// @Param payload body dto.EditResponseRequest true "Answers payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /responses/{id} [put]
func (h *ResponseHandler) Edit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.EditResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid response payload"))
		return
	}

	resp, err := h.service.EditAnswers(c.Request.Context(), c.Param("id"), *claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Export godoc
// @Summary Download a form's responses
// @Tags Responses
// @Produce octet-stream
// @Param id path string true "Form ID"
// @Param format query string false "csv or pdf (default csv)"
// @Param from query string false "Window start"
// @Param to query string false "Window end"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /forms/{id}/export [get]
func (h *ResponseHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleLeader {
		if !h.formInCompany(c, c.Param("id"), claims.CompanyID) {
			return
		}
	}
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))

	from, err := queryTime(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryTime(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.exports.Export(c.Request.Context(), c.Param("id"), format, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// formInCompany verifies the form belongs to the caller's company and writes
// a not-found response otherwise, hiding foreign tenants' forms.
func (h *ResponseHandler) formInCompany(c *gin.Context, formID, companyID string) bool {
	owner, err := h.service.FormScope(c.Request.Context(), formID)
	if err != nil {
		response.Error(c, err)
		return false
	}
	if owner != companyID {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "form not found"))
		return false
	}
	return true
}

// queryTime parses an optional time query param, accepting RFC3339 and bare
// dates.
func queryTime(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, nil
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return &ts, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+key+" timestamp, expected RFC3339 or YYYY-MM-DD")
}
