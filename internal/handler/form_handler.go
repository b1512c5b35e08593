package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bravoform/bravoform-api/internal/dto"
	"github.com/bravoform/bravoform-api/internal/models"
	"github.com/bravoform/bravoform-api/internal/service"
	appErrors "github.com/bravoform/bravoform-api/pkg/errors"
	"github.com/bravoform/bravoform-api/pkg/response"
)

// FormHandler wires the form builder endpoints.
type FormHandler struct {
	service *service.FormService
}

// NewFormHandler creates a new handler.
func NewFormHandler(svc *service.FormService) *FormHandler {
	return &FormHandler{service: svc}
}

// List godoc
// @Summary List forms
// @Tags Forms
// @Produce json
// @Param companyId query string false "Company ID"
// @Param departmentId query string false "Department ID"
// @Param search query string false "Title search"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /forms [get]
func (h *FormHandler) List(c *gin.Context) {
	filter := models.FormFilter{
		CompanyID:    c.Query("companyId"),
		DepartmentID: c.Query("departmentId"),
		Search:       strings.TrimSpace(c.Query("search")),
		SortBy:       c.Query("sortBy"),
		SortOrder:    c.Query("sortOrder"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "pageSize", 20),
	}

	claims := claimsFromContext(c)
	if claims != nil && claims.Role != models.RoleAdmin {
		// non-admins only see their own company
		filter.CompanyID = claims.CompanyID
	}

	forms, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, forms, pagination)
}

// Get godoc
// @Summary Fetch one form
// @Tags Forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /forms/{id} [get]
func (h *FormHandler) Get(c *gin.Context) {
	form, ok := h.authorizedForm(c, c.Param("id"))
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, form, nil)
}

// authorizedForm fetches a form and hides it from callers outside its
// company. Admins see every tenant.
func (h *FormHandler) authorizedForm(c *gin.Context, id string) (*models.Form, bool) {
	form, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	claims := claimsFromContext(c)
	if claims != nil && claims.Role != models.RoleAdmin && form.CompanyID != claims.CompanyID {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "form not found"))
		return nil, false
	}
	return form, true
}

// Create godoc
// @Summary Create form
// @Tags Forms
// @Accept json
// @Produce json
// @Param payload body dto.SaveFormRequest true "Form payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /forms [post]
func (h *FormHandler) Create(c *gin.Context) {
	var req dto.SaveFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form payload"))
		return
	}
	form, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, form)
}

// Update godoc
// @Summary Update form
// @Tags Forms
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param payload body dto.SaveFormRequest true "Form payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /forms/{id} [put]
func (h *FormHandler) Update(c *gin.Context) {
	var req dto.SaveFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form payload"))
		return
	}
	if _, ok := h.authorizedForm(c, c.Param("id")); !ok {
		return
	}
	form, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form, nil)
}

// Delete godoc
// @Summary Delete form
// @Tags Forms
// @Param id path string true "Form ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /forms/{id} [delete]
func (h *FormHandler) Delete(c *gin.Context) {
	if _, ok := h.authorizedForm(c, c.Param("id")); !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// FieldTypes godoc
// @Summary List supported field types
// @Tags Forms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /forms/field-types [get]
func (h *FormHandler) FieldTypes(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.FieldTypeRegistry(), nil)
}

// Assigned godoc
// @Summary List the caller's assigned forms with today's limit state
// @Tags Forms
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /forms/assigned [get]
func (h *FormHandler) Assigned(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.CollaboratorID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "collaborator account required"))
		return
	}
	assigned, err := h.service.ListAssigned(c.Request.Context(), claims.CollaboratorID, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assigned, nil)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
