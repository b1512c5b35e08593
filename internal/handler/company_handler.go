package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bravoform/bravoform-api/internal/dto"
	"github.com/bravoform/bravoform-api/internal/service"
	appErrors "github.com/bravoform/bravoform-api/pkg/errors"
	"github.com/bravoform/bravoform-api/pkg/response"
)

// CompanyHandler wires tenant administration endpoints.
type CompanyHandler struct {
	service *service.CompanyService
}

// NewCompanyHandler creates a new handler.
func NewCompanyHandler(svc *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{service: svc}
}

// List godoc
// @Summary List companies
// @Tags Companies
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, companies, nil)
}

// Get godoc
// @Summary Fetch one company with its departments
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create company
// @Tags Companies
// @Accept json
// @Produce json
// @Param payload body dto.SaveCompanyRequest true "Company payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req dto.SaveCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid company payload"))
		return
	}
	company, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, company)
}

// Update godoc
// @Summary Update company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param payload body dto.SaveCompanyRequest true "Company payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/{id} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	var req dto.SaveCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid company payload"))
		return
	}
	company, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company, nil)
}

// Delete godoc
// @Summary Delete company
// @Tags Companies
// @Param id path string true "Company ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListDepartments godoc
// @Summary List a company's departments
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} response.Envelope
// @Router /companies/{id}/departments [get]
func (h *CompanyHandler) ListDepartments(c *gin.Context) {
	departments, err := h.service.ListDepartments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// CreateDepartment godoc
// @Summary Add a department to a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param payload body dto.SaveDepartmentRequest true "Department payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /companies/{id}/departments [post]
func (h *CompanyHandler) CreateDepartment(c *gin.Context) {
	var req dto.SaveDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid department payload"))
		return
	}
	department, err := h.service.CreateDepartment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, department)
}

// UpdateDepartment godoc
// @Summary Rename a department
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param departmentId path string true "Department ID"
// @Param payload body dto.SaveDepartmentRequest true "Department payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/{id}/departments/{departmentId} [put]
func (h *CompanyHandler) UpdateDepartment(c *gin.Context) {
	var req dto.SaveDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid department payload"))
		return
	}
	department, err := h.service.UpdateDepartment(c.Request.Context(), c.Param("id"), c.Param("departmentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department, nil)
}

// DeleteDepartment godoc
// @Summary Delete a department
// @Tags Companies
// @Param id path string true "Company ID"
// @Param departmentId path string true "Department ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/{id}/departments/{departmentId} [delete]
func (h *CompanyHandler) DeleteDepartment(c *gin.Context) {
	if err := h.service.DeleteDepartment(c.Request.Context(), c.Param("id"), c.Param("departmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
