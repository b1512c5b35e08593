package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bravoform/bravoform-api/internal/dto"
	"github.com/bravoform/bravoform-api/internal/models"
	"github.com/bravoform/bravoform-api/internal/service"
	appErrors "github.com/bravoform/bravoform-api/pkg/errors"
	"github.com/bravoform/bravoform-api/pkg/response"
)

// CollaboratorHandler wires collaborator management endpoints.
type CollaboratorHandler struct {
	service *service.CollaboratorService
}

// NewCollaboratorHandler creates a new handler.
func NewCollaboratorHandler(svc *service.CollaboratorService) *CollaboratorHandler {
	return &CollaboratorHandler{service: svc}
}

// List godoc
// @Summary List collaborators
// @Tags Collaborators
// @Produce json
// @Param departmentId query string false "Department ID"
// @Param search query string false "Name or username search"
// @Param active query bool false "Active filter"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /collaborators [get]
func (h *CollaboratorHandler) List(c *gin.Context) {
	filter := models.CollaboratorFilter{
		DepartmentID: c.Query("departmentId"),
		Search:       strings.TrimSpace(c.Query("search")),
		SortBy:       c.Query("sortBy"),
		SortOrder:    c.Query("sortOrder"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "pageSize", 20),
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}

	collaborators, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collaborators, pagination)
}

// Get godoc
// @Summary Fetch one collaborator
// @Tags Collaborators
// @Produce json
// @Param id path string true "Collaborator ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /collaborators/{id} [get]
func (h *CollaboratorHandler) Get(c *gin.Context) {
	collaborator, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collaborator, nil)
}

// Create godoc
// @Summary Create collaborator
// @Tags Collaborators
// @Accept json
// @Produce json
// @Param payload body dto.SaveCollaboratorRequest true "Collaborator payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /collaborators [post]
func (h *CollaboratorHandler) Create(c *gin.Context) {
	var req dto.SaveCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid collaborator payload"))
		return
	}
	collaborator, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, collaborator)
}

// Update godoc
// @Summary Update collaborator
// @Tags Collaborators
// @Accept json
// @Produce json
// @Param id path string true "Collaborator ID"
// @Param payload body dto.SaveCollaboratorRequest true "Collaborator payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /collaborators/{id} [put]
func (h *CollaboratorHandler) Update(c *gin.Context) {
	var req dto.SaveCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid collaborator payload"))
		return
	}
	collaborator, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collaborator, nil)
}

// Delete godoc
// @Summary Delete collaborator
// @Tags Collaborators
// @Param id path string true "Collaborator ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /collaborators/{id} [delete]
func (h *CollaboratorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
