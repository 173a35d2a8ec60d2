package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kita-admin-api/internal/models"
	"github.com/noah-isme/kita-admin-api/internal/service"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
	"github.com/noah-isme/kita-admin-api/pkg/response"
)

// ChildHandler exposes child roster endpoints.
type ChildHandler struct {
	children *service.ChildService
}

// NewChildHandler constructs ChildHandler.
func NewChildHandler(children *service.ChildService) *ChildHandler {
	return &ChildHandler{children: children}
}

// List godoc
// @Summary List children visible to the caller
// @Tags Children
// @Produce json
// @Param search query string false "Search by name"
// @Param groupId query string false "Filter by group"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /children [get]
func (h *ChildHandler) List(c *gin.Context) {
	var filter models.ChildFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.GroupID = c.Query("groupId")
	if active := c.Query("active"); active != "" {
		if active == "true" {
			v := true
			filter.Active = &v
		} else if active == "false" {
			v := false
			filter.Active = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	children, pagination, err := h.children.List(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, children, pagination)
}

// Get godoc
// @Summary Get child detail
// @Tags Children
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Router /children/{id} [get]
func (h *ChildHandler) Get(c *gin.Context) {
	child, err := h.children.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, child, nil)
}

// Create godoc
// @Summary Register a child
// @Tags Children
// @Accept json
// @Produce json
// @Param payload body service.CreateChildRequest true "Child payload"
// @Success 201 {object} response.Envelope
// @Router /children [post]
func (h *ChildHandler) Create(c *gin.Context) {
	var req service.CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	child, err := h.children.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, child)
}

// Update godoc
// @Summary Update a child
// @Tags Children
// @Accept json
// @Produce json
// @Param id path string true "Child ID"
// @Param payload body service.UpdateChildRequest true "Child payload"
// @Success 200 {object} response.Envelope
// @Router /children/{id} [put]
func (h *ChildHandler) Update(c *gin.Context) {
	var req service.UpdateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	child, err := h.children.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, child, nil)
}

// Deactivate godoc
// @Summary Deactivate a child
// @Tags Children
// @Produce json
// @Param id path string true "Child ID"
// @Success 204 {object} response.Envelope
// @Router /children/{id} [delete]
func (h *ChildHandler) Deactivate(c *gin.Context) {
	if err := h.children.Deactivate(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
