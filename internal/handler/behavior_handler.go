package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kita-admin-api/internal/service"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
	"github.com/noah-isme/kita-admin-api/pkg/response"
)

// BehaviorHandler exposes behavioural observation endpoints.
type BehaviorHandler struct {
	behavior *service.BehaviorService
}

// NewBehaviorHandler constructs BehaviorHandler.
func NewBehaviorHandler(behavior *service.BehaviorService) *BehaviorHandler {
	return &BehaviorHandler{behavior: behavior}
}

// ListByChild godoc
// @Summary List behavioural observations for a child
// @Tags Behavior
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Router /children/{id}/behavioral-info [get]
func (h *BehaviorHandler) ListByChild(c *gin.Context) {
	notes, err := h.behavior.ListByChild(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes, nil)
}

// Create godoc
// @Summary Record an observation
// @Tags Behavior
// @Accept json
// @Produce json
// @Param id path string true "Child ID"
// @Param payload body service.CreateBehaviorNoteRequest true "Observation payload"
// @Success 201 {object} response.Envelope
// @Router /children/{id}/behavioral-info [post]
func (h *BehaviorHandler) Create(c *gin.Context) {
	var req service.CreateBehaviorNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	note, err := h.behavior.Create(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// Update godoc
// @Summary Update an observation
// @Tags Behavior
// @Accept json
// @Produce json
// @Param id path string true "Observation ID"
// @Param payload body service.CreateBehaviorNoteRequest true "Observation payload"
// @Success 200 {object} response.Envelope
// @Router /behavioral-info/{id} [put]
func (h *BehaviorHandler) Update(c *gin.Context) {
	var req service.CreateBehaviorNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	note, err := h.behavior.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, note, nil)
}

// Delete godoc
// @Summary Delete an observation
// @Tags Behavior
// @Produce json
// @Param id path string true "Observation ID"
// @Success 204 {object} response.Envelope
// @Router /behavioral-info/{id} [delete]
func (h *BehaviorHandler) Delete(c *gin.Context) {
	if err := h.behavior.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
