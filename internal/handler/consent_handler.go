package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kita-admin-api/internal/service"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
	"github.com/noah-isme/kita-admin-api/pkg/response"
)

// ConsentHandler exposes consent endpoints.
type ConsentHandler struct {
	consents *service.ConsentService
}

// NewConsentHandler constructs ConsentHandler.
func NewConsentHandler(consents *service.ConsentService) *ConsentHandler {
	return &ConsentHandler{consents: consents}
}

// ListByChild godoc
// @Summary List consents for a child
// @Tags Consents
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Router /children/{id}/consents [get]
func (h *ConsentHandler) ListByChild(c *gin.Context) {
	consents, err := h.consents.ListByChild(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, consents, nil)
}

// Create godoc
// @Summary Record a consent decision
// @Tags Consents
// @Accept json
// @Produce json
// @Param id path string true "Child ID"
// @Param payload body service.UpsertConsentRequest true "Consent payload"
// @Success 201 {object} response.Envelope
// @Router /children/{id}/consents [post]
func (h *ConsentHandler) Create(c *gin.Context) {
	var req service.UpsertConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	consent, err := h.consents.Create(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, consent)
}

// Update godoc
// @Summary Revise a consent decision
// @Tags Consents
// @Accept json
// @Produce json
// @Param id path string true "Consent ID"
// @Param payload body service.UpsertConsentRequest true "Consent payload"
// @Success 200 {object} response.Envelope
// @Router /consents/{id} [put]
func (h *ConsentHandler) Update(c *gin.Context) {
	var req service.UpsertConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	consent, err := h.consents.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, consent, nil)
}

// Delete godoc
// @Summary Delete a consent
// @Tags Consents
// @Produce json
// @Param id path string true "Consent ID"
// @Success 204 {object} response.Envelope
// @Router /consents/{id} [delete]
func (h *ConsentHandler) Delete(c *gin.Context) {
	if err := h.consents.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
