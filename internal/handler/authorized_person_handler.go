package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kita-admin-api/internal/service"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
	"github.com/noah-isme/kita-admin-api/pkg/response"
)

// AuthorizedPersonHandler exposes pickup authorization endpoints.
type AuthorizedPersonHandler struct {
	persons *service.AuthorizedPersonService
}

// NewAuthorizedPersonHandler constructs AuthorizedPersonHandler.
func NewAuthorizedPersonHandler(persons *service.AuthorizedPersonService) *AuthorizedPersonHandler {
	return &AuthorizedPersonHandler{persons: persons}
}

// ListByChild godoc
// @Summary List authorized persons for a child
// @Tags AuthorizedPersons
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Router /children/{id}/authorized-persons [get]
func (h *AuthorizedPersonHandler) ListByChild(c *gin.Context) {
	persons, err := h.persons.ListByChild(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, persons, nil)
}

// Create godoc
// @Summary Authorize a person for pickup
// @Tags AuthorizedPersons
// @Accept json
// @Produce json
// @Param id path string true "Child ID"
// @Param payload body service.UpsertAuthorizedPersonRequest true "Person payload"
// @Success 201 {object} response.Envelope
// @Router /children/{id}/authorized-persons [post]
func (h *AuthorizedPersonHandler) Create(c *gin.Context) {
	var req service.UpsertAuthorizedPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	person, err := h.persons.Create(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, person)
}

// Update godoc
// @Summary Update an authorized person
// @Tags AuthorizedPersons
// @Accept json
// @Produce json
// @Param id path string true "Authorized person ID"
// @Param payload body service.UpsertAuthorizedPersonRequest true "Person payload"
// @Success 200 {object} response.Envelope
// @Router /authorized-persons/{id} [put]
func (h *AuthorizedPersonHandler) Update(c *gin.Context) {
	var req service.UpsertAuthorizedPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	person, err := h.persons.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}

// Delete godoc
// @Summary Remove an authorized person
// @Tags AuthorizedPersons
// @Produce json
// @Param id path string true "Authorized person ID"
// @Success 204 {object} response.Envelope
// @Router /authorized-persons/{id} [delete]
func (h *AuthorizedPersonHandler) Delete(c *gin.Context) {
	if err := h.persons.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
