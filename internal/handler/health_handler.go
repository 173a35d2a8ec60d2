package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kita-admin-api/internal/service"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
	"github.com/noah-isme/kita-admin-api/pkg/response"
)

// HealthRecordHandler exposes medication and chronic disease endpoints.
type HealthRecordHandler struct {
	health *service.HealthService
}

// NewHealthRecordHandler constructs HealthRecordHandler.
func NewHealthRecordHandler(health *service.HealthService) *HealthRecordHandler {
	return &HealthRecordHandler{health: health}
}

// ListMedications godoc
// @Summary List medications for a child
// @Tags Health
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Router /children/{id}/medications [get]
func (h *HealthRecordHandler) ListMedications(c *gin.Context) {
	meds, err := h.health.ListMedications(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meds, nil)
}

// CreateMedication godoc
// @Summary Add a medication for a child
// @Tags Health
// @Accept json
// @Produce json
// @Param id path string true "Child ID"
// @Param payload body service.UpsertMedicationRequest true "Medication payload"
// @Success 201 {object} response.Envelope
// @Router /children/{id}/medications [post]
func (h *HealthRecordHandler) CreateMedication(c *gin.Context) {
	var req service.UpsertMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	med, err := h.health.CreateMedication(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, med)
}

// UpdateMedication godoc
// @Summary Update a medication
// @Tags Health
// @Accept json
// @Produce json
// @Param id path string true "Medication ID"
// @Param payload body service.UpsertMedicationRequest true "Medication payload"
// @Success 200 {object} response.Envelope
// @Router /medications/{id} [put]
func (h *HealthRecordHandler) UpdateMedication(c *gin.Context) {
	var req service.UpsertMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	med, err := h.health.UpdateMedication(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, med, nil)
}

// DeleteMedication godoc
// @Summary Delete a medication
// @Tags Health
// @Produce json
// @Param id path string true "Medication ID"
// @Success 204 {object} response.Envelope
// @Router /medications/{id} [delete]
func (h *HealthRecordHandler) DeleteMedication(c *gin.Context) {
	if err := h.health.DeleteMedication(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListDiseases godoc
// @Summary List chronic diseases for a child
// @Tags Health
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Router /children/{id}/chronic-diseases [get]
func (h *HealthRecordHandler) ListDiseases(c *gin.Context) {
	diseases, err := h.health.ListDiseases(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, diseases, nil)
}

// CreateDisease godoc
// @Summary Add a chronic disease record for a child
// @Tags Health
// @Accept json
// @Produce json
// @Param id path string true "Child ID"
// @Param payload body service.UpsertDiseaseRequest true "Chronic disease payload"
// @Success 201 {object} response.Envelope
// @Router /children/{id}/chronic-diseases [post]
func (h *HealthRecordHandler) CreateDisease(c *gin.Context) {
	var req service.UpsertDiseaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	disease, err := h.health.CreateDisease(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, disease)
}

// UpdateDisease godoc
// @Summary Update a chronic disease record
// @Tags Health
// @Accept json
// @Produce json
// @Param id path string true "Chronic disease ID"
// @Param payload body service.UpsertDiseaseRequest true "Chronic disease payload"
// @Success 200 {object} response.Envelope
// @Router /chronic-diseases/{id} [put]
func (h *HealthRecordHandler) UpdateDisease(c *gin.Context) {
	var req service.UpsertDiseaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	disease, err := h.health.UpdateDisease(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, disease, nil)
}

// DeleteDisease godoc
// @Summary Delete a chronic disease record
// @Tags Health
// @Produce json
// @Param id path string true "Chronic disease ID"
// @Success 204 {object} response.Envelope
// @Router /chronic-diseases/{id} [delete]
func (h *HealthRecordHandler) DeleteDisease(c *gin.Context) {
	if err := h.health.DeleteDisease(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
