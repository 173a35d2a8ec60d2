package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kita-admin-api/internal/service"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
	"github.com/noah-isme/kita-admin-api/pkg/response"
)

// PickupHandler exposes daily pickup code and release record endpoints.
type PickupHandler struct {
	codes   *service.PickupCodeService
	records *service.PickupRecordService
}

// NewPickupHandler constructs PickupHandler.
func NewPickupHandler(codes *service.PickupCodeService, records *service.PickupRecordService) *PickupHandler {
	return &PickupHandler{codes: codes, records: records}
}

// GetOrCreateCode godoc
// @Summary Get today's pickup code for a child
// @Description Returns today's code, issuing one lazily on first request
// @Tags Pickup
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /children/{id}/pickup-code [get]
func (h *PickupHandler) GetOrCreateCode(c *gin.Context) {
	code, err := h.codes.GetOrCreate(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, code, nil)
}

// VerifyCode godoc
// @Summary Verify a pickup code
// @Description Consumes today's code when it matches; responds with a bare success flag
// @Tags Pickup
// @Accept json
// @Produce json
// @Param payload body service.VerifyPickupCodeRequest true "Verification payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /pickup-codes/verify [post]
func (h *PickupHandler) VerifyCode(c *gin.Context) {
	var req service.VerifyPickupCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	success, err := h.codes.Verify(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": success}, nil)
}

// Sweep godoc
// @Summary Issue today's codes for children still lacking one
// @Description Scheduler-only endpoint; safe to re-run
// @Tags Pickup
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /cron/pickup-codes/sweep [post]
func (h *PickupHandler) Sweep(c *gin.Context) {
	created, err := h.codes.Sweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"created": created}, nil)
}

// ListRecords godoc
// @Summary List release records for a child
// @Tags Pickup
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Router /children/{id}/pickup-records [get]
func (h *PickupHandler) ListRecords(c *gin.Context) {
	records, err := h.records.ListByChild(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// CreateRecord godoc
// @Summary Record a child release
// @Tags Pickup
// @Accept json
// @Produce json
// @Param id path string true "Child ID"
// @Param payload body service.CreatePickupRecordRequest true "Release payload"
// @Success 201 {object} response.Envelope
// @Router /children/{id}/pickup-records [post]
func (h *PickupHandler) CreateRecord(c *gin.Context) {
	var req service.CreatePickupRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.records.Create(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}
