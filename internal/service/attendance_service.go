package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/kita-admin-api/internal/models"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
)

type attendanceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error)
	Create(ctx context.Context, record *models.Attendance) error
	Update(ctx context.Context, record *models.Attendance) error
	Delete(ctx context.Context, id string) error
}

// AttendanceService handles daily attendance records.
type AttendanceService struct {
	repo      attendanceRepository
	access    scopeEvaluator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceRepository, access scopeEvaluator, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, access: access, validator: validate, logger: logger}
}

// CreateAttendanceRequest describes create payload.
type CreateAttendanceRequest struct {
	ChildID  string                  `json:"child_id" validate:"required"`
	Date     time.Time               `json:"date" validate:"required"`
	Status   models.AttendanceStatus `json:"status" validate:"required"`
	CheckIn  *time.Time              `json:"check_in"`
	CheckOut *time.Time              `json:"check_out"`
	Notes    *string                 `json:"notes"`
}

// UpdateAttendanceRequest describes update payload.
type UpdateAttendanceRequest struct {
	Date     time.Time               `json:"date" validate:"required"`
	Status   models.AttendanceStatus `json:"status" validate:"required"`
	CheckIn  *time.Time              `json:"check_in"`
	CheckOut *time.Time              `json:"check_out"`
	Notes    *string                 `json:"notes"`
}

// List returns attendance rows inside the caller's scope.
func (s *AttendanceService) List(ctx context.Context, claims *models.JWTClaims, filter models.AttendanceFilter) ([]models.Attendance, *models.Pagination, error) {
	if filter.ChildID != "" {
		if err := s.access.Authorize(ctx, claims, filter.ChildID); err != nil {
			return nil, nil, err
		}
	} else {
		scope, err := s.access.Scope(ctx, claims)
		if err != nil {
			return nil, nil, err
		}
		if !scope.All {
			ids := scope.ChildIDs
			if ids == nil {
				ids = []string{}
			}
			filter.ChildIDs = ids
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return records, pagination, nil
}

// Get returns a single attendance row.
func (s *AttendanceService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Attendance, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	if err := s.access.Authorize(ctx, claims, record.ChildID); err != nil {
		return nil, err
	}
	return record, nil
}

// Create records attendance for a child.
func (s *AttendanceService) Create(ctx context.Context, claims *models.JWTClaims, req CreateAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}
	if err := s.access.AuthorizeAction(ctx, claims, req.ChildID, ActionWriteAttendance); err != nil {
		return nil, err
	}
	record := &models.Attendance{
		ChildID:  req.ChildID,
		Date:     req.Date,
		Status:   req.Status,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Notes:    req.Notes,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance record")
	}
	return record, nil
}

// Update modifies an attendance row.
func (s *AttendanceService) Update(ctx context.Context, claims *models.JWTClaims, id string, req UpdateAttendanceRequest) (*models.Attendance, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	if err := s.access.AuthorizeAction(ctx, claims, record.ChildID, ActionWriteAttendance); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}
	record.Date = req.Date
	record.Status = req.Status
	record.CheckIn = req.CheckIn
	record.CheckOut = req.CheckOut
	record.Notes = req.Notes
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance record")
	}
	return record, nil
}

// Delete removes an attendance row.
func (s *AttendanceService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	if err := s.access.AuthorizeAction(ctx, claims, record.ChildID, ActionWriteAttendance); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance record")
	}
	return nil
}
