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

type paymentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) error
}

// PaymentService handles monthly fee records. Parents see their own
// children's fees read-only; writes stay with management roles.
type PaymentService struct {
	repo      paymentRepository
	access    scopeEvaluator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs the service.
func NewPaymentService(repo paymentRepository, access scopeEvaluator, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, access: access, validator: validate, logger: logger}
}

// CreatePaymentRequest describes create payload.
type CreatePaymentRequest struct {
	ChildID     string    `json:"child_id" validate:"required"`
	AmountCents int64     `json:"amount_cents" validate:"required,gt=0"`
	Period      string    `json:"period" validate:"required,len=7"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	Notes       *string   `json:"notes"`
}

// UpdatePaymentRequest describes update payload.
type UpdatePaymentRequest struct {
	AmountCents int64                `json:"amount_cents" validate:"required,gt=0"`
	Period      string               `json:"period" validate:"required,len=7"`
	Status      models.PaymentStatus `json:"status" validate:"required"`
	DueDate     time.Time            `json:"due_date" validate:"required"`
	PaidAt      *time.Time           `json:"paid_at"`
	Notes       *string              `json:"notes"`
}

// List returns payments inside the caller's scope.
func (s *PaymentService) List(ctx context.Context, claims *models.JWTClaims, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
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
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return payments, pagination, nil
}

// Get returns a single payment.
func (s *PaymentService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if err := s.access.Authorize(ctx, claims, payment.ChildID); err != nil {
		return nil, err
	}
	return payment, nil
}

// Create opens a new monthly fee.
func (s *PaymentService) Create(ctx context.Context, claims *models.JWTClaims, req CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.access.AuthorizeAction(ctx, claims, req.ChildID, ActionWritePayment); err != nil {
		return nil, err
	}
	payment := &models.Payment{
		ChildID:     req.ChildID,
		AmountCents: req.AmountCents,
		Period:      req.Period,
		Status:      models.PaymentStatusPending,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}
	return payment, nil
}

// Update modifies an existing payment.
func (s *PaymentService) Update(ctx context.Context, claims *models.JWTClaims, id string, req UpdatePaymentRequest) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if err := s.access.AuthorizeAction(ctx, claims, payment.ChildID, ActionWritePayment); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown payment status")
	}
	payment.AmountCents = req.AmountCents
	payment.Period = req.Period
	payment.Status = req.Status
	payment.DueDate = req.DueDate
	payment.PaidAt = req.PaidAt
	payment.Notes = req.Notes
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment")
	}
	return payment, nil
}

// Delete removes a payment. Restricted to management roles.
func (s *PaymentService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if err := s.access.AuthorizeAction(ctx, claims, payment.ChildID, ActionDeletePayment); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete payment")
	}
	return nil
}
