package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/kita-admin-api/internal/models"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
)

const (
	pickupCodeMin  = 10000
	pickupCodeMax  = 99999
	pickupCodeSpan = pickupCodeMax - pickupCodeMin + 1
)

type pickupCodeRepository interface {
	FindByChildAndDate(ctx context.Context, childID string, date time.Time) (*models.DailyPickupCode, error)
	Insert(ctx context.Context, code *models.DailyPickupCode) (bool, error)
	Consume(ctx context.Context, childID, code string, date, usedAt time.Time) (bool, error)
}

type pickupSweepRepository interface {
	ActiveIDsWithoutPickupCode(ctx context.Context, date time.Time) ([]string, error)
}

type accessEvaluator interface {
	AuthorizeAction(ctx context.Context, claims *models.JWTClaims, childID string, action Action) error
}

type verifyAttemptLimiter interface {
	Increment(ctx context.Context, childID string, window time.Duration) (int64, error)
}

type pickupAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// PickupCodeConfig tunes the pickup-code subsystem.
type PickupCodeConfig struct {
	RateLimitEnabled bool
	RateLimitPerHour int
}

// VerifyPickupCodeRequest is the payload presented by staff at the door.
type VerifyPickupCodeRequest struct {
	ChildID string `json:"child_id" validate:"required"`
	Code    string `json:"code" validate:"required,len=5,numeric"`
}

// PickupCodeService issues and consumes daily single-use pickup codes. Per
// (child, day) a code moves absent -> issued-unused -> issued-used and never
// back; the date is part of the row identity so codes cannot cross days.
type PickupCodeService struct {
	repo      pickupCodeRepository
	sweep     pickupSweepRepository
	access    accessEvaluator
	limiter   verifyAttemptLimiter
	auditor   pickupAuditor
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    PickupCodeConfig

	// now is swappable so day-boundary behaviour is testable.
	now func() time.Time
	// intn returns a uniform value in [0, n); swappable for deterministic tests.
	intn func(n int) int
}

// NewPickupCodeService constructs the service.
func NewPickupCodeService(repo pickupCodeRepository, sweep pickupSweepRepository, access accessEvaluator, limiter verifyAttemptLimiter, auditor pickupAuditor, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config PickupCodeConfig) *PickupCodeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RateLimitPerHour <= 0 {
		config.RateLimitPerHour = 20
	}
	return &PickupCodeService{
		repo:      repo,
		sweep:     sweep,
		access:    access,
		limiter:   limiter,
		auditor:   auditor,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       time.Now,
		intn:      rand.Intn,
	}
}

// GetOrCreate returns today's code for the child, creating it lazily on
// first request. Creation races resolve through the (child_id, code_date)
// uniqueness constraint: when the insert loses, the winner's row is re-read.
func (s *PickupCodeService) GetOrCreate(ctx context.Context, claims *models.JWTClaims, childID string) (*models.DailyPickupCode, error) {
	if err := s.access.AuthorizeAction(ctx, claims, childID, ActionReadPickupCode); err != nil {
		return nil, err
	}

	today := s.today()
	code, err := s.repo.FindByChildAndDate(ctx, childID, today)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pickup code")
	}

	fresh := &models.DailyPickupCode{
		ChildID:  childID,
		Code:     s.generateCode(),
		CodeDate: today,
		IsUsed:   false,
	}
	inserted, err := s.repo.Insert(ctx, fresh)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue pickup code")
	}
	if inserted {
		s.metrics.AddPickupCodesIssued(1)
		return fresh, nil
	}

	// Lost the race; someone else created the row first.
	code, err = s.repo.FindByChildAndDate(ctx, childID, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pickup code")
	}
	return code, nil
}

// Verify consumes today's code for the child. Any mismatch — wrong digits,
// wrong day, already used — produces the same false result with no further
// detail, so candidates cannot be enumerated.
func (s *PickupCodeService) Verify(ctx context.Context, claims *models.JWTClaims, req VerifyPickupCodeRequest) (bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}
	if err := s.access.AuthorizeAction(ctx, claims, req.ChildID, ActionVerifyPickupCode); err != nil {
		return false, err
	}

	if s.config.RateLimitEnabled && s.limiter != nil {
		count, err := s.limiter.Increment(ctx, req.ChildID, time.Hour)
		if err != nil {
			s.logger.Warn("verify attempt limiter unavailable", zap.Error(err))
		} else if count > int64(s.config.RateLimitPerHour) {
			s.metrics.RecordPickupVerification(false)
			return false, nil
		}
	}

	success, err := s.repo.Consume(ctx, req.ChildID, req.Code, s.today(), s.now().UTC())
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify pickup code")
	}
	s.metrics.RecordPickupVerification(success)

	if s.auditor != nil {
		outcome := `{"result":"failure"}`
		if success {
			outcome = `{"result":"success"}`
		}
		if err := s.auditor.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &claims.UserID,
			Action:     models.AuditActionPickupVerify,
			Resource:   "pickup_code",
			ResourceID: &req.ChildID,
			NewValues:  []byte(outcome),
		}); err != nil {
			s.logger.Warn("failed to record pickup verification audit log", zap.Error(err))
		}
	}

	return success, nil
}

// Sweep issues today's codes for every active child still lacking one.
// Re-running it is a no-op for children that already have a row; a raced
// insert counts as "already exists, skip" rather than an error.
func (s *PickupCodeService) Sweep(ctx context.Context) (int, error) {
	today := s.today()
	childIDs, err := s.sweep.ActiveIDsWithoutPickupCode(ctx, today)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list children for sweep")
	}

	created := 0
	for _, childID := range childIDs {
		fresh := &models.DailyPickupCode{
			ChildID:  childID,
			Code:     s.generateCode(),
			CodeDate: today,
			IsUsed:   false,
		}
		inserted, err := s.repo.Insert(ctx, fresh)
		if err != nil {
			return created, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue pickup code during sweep")
		}
		if inserted {
			created++
		}
	}

	s.metrics.AddPickupCodesIssued(created)
	s.logger.Info("pickup code sweep finished", zap.Int("created", created), zap.Int("candidates", len(childIDs)))
	return created, nil
}

// generateCode draws uniformly from the 90000 possible 5-digit values.
// Intn over the exact span avoids the modulo bias a narrower source would
// introduce.
func (s *PickupCodeService) generateCode() string {
	return fmt.Sprintf("%05d", pickupCodeMin+s.intn(pickupCodeSpan))
}

// today truncates the clock to a calendar date in UTC; the date is the key
// half that isolates codes between days.
func (s *PickupCodeService) today() time.Time {
	t := s.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
