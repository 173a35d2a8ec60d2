package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/kita-admin-api/internal/models"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
)

type healthRepository interface {
	FindMedicationByID(ctx context.Context, id string) (*models.Medication, error)
	ListMedicationsByChild(ctx context.Context, childID string) ([]models.Medication, error)
	CreateMedication(ctx context.Context, med *models.Medication) error
	UpdateMedication(ctx context.Context, med *models.Medication) error
	DeleteMedication(ctx context.Context, id string) error
	FindDiseaseByID(ctx context.Context, id string) (*models.ChronicDisease, error)
	ListDiseasesByChild(ctx context.Context, childID string) ([]models.ChronicDisease, error)
	CreateDisease(ctx context.Context, disease *models.ChronicDisease) error
	UpdateDisease(ctx context.Context, disease *models.ChronicDisease) error
	DeleteDisease(ctx context.Context, id string) error
}

// HealthService handles medications and chronic diseases. Parents maintain
// their own children's records; teachers read them to act on them.
type HealthService struct {
	repo      healthRepository
	access    scopeEvaluator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHealthService constructs the service.
func NewHealthService(repo healthRepository, access scopeEvaluator, validate *validator.Validate, logger *zap.Logger) *HealthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{repo: repo, access: access, validator: validate, logger: logger}
}

// UpsertMedicationRequest describes create/update payload for a medication.
type UpsertMedicationRequest struct {
	Name     string  `json:"name" validate:"required"`
	Dosage   string  `json:"dosage" validate:"required"`
	Schedule *string `json:"schedule"`
	Notes    *string `json:"notes"`
}

// UpsertDiseaseRequest describes create/update payload for a chronic disease.
type UpsertDiseaseRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

// ListMedications returns all medications for a child.
func (s *HealthService) ListMedications(ctx context.Context, claims *models.JWTClaims, childID string) ([]models.Medication, error) {
	if err := s.access.Authorize(ctx, claims, childID); err != nil {
		return nil, err
	}
	meds, err := s.repo.ListMedicationsByChild(ctx, childID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list medications")
	}
	if meds == nil {
		meds = []models.Medication{}
	}
	return meds, nil
}

// CreateMedication adds a medication for a child.
func (s *HealthService) CreateMedication(ctx context.Context, claims *models.JWTClaims, childID string, req UpsertMedicationRequest) (*models.Medication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.access.AuthorizeAction(ctx, claims, childID, ActionWriteHealthRecord); err != nil {
		return nil, err
	}
	med := &models.Medication{
		ChildID:  childID,
		Name:     req.Name,
		Dosage:   req.Dosage,
		Schedule: req.Schedule,
		Notes:    req.Notes,
	}
	if err := s.repo.CreateMedication(ctx, med); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create medication")
	}
	return med, nil
}

// UpdateMedication modifies a medication.
func (s *HealthService) UpdateMedication(ctx context.Context, claims *models.JWTClaims, id string, req UpsertMedicationRequest) (*models.Medication, error) {
	med, err := s.repo.FindMedicationByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "medication not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load medication")
	}
	if err := s.access.AuthorizeAction(ctx, claims, med.ChildID, ActionWriteHealthRecord); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	med.Name = req.Name
	med.Dosage = req.Dosage
	med.Schedule = req.Schedule
	med.Notes = req.Notes
	if err := s.repo.UpdateMedication(ctx, med); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update medication")
	}
	return med, nil
}

// DeleteMedication removes a medication.
func (s *HealthService) DeleteMedication(ctx context.Context, claims *models.JWTClaims, id string) error {
	med, err := s.repo.FindMedicationByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "medication not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load medication")
	}
	if err := s.access.AuthorizeAction(ctx, claims, med.ChildID, ActionWriteHealthRecord); err != nil {
		return err
	}
	if err := s.repo.DeleteMedication(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete medication")
	}
	return nil
}

// ListDiseases returns all chronic diseases for a child.
func (s *HealthService) ListDiseases(ctx context.Context, claims *models.JWTClaims, childID string) ([]models.ChronicDisease, error) {
	if err := s.access.Authorize(ctx, claims, childID); err != nil {
		return nil, err
	}
	diseases, err := s.repo.ListDiseasesByChild(ctx, childID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list chronic diseases")
	}
	if diseases == nil {
		diseases = []models.ChronicDisease{}
	}
	return diseases, nil
}

// CreateDisease adds a chronic disease record for a child.
func (s *HealthService) CreateDisease(ctx context.Context, claims *models.JWTClaims, childID string, req UpsertDiseaseRequest) (*models.ChronicDisease, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.access.AuthorizeAction(ctx, claims, childID, ActionWriteHealthRecord); err != nil {
		return nil, err
	}
	disease := &models.ChronicDisease{
		ChildID:     childID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.CreateDisease(ctx, disease); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create chronic disease")
	}
	return disease, nil
}

// UpdateDisease modifies a chronic disease record.
func (s *HealthService) UpdateDisease(ctx context.Context, claims *models.JWTClaims, id string, req UpsertDiseaseRequest) (*models.ChronicDisease, error) {
	disease, err := s.repo.FindDiseaseByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "chronic disease not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load chronic disease")
	}
	if err := s.access.AuthorizeAction(ctx, claims, disease.ChildID, ActionWriteHealthRecord); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	disease.Name = req.Name
	disease.Description = req.Description
	if err := s.repo.UpdateDisease(ctx, disease); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update chronic disease")
	}
	return disease, nil
}

// DeleteDisease removes a chronic disease record.
func (s *HealthService) DeleteDisease(ctx context.Context, claims *models.JWTClaims, id string) error {
	disease, err := s.repo.FindDiseaseByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "chronic disease not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load chronic disease")
	}
	if err := s.access.AuthorizeAction(ctx, claims, disease.ChildID, ActionWriteHealthRecord); err != nil {
		return err
	}
	if err := s.repo.DeleteDisease(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete chronic disease")
	}
	return nil
}
