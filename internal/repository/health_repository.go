package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kita-admin-api/internal/models"
)

// HealthRepository manages persistence for medications and chronic diseases.
type HealthRepository struct {
	db *sqlx.DB
}

// NewHealthRepository constructs a new repository.
func NewHealthRepository(db *sqlx.DB) *HealthRepository {
	return &HealthRepository{db: db}
}

// FindMedicationByID returns the medication with the given ID.
func (r *HealthRepository) FindMedicationByID(ctx context.Context, id string) (*models.Medication, error) {
	var med models.Medication
	query := `SELECT id, child_id, name, dosage, schedule, notes, created_at, updated_at
FROM medications WHERE id = $1`
	if err := r.db.GetContext(ctx, &med, query, id); err != nil {
		return nil, err
	}
	return &med, nil
}

// ListMedicationsByChild returns all medications for a child.
func (r *HealthRepository) ListMedicationsByChild(ctx context.Context, childID string) ([]models.Medication, error) {
	var meds []models.Medication
	query := `SELECT id, child_id, name, dosage, schedule, notes, created_at, updated_at
FROM medications WHERE child_id = $1 ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &meds, query, childID); err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	return meds, nil
}

// CreateMedication inserts a new medication.
func (r *HealthRepository) CreateMedication(ctx context.Context, med *models.Medication) error {
	if med.ID == "" {
		med.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if med.CreatedAt.IsZero() {
		med.CreatedAt = now
	}
	med.UpdatedAt = now
	query := `INSERT INTO medications (id, child_id, name, dosage, schedule, notes, created_at, updated_at)
VALUES (:id, :child_id, :name, :dosage, :schedule, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, med); err != nil {
		return fmt.Errorf("create medication: %w", err)
	}
	return nil
}

// UpdateMedication modifies an existing medication.
func (r *HealthRepository) UpdateMedication(ctx context.Context, med *models.Medication) error {
	med.UpdatedAt = time.Now().UTC()
	query := `UPDATE medications SET name = :name, dosage = :dosage, schedule = :schedule,
notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, med); err != nil {
		return fmt.Errorf("update medication: %w", err)
	}
	return nil
}

// DeleteMedication removes a medication.
func (r *HealthRepository) DeleteMedication(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM medications WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete medication: %w", err)
	}
	return nil
}

// FindDiseaseByID returns the chronic disease with the given ID.
func (r *HealthRepository) FindDiseaseByID(ctx context.Context, id string) (*models.ChronicDisease, error) {
	var disease models.ChronicDisease
	query := `SELECT id, child_id, name, description, created_at, updated_at
FROM chronic_diseases WHERE id = $1`
	if err := r.db.GetContext(ctx, &disease, query, id); err != nil {
		return nil, err
	}
	return &disease, nil
}

// ListDiseasesByChild returns all chronic diseases for a child.
func (r *HealthRepository) ListDiseasesByChild(ctx context.Context, childID string) ([]models.ChronicDisease, error) {
	var diseases []models.ChronicDisease
	query := `SELECT id, child_id, name, description, created_at, updated_at
FROM chronic_diseases WHERE child_id = $1 ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &diseases, query, childID); err != nil {
		return nil, fmt.Errorf("list chronic diseases: %w", err)
	}
	return diseases, nil
}

// CreateDisease inserts a new chronic disease record.
func (r *HealthRepository) CreateDisease(ctx context.Context, disease *models.ChronicDisease) error {
	if disease.ID == "" {
		disease.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if disease.CreatedAt.IsZero() {
		disease.CreatedAt = now
	}
	disease.UpdatedAt = now
	query := `INSERT INTO chronic_diseases (id, child_id, name, description, created_at, updated_at)
VALUES (:id, :child_id, :name, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, disease); err != nil {
		return fmt.Errorf("create chronic disease: %w", err)
	}
	return nil
}

// UpdateDisease modifies an existing chronic disease record.
func (r *HealthRepository) UpdateDisease(ctx context.Context, disease *models.ChronicDisease) error {
	disease.UpdatedAt = time.Now().UTC()
	query := `UPDATE chronic_diseases SET name = :name, description = :description, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, disease); err != nil {
		return fmt.Errorf("update chronic disease: %w", err)
	}
	return nil
}

// DeleteDisease removes a chronic disease record.
func (r *HealthRepository) DeleteDisease(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM chronic_diseases WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete chronic disease: %w", err)
	}
	return nil
}
