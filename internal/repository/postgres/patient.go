package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/triage-api/internal/model"
	"github.com/jwalitptl/triage-api/internal/repository"
)

const patientColumns = `id, patient_id, "timestamp", respiratory_rate, pulse, systolic_bp,
		consciousness, can_walk, injury_type, injury_severity, body_regions,
		estimated_age, gender, triage_category, triage_score, priority,
		treatment_started, treatment_notes, outcome, notes, location, medic`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			patient_id, "timestamp", respiratory_rate, pulse, systolic_bp,
			consciousness, can_walk, injury_type, injury_severity, body_regions,
			estimated_age, gender, triage_category, triage_score, priority,
			notes, location, medic
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)
		RETURNING id
	`

	err := r.db.QueryRowxContext(ctx, query,
		patient.PatientID,
		patient.Timestamp,
		patient.RespiratoryRate,
		patient.Pulse,
		patient.SystolicBP,
		patient.Consciousness,
		patient.CanWalk,
		patient.InjuryTypes,
		patient.InjurySeverity,
		patient.BodyRegions,
		patient.EstimatedAge,
		patient.Gender,
		patient.TriageCategory,
		patient.TriageScore,
		patient.Priority,
		patient.Notes,
		patient.Location,
		patient.Medic,
	).Scan(&patient.ID)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", translate(err))
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", translate(err))
	}
	return &patient, nil
}

func (r *patientRepository) GetByPatientID(ctx context.Context, patientID string) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE patient_id = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", translate(err))
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY id ASC`
	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// Update writes the treatment fields. Intake data and the triage result are never rewritten.
func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET treatment_started = $1, treatment_notes = $2, outcome = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query,
		patient.TreatmentStarted,
		patient.TreatmentNotes,
		patient.Outcome,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to update patient: %w", repository.ErrNotFound)
	}
	return nil
}
