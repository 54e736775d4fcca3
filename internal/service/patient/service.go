package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/triage-api/internal/model"
	"github.com/jwalitptl/triage-api/internal/repository"
	"github.com/jwalitptl/triage-api/internal/service/event"
	"github.com/jwalitptl/triage-api/internal/triage"
	apperrors "github.com/jwalitptl/triage-api/pkg/errors"
	"github.com/jwalitptl/triage-api/pkg/logger"
	"github.com/jwalitptl/triage-api/pkg/metrics"
)

type PatientService interface {
	Intake(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	Worklist(ctx context.Context, category string) ([]*model.Patient, error)
	Get(ctx context.Context, id int64) (*model.Patient, error)
	GetByPatientID(ctx context.Context, patientID string) (*model.Patient, error)
	Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error)
	Stats(ctx context.Context) (model.Stats, error)
}

// Snapshotter provides a consistent view of the resource registry.
type Snapshotter interface {
	Snapshot(ctx context.Context) (triage.Snapshot, error)
}

type Service struct {
	repo      repository.PatientRepository
	resources Snapshotter
	events    event.Emitter
	adjuster  *triage.Adjuster
	logger    *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(
	repo repository.PatientRepository,
	resources Snapshotter,
	events event.Emitter,
	adjuster *triage.Adjuster,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	if adjuster == nil {
		adjuster = triage.NewAdjuster(triage.DefaultScarcityPolicy)
	}
	return &Service{
		repo:      repo,
		resources: resources,
		events:    events,
		adjuster:  adjuster,
		logger:    log,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Intake scores a new casualty against the current resource snapshot and stores the
// record. The triage result and priority are fixed from here on.
func (s *Service) Intake(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	now := s.now()

	patientID, generated, err := s.identity(req.PatientID, now)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.resources.Snapshot(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	assessment := req.Assessment()
	result := triage.Score(assessment)
	priority := s.adjuster.Adjust(result, snapshot)

	p := newPatient(req, assessment, result, priority)
	p.PatientID = patientID
	p.Timestamp = now

	err = s.repo.Create(ctx, p)
	if generated && errors.Is(err, repository.ErrDuplicate) {
		// two intakes within the same second
		p.PatientID = fmt.Sprintf("%s-%s", patientID, uuid.NewString()[:8])
		err = s.repo.Create(ctx, p)
	}
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperrors.Conflict(fmt.Sprintf("patient %s already exists", p.PatientID), err)
	case err != nil:
		s.metrics.DatabaseOperations.WithLabelValues("create_patient", "error").Inc()
		return nil, apperrors.Internal(fmt.Errorf("failed to create patient: %w", err))
	}
	s.metrics.DatabaseOperations.WithLabelValues("create_patient", "success").Inc()

	s.metrics.IntakeTotal.WithLabelValues(string(result.Category)).Inc()
	s.metrics.PriorityHistogram.WithLabelValues(string(result.Category)).Observe(float64(priority))

	s.logger.Info("Patient triaged",
		"patient_id", p.PatientID,
		"category", result.Category,
		"score", result.Score,
		"priority", priority)

	if err := s.events.Emit(ctx, model.EventPatientTriaged, model.IntakeResponse{
		ID:        p.ID,
		PatientID: p.PatientID,
		Category:  p.TriageCategory,
		Score:     p.TriageScore,
		Priority:  p.Priority,
	}); err != nil {
		s.logger.Error(err, "Failed to emit intake event", "patient_id", p.PatientID)
	}

	return p, nil
}

// identity returns the client identifier or synthesizes one from the intake time.
func (s *Service) identity(supplied *string, now time.Time) (id string, generated bool, err error) {
	if supplied == nil {
		return fmt.Sprintf("P%d", now.Unix()), true, nil
	}
	id = strings.TrimSpace(*supplied)
	if id == "" {
		return "", false, apperrors.BadRequest("patient_id must not be blank", apperrors.ErrMissingIdentity)
	}
	return id, false, nil
}

// newPatient stores the assessment with absent fields resolved to the values the scorer assumed.
func newPatient(req *model.CreatePatientRequest, a model.Assessment, result model.TriageResult, priority int) *model.Patient {
	p := &model.Patient{
		RespiratoryRate: a.RespiratoryRate,
		Pulse:           a.Pulse,
		SystolicBP:      a.SystolicBP,
		Consciousness:   string(model.ConsciousnessAlert),
		CanWalk:         true,
		InjurySeverity:  string(model.InjurySeverityModerate),
		InjuryTypes:     model.StringList(a.InjuryTypes),
		BodyRegions:     model.StringList(a.BodyRegions),
		EstimatedAge:    req.EstimatedAge,
		Gender:          req.Gender,
		Notes:           req.Notes,
		Location:        req.Location,
		Medic:           req.Medic,
		TriageCategory:  result.Category,
		TriageScore:     result.Score,
		Priority:        priority,
	}
	if a.Consciousness != nil {
		p.Consciousness = string(*a.Consciousness)
	}
	if a.CanWalk != nil {
		p.CanWalk = *a.CanWalk
	}
	if a.InjurySeverity != nil {
		p.InjurySeverity = string(*a.InjurySeverity)
	}
	if p.InjuryTypes == nil {
		p.InjuryTypes = model.StringList{}
	}
	if p.BodyRegions == nil {
		p.BodyRegions = model.StringList{}
	}
	return p
}

// Worklist returns active patients in treatment order. An unknown category yields an
// empty list rather than an error.
func (s *Service) Worklist(ctx context.Context, category string) ([]*model.Patient, error) {
	filter, ok := triage.CategoryFilter(category)
	if !ok {
		return []*model.Patient{}, nil
	}

	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list patients: %w", err))
	}
	return triage.Rank(records, filter), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Patient, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get patient: %w", err))
	}
	return p, nil
}

// GetByPatientID looks a casualty up by the identifier assigned at intake.
func (s *Service) GetByPatientID(ctx context.Context, patientID string) (*model.Patient, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, apperrors.BadRequest("patient_id must not be blank", apperrors.ErrMissingIdentity)
	}
	p, err := s.repo.GetByPatientID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get patient: %w", err))
	}
	return p, nil
}

// Update records treatment progress. Only the fields present in req change; an empty
// outcome clears it.
func (s *Service) Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	var outcome *model.Outcome
	if req.Outcome != nil && *req.Outcome != "" {
		o := model.Outcome(*req.Outcome)
		if !o.Valid() {
			return nil, apperrors.BadRequest(fmt.Sprintf("invalid outcome: %q", *req.Outcome), nil)
		}
		outcome = &o
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TreatmentStarted != nil {
		if *req.TreatmentStarted {
			now := s.now()
			p.TreatmentStarted = &now
		} else {
			p.TreatmentStarted = nil
		}
	}
	if req.TreatmentNotes != nil {
		p.TreatmentNotes = req.TreatmentNotes
	}
	if req.Outcome != nil {
		p.Outcome = outcome
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update patient: %w", err))
	}

	s.logger.Info("Patient updated", "patient_id", p.PatientID, "active", p.Active())

	if err := s.events.Emit(ctx, model.EventPatientUpdated, p); err != nil {
		s.logger.Error(err, "Failed to emit update event", "patient_id", p.PatientID)
	}
	return p, nil
}

func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return model.Stats{}, apperrors.Internal(fmt.Errorf("failed to list patients: %w", err))
	}
	return triage.Summarize(records), nil
}
