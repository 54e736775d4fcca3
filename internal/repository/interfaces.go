package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/triage-api/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int64) (*model.Patient, error)
		GetByPatientID(ctx context.Context, patientID string) (*model.Patient, error)
		// List returns every record in insertion order.
		List(ctx context.Context) ([]*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
	}

	ResourceRepository interface {
		// List returns the whole registry in one read.
		List(ctx context.Context) ([]*model.Resource, error)
		GetByType(ctx context.Context, resourceType string) (*model.Resource, error)
		Upsert(ctx context.Context, resource *model.Resource) error
		Count(ctx context.Context) (int, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
