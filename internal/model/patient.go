package model

import (
	"time"
)

// Patient is the persistent casualty record. Triage category, score and priority
// are frozen at intake.
type Patient struct {
	ID        int64     `db:"id" json:"id"`
	PatientID string    `db:"patient_id" json:"patient_id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`

	RespiratoryRate *int       `db:"respiratory_rate" json:"respiratory_rate"`
	Pulse           *int       `db:"pulse" json:"pulse"`
	SystolicBP      *int       `db:"systolic_bp" json:"systolic_bp"`
	Consciousness   string     `db:"consciousness" json:"consciousness"`
	CanWalk         bool       `db:"can_walk" json:"can_walk"`
	InjuryTypes     StringList `db:"injury_type" json:"injury_type"`
	InjurySeverity  string     `db:"injury_severity" json:"injury_severity"`
	BodyRegions     StringList `db:"body_regions" json:"body_regions"`

	EstimatedAge *int    `db:"estimated_age" json:"estimated_age"`
	Gender       *string `db:"gender" json:"gender"`

	TriageCategory Category `db:"triage_category" json:"triage_category"`
	TriageScore    int      `db:"triage_score" json:"triage_score"`
	Priority       int      `db:"priority" json:"priority"`

	TreatmentStarted *time.Time `db:"treatment_started" json:"treatment_started"`
	TreatmentNotes   *string    `db:"treatment_notes" json:"treatment_notes"`
	Outcome          *Outcome   `db:"outcome" json:"outcome"`

	Notes    *string `db:"notes" json:"notes"`
	Location *string `db:"location" json:"location"`
	Medic    *string `db:"medic" json:"medic"`
}

// Active reports whether the patient still belongs on the worklist.
func (p *Patient) Active() bool {
	return p.Outcome == nil || !p.Outcome.Resolved()
}

type CreatePatientRequest struct {
	PatientID       *string  `json:"patient_id"`
	RespiratoryRate *int     `json:"respiratory_rate" binding:"omitempty,min=0"`
	Pulse           *int     `json:"pulse" binding:"omitempty,min=0"`
	SystolicBP      *int     `json:"systolic_bp" binding:"omitempty,min=0"`
	Consciousness   *string  `json:"consciousness"`
	CanWalk         *bool    `json:"can_walk"`
	InjurySeverity  *string  `json:"injury_severity"`
	BodyRegions     []string `json:"body_regions"`
	InjuryTypes     []string `json:"injury_type"`
	EstimatedAge    *int     `json:"estimated_age" binding:"omitempty,min=0,max=150"`
	Gender          *string  `json:"gender"`
	Notes           *string  `json:"notes"`
	Location        *string  `json:"location"`
	Medic           *string  `json:"medic"`
}

// Assessment extracts the fields the scorer reads. Unknown enum strings are passed
// through untouched; the scorer decides how to treat them.
func (r *CreatePatientRequest) Assessment() Assessment {
	a := Assessment{
		RespiratoryRate: r.RespiratoryRate,
		Pulse:           r.Pulse,
		SystolicBP:      r.SystolicBP,
		CanWalk:         r.CanWalk,
		BodyRegions:     r.BodyRegions,
		InjuryTypes:     r.InjuryTypes,
	}
	if r.Consciousness != nil {
		c := Consciousness(*r.Consciousness)
		a.Consciousness = &c
	}
	if r.InjurySeverity != nil {
		s := InjurySeverity(*r.InjurySeverity)
		a.InjurySeverity = &s
	}
	return a
}

type UpdatePatientRequest struct {
	TreatmentStarted *bool   `json:"treatment_started"`
	TreatmentNotes   *string `json:"treatment_notes"`
	Outcome          *string `json:"outcome" binding:"omitempty,outcome"`
}

// IntakeResponse is returned to the medic after a casualty is triaged.
type IntakeResponse struct {
	ID        int64    `json:"id"`
	PatientID string   `json:"patient_id"`
	Category  Category `json:"category"`
	Score     int      `json:"score"`
	Priority  int      `json:"priority"`
}

// Stats summarises the casualty collection.
type Stats struct {
	Total     int `json:"total"`
	Immediate int `json:"immediate"`
	Delayed   int `json:"delayed"`
	Minimal   int `json:"minimal"`
	Expectant int `json:"expectant"`
	Treated   int `json:"treated"`
	Evacuated int `json:"evacuated"`
	Deceased  int `json:"deceased"`
}
