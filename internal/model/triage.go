package model

import "fmt"

// Consciousness is the AVPU mental status recorded at intake.
type Consciousness string

const (
	ConsciousnessAlert        Consciousness = "alert"
	ConsciousnessVoice        Consciousness = "voice"
	ConsciousnessPain         Consciousness = "pain"
	ConsciousnessUnresponsive Consciousness = "unresponsive"
)

type InjurySeverity string

const (
	InjurySeverityMinor    InjurySeverity = "minor"
	InjurySeverityModerate InjurySeverity = "moderate"
	InjurySeveritySevere   InjurySeverity = "severe"
	InjurySeverityCritical InjurySeverity = "critical"
)

// Category is the triage category assigned by the scorer.
type Category string

const (
	CategoryImmediate Category = "immediate"
	CategoryDelayed   Category = "delayed"
	CategoryMinimal   Category = "minimal"
	CategoryExpectant Category = "expectant"
)

// Categories lists every category in urgency order.
var Categories = []Category{
	CategoryImmediate,
	CategoryDelayed,
	CategoryMinimal,
	CategoryExpectant,
}

// ParseCategory parses a category tag, rejecting anything outside the four known values.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryImmediate, CategoryDelayed, CategoryMinimal, CategoryExpectant:
		return c, nil
	default:
		return "", fmt.Errorf("invalid triage category: %q", s)
	}
}

type Outcome string

const (
	OutcomeStable        Outcome = "stable"
	OutcomeDeteriorating Outcome = "deteriorating"
	OutcomeDeceased      Outcome = "deceased"
	OutcomeEvacuated     Outcome = "evacuated"
)

// Resolved reports whether the outcome removes a patient from the active worklist.
// Only the exact tags deceased and evacuated count; anything else stays active.
func (o Outcome) Resolved() bool {
	return o == OutcomeDeceased || o == OutcomeEvacuated
}

// Valid reports whether o is one of the known outcome tags.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeStable, OutcomeDeteriorating, OutcomeDeceased, OutcomeEvacuated:
		return true
	}
	return false
}

// TriageResult is the scorer output. It is never recomputed after intake.
type TriageResult struct {
	Category Category `json:"category"`
	Score    int      `json:"score"`
}

// Assessment holds the clinical attributes the scorer reads. Nil pointers mean the
// field was not supplied by the medic.
type Assessment struct {
	RespiratoryRate *int            `json:"respiratory_rate,omitempty"`
	Pulse           *int            `json:"pulse,omitempty"`
	SystolicBP      *int            `json:"systolic_bp,omitempty"`
	Consciousness   *Consciousness  `json:"consciousness,omitempty"`
	CanWalk         *bool           `json:"can_walk,omitempty"`
	InjurySeverity  *InjurySeverity `json:"injury_severity,omitempty"`
	BodyRegions     []string        `json:"body_regions,omitempty"`
	InjuryTypes     []string        `json:"injury_type,omitempty"`
}
