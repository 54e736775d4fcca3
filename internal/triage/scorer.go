// Package triage assigns START-style triage categories and resource-aware priorities to
// casualties and orders the active worklist. Everything here is pure: callers supply
// materialized records and a resource snapshot, and persist whatever comes back.
package triage

import (
	"github.com/jwalitptl/triage-api/internal/model"
)

// Score thresholds for category assignment.
const (
	ImmediateThreshold = 80
	DelayedThreshold   = 50
	MinimalThreshold   = 20
)

// RuleApnea is reported by Explain when the respiratory short-circuit fires.
const RuleApnea = "apnea"

// Rule is one additive contribution to the severity score.
type Rule struct {
	Name    string
	Applies func(a model.Assessment) bool
	Points  int
}

// rules are evaluated in order and summed. Enumerated attributes get one rule per
// scoring value so each weight can be checked on its own.
var rules = []Rule{
	{Name: "respiratory_distress", Points: 30, Applies: func(a model.Assessment) bool {
		return present(a.RespiratoryRate) && (*a.RespiratoryRate > 30 || *a.RespiratoryRate < 10)
	}},
	{Name: "pulse_abnormal", Points: 25, Applies: func(a model.Assessment) bool {
		return present(a.Pulse) && (*a.Pulse > 120 || *a.Pulse < 50)
	}},
	{Name: "hypotension", Points: 20, Applies: func(a model.Assessment) bool {
		return present(a.SystolicBP) && *a.SystolicBP < 90
	}},
	{Name: "consciousness_unresponsive", Points: 35, Applies: consciousnessIs(model.ConsciousnessUnresponsive)},
	{Name: "consciousness_pain", Points: 25, Applies: consciousnessIs(model.ConsciousnessPain)},
	{Name: "consciousness_voice", Points: 15, Applies: consciousnessIs(model.ConsciousnessVoice)},
	{Name: "non_ambulatory", Points: 20, Applies: func(a model.Assessment) bool {
		return a.CanWalk != nil && !*a.CanWalk
	}},
	{Name: "severity_critical", Points: 30, Applies: severityIs(model.InjurySeverityCritical)},
	{Name: "severity_severe", Points: 20, Applies: severityIs(model.InjurySeveritySevere)},
	{Name: "severity_moderate", Points: 10, Applies: severityIs(model.InjurySeverityModerate)},
	{Name: "region_head", Points: 15, Applies: regionIs("head")},
	{Name: "region_chest", Points: 15, Applies: regionIs("chest")},
	{Name: "region_abdomen", Points: 10, Applies: regionIs("abdomen")},
	{Name: "mechanism_penetrating", Points: 15, Applies: mechanismIs("penetrating")},
	{Name: "mechanism_blast", Points: 10, Applies: mechanismIs("blast")},
	{Name: "mechanism_burn", Points: 10, Applies: mechanismIs("burn")},
}

// Rules returns a copy of the scoring rules in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Score computes the severity score and category for an assessment.
func Score(a model.Assessment) model.TriageResult {
	if apneic(a) {
		return model.TriageResult{Category: model.CategoryExpectant, Score: 0}
	}

	score := 0
	for _, r := range rules {
		if r.Applies(a) {
			score += r.Points
		}
	}

	return model.TriageResult{Category: categorize(score, a), Score: score}
}

// Explain returns the names of the rules that contributed to the score.
func Explain(a model.Assessment) []string {
	if apneic(a) {
		return []string{RuleApnea}
	}
	var fired []string
	for _, r := range rules {
		if r.Applies(a) {
			fired = append(fired, r.Name)
		}
	}
	return fired
}

// apneic is the terminal rule: no recorded breathing means expectant regardless of
// anything else.
func apneic(a model.Assessment) bool {
	return a.RespiratoryRate == nil || *a.RespiratoryRate == 0
}

func categorize(score int, a model.Assessment) model.Category {
	switch {
	case score >= ImmediateThreshold:
		return model.CategoryImmediate
	case score >= DelayedThreshold:
		return model.CategoryDelayed
	case score >= MinimalThreshold:
		return model.CategoryMinimal
	case walking(a) && alert(a):
		return model.CategoryMinimal
	default:
		return model.CategoryExpectant
	}
}

// walking only counts an explicit yes. A missing mobility answer scores as able to
// walk but does not earn the walking-wounded fallback.
func walking(a model.Assessment) bool {
	return a.CanWalk != nil && *a.CanWalk
}

func alert(a model.Assessment) bool {
	return a.Consciousness == nil || *a.Consciousness == model.ConsciousnessAlert
}

// present treats zero readings as not recorded.
func present(v *int) bool {
	return v != nil && *v != 0
}

// consciousnessLevel resolves the recorded mental status for scoring.
func consciousnessLevel(a model.Assessment) model.Consciousness {
	if a.Consciousness == nil {
		return model.ConsciousnessAlert
	}
	switch c := *a.Consciousness; c {
	case model.ConsciousnessAlert, model.ConsciousnessVoice,
		model.ConsciousnessPain, model.ConsciousnessUnresponsive:
		return c
	default:
		// unknown tag: no consciousness rule matches, contributes 0
		return ""
	}
}

// severityLevel resolves the injury severity for scoring. Absent and unknown
// tags both score as moderate.
func severityLevel(a model.Assessment) model.InjurySeverity {
	if a.InjurySeverity == nil {
		return model.InjurySeverityModerate
	}
	switch s := *a.InjurySeverity; s {
	case model.InjurySeverityMinor, model.InjurySeverityModerate,
		model.InjurySeveritySevere, model.InjurySeverityCritical:
		return s
	default:
		// unknown tag: scored as moderate
		return model.InjurySeverityModerate
	}
}

func consciousnessIs(c model.Consciousness) func(model.Assessment) bool {
	return func(a model.Assessment) bool { return consciousnessLevel(a) == c }
}

func severityIs(s model.InjurySeverity) func(model.Assessment) bool {
	return func(a model.Assessment) bool { return severityLevel(a) == s }
}

func regionIs(region string) func(model.Assessment) bool {
	return func(a model.Assessment) bool { return model.StringList(a.BodyRegions).Contains(region) }
}

func mechanismIs(mechanism string) func(model.Assessment) bool {
	return func(a model.Assessment) bool { return model.StringList(a.InjuryTypes).Contains(mechanism) }
}
