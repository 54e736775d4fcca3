package triage

import "github.com/jwalitptl/triage-api/internal/model"

// Summarize counts active patients per category and lifecycle totals over all records.
func Summarize(records []*model.Patient) model.Stats {
	var s model.Stats
	for _, p := range records {
		if p == nil {
			continue
		}
		if p.TreatmentStarted != nil {
			s.Treated++
		}
		if p.Outcome != nil {
			switch *p.Outcome {
			case model.OutcomeEvacuated:
				s.Evacuated++
			case model.OutcomeDeceased:
				s.Deceased++
			}
		}
		if !p.Active() {
			continue
		}
		s.Total++
		switch p.TriageCategory {
		case model.CategoryImmediate:
			s.Immediate++
		case model.CategoryDelayed:
			s.Delayed++
		case model.CategoryMinimal:
			s.Minimal++
		case model.CategoryExpectant:
			s.Expectant++
		}
	}
	return s
}
