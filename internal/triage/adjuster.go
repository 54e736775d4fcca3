package triage

import (
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/triage-api/internal/model"
)

// ScarcityRule scales immediate-category priority when a resource is at or below its
// critical level.
type ScarcityRule struct {
	ResourceType string
	Multiplier   decimal.Decimal
}

// DefaultScarcityPolicy lowers immediate priorities while oxygen or morphine is scarce.
// This is a triage policy decision carried over from field operations, not a mechanism;
// change it only with clinical sign-off.
var DefaultScarcityPolicy = []ScarcityRule{
	{ResourceType: "oxygen", Multiplier: decimal.RequireFromString("0.8")},
	{ResourceType: "morphine", Multiplier: decimal.RequireFromString("0.9")},
}

// Adjuster applies a scarcity policy to immediate-category priorities.
type Adjuster struct {
	policy []ScarcityRule
}

// NewAdjuster copies policy so later edits by the caller do not affect it.
func NewAdjuster(policy []ScarcityRule) *Adjuster {
	p := make([]ScarcityRule, len(policy))
	copy(p, policy)
	return &Adjuster{policy: p}
}

var defaultAdjuster = NewAdjuster(DefaultScarcityPolicy)

// Adjust applies the default scarcity policy.
func Adjust(result model.TriageResult, lookup ResourceLookup) int {
	return defaultAdjuster.Adjust(result, lookup)
}

// Adjust returns the stored priority for a triage result. Only immediate cases are
// scaled; multipliers compose and the product is truncated toward zero. A resource
// missing from the lookup means no adjustment for that rule.
func (a *Adjuster) Adjust(result model.TriageResult, lookup ResourceLookup) int {
	priority := decimal.NewFromInt(int64(result.Score))
	if result.Category != model.CategoryImmediate || lookup == nil {
		return int(priority.IntPart())
	}

	for _, rule := range a.policy {
		res, ok := lookup.Lookup(rule.ResourceType)
		if !ok {
			continue
		}
		if res.Scarce() {
			priority = priority.Mul(rule.Multiplier)
		}
	}

	return int(priority.IntPart())
}

// Policy returns a copy of the adjuster's scarcity rules.
func (a *Adjuster) Policy() []ScarcityRule {
	out := make([]ScarcityRule, len(a.policy))
	copy(out, a.policy)
	return out
}
