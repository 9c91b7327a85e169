package flow

import "github.com/casaflow/casaflow/internal/domain"

// Business thresholds gating stage advancement.
const (
	Rule70Threshold = 0.70
	Rule80Threshold = 0.80
)

// GateOutcome is the result of evaluating a stage's exit gate.
type GateOutcome struct {
	Passed bool
	// FailStage is where the property goes when the gate fails.
	FailStage domain.AcquisitionStage
	Reason    string
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// EvaluateGate applies the business gate for leaving the given stage. Stages
// without a gate always pass. A gate whose inputs are absent fails into its
// review branch so a human resolves it; gates never panic on nil fields.
func EvaluateGate(stage domain.AcquisitionStage, fields domain.PropertyFields) GateOutcome {
	switch stage {
	case domain.StageInitial:
		if fields.AskingPrice == nil || fields.MarketValue == nil {
			return GateOutcome{Passed: false, FailStage: domain.StageReviewRequired, Reason: "pricing data incomplete"}
		}
		// 70% rule: asking price must not exceed 70% of market value.
		if deref(fields.AskingPrice) > Rule70Threshold*deref(fields.MarketValue) {
			return GateOutcome{
				Passed:    false,
				FailStage: domain.StageReviewRequired,
				Reason:    "asking price exceeds 70% of market value",
			}
		}
		return GateOutcome{Passed: true}

	case domain.StagePassed70Rule:
		if fields.TitleStatus == nil || *fields.TitleStatus != "clean" {
			return GateOutcome{
				Passed:    false,
				FailStage: domain.StageReviewRequiredTitle,
				Reason:    "title status is not clean",
			}
		}
		return GateOutcome{Passed: true}

	case domain.StageInspectionDone:
		if fields.AskingPrice == nil || fields.ARV == nil {
			return GateOutcome{Passed: false, FailStage: domain.StageReviewRequired80, Reason: "valuation data incomplete"}
		}
		// 80% rule: total investment must not exceed 80% of after-repair value.
		if deref(fields.AskingPrice)+deref(fields.RepairEstimate) > Rule80Threshold*deref(fields.ARV) {
			return GateOutcome{
				Passed:    false,
				FailStage: domain.StageReviewRequired80,
				Reason:    "asking price plus repairs exceeds 80% of ARV",
			}
		}
		return GateOutcome{Passed: true}
	}

	return GateOutcome{Passed: true}
}
