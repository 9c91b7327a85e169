package flow

import (
	"testing"

	"github.com/casaflow/casaflow/internal/domain"
)

func TestTable_ForwardChainReachesContract(t *testing.T) {
	// Follow NextStage edges from the start; the main chain must reach
	// contract_generated without revisiting a stage.
	seen := map[domain.AcquisitionStage]bool{}
	stage := domain.StageDocumentsPending
	for {
		if seen[stage] {
			t.Fatalf("cycle detected at %s", stage)
		}
		seen[stage] = true

		step, ok := Table[stage]
		if !ok {
			t.Fatalf("stage %s missing from table", stage)
		}
		if step.NextStage == "" {
			break
		}
		stage = step.NextStage
	}
	if stage != domain.StageContractGenerated {
		t.Fatalf("chain terminated at %s, want %s", stage, domain.StageContractGenerated)
	}
}

func TestTable_EveryStageHasOwningAgent(t *testing.T) {
	for stage, step := range Table {
		if step.OwningAgent == "" {
			t.Errorf("stage %s has no owning agent", stage)
		}
		if step.DisplayName == "" {
			t.Errorf("stage %s has no display name", stage)
		}
	}
}

func TestTable_ReviewStagesReenterMainChain(t *testing.T) {
	for stage := range reviewStages {
		step := Table[stage]
		if step.NextStage == "" {
			t.Errorf("review stage %s must re-enter the main chain", stage)
		}
		if IsReviewStage(step.NextStage) {
			t.Errorf("review stage %s feeds another review stage %s", stage, step.NextStage)
		}
	}
}

func TestTable_Terminals(t *testing.T) {
	if !IsTerminal(domain.StageRejected) {
		t.Error("rejected must be terminal")
	}
	if !IsTerminal(domain.StageContractGenerated) {
		t.Error("contract_generated must be terminal")
	}
	if IsTerminal(domain.StageInitial) {
		t.Error("initial must not be terminal")
	}
}

func TestCanReject(t *testing.T) {
	if !CanReject(domain.StageReviewRequired) || !CanReject(domain.StageReviewRequired80) {
		t.Error("70%/80% review gates must allow rejection")
	}
	if CanReject(domain.StageReviewRequiredTitle) {
		t.Error("title review cannot reject")
	}
	if CanReject(domain.StageInitial) {
		t.Error("main-chain stages cannot reject")
	}
}
