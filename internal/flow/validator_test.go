package flow

import (
	"testing"

	"github.com/casaflow/casaflow/internal/domain"
	"go.uber.org/zap"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func TestValidateStage_CompleteIffAllRequiredPresent(t *testing.T) {
	v := NewValidator(zap.NewNop())

	full := domain.PropertyFields{
		AskingPrice:    f64(45000),
		MarketValue:    f64(70000),
		RepairEstimate: f64(8000),
		ARV:            f64(65000),
		TitleStatus:    str("clean"),
	}

	for stage := range Table {
		res := v.ValidateStage(stage, full)
		if !res.IsComplete {
			t.Errorf("stage %s: expected complete with all fields set, missing %v", stage, res.MissingData)
		}

		res = v.ValidateStage(stage, domain.PropertyFields{})
		wantComplete := len(Table[stage].RequiredData) == 0
		if res.IsComplete != wantComplete {
			t.Errorf("stage %s: complete=%v with empty fields, want %v", stage, res.IsComplete, wantComplete)
		}
		if len(res.MissingData) != len(Table[stage].RequiredData) {
			t.Errorf("stage %s: missing %v, want all of %v", stage, res.MissingData, Table[stage].RequiredData)
		}
	}
}

func TestValidateStage_ZeroRepairEstimateIsPresent(t *testing.T) {
	v := NewValidator(zap.NewNop())

	res := v.ValidateStage(domain.StagePassed70Rule, domain.PropertyFields{
		TitleStatus:    str("clean"),
		RepairEstimate: f64(0),
	})
	if !res.IsComplete {
		t.Fatalf("repair_estimate=0 must count as present, missing %v", res.MissingData)
	}
}

func TestValidateStage_InitialMissingBothPrices(t *testing.T) {
	v := NewValidator(zap.NewNop())

	res := v.ValidateStage(domain.StageInitial, domain.PropertyFields{})
	if res.IsComplete {
		t.Fatal("expected incomplete")
	}
	want := []string{domain.FieldAskingPrice, domain.FieldMarketValue}
	if len(res.MissingData) != len(want) {
		t.Fatalf("missing %v, want %v", res.MissingData, want)
	}
	for i, m := range want {
		if res.MissingData[i] != m {
			t.Fatalf("missing %v, want %v", res.MissingData, want)
		}
	}
}

func TestValidateStage_InspectionDoneWithARV(t *testing.T) {
	v := NewValidator(zap.NewNop())

	res := v.ValidateStage(domain.StageInspectionDone, domain.PropertyFields{ARV: f64(65000)})
	if !res.IsComplete {
		t.Fatalf("expected complete, missing %v", res.MissingData)
	}
	if res.NextStep != domain.StagePassed80Rule {
		t.Fatalf("next_step = %s, want %s", res.NextStep, domain.StagePassed80Rule)
	}
}

func TestValidateStage_UnknownStageSafeDefault(t *testing.T) {
	v := NewValidator(zap.NewNop())

	res := v.ValidateStage("totally_bogus", domain.PropertyFields{})
	if res.IsComplete {
		t.Fatal("unknown stage must not be complete")
	}
	if res.RecommendedAgent == "" {
		t.Fatal("unknown stage must still recommend an agent")
	}
	if len(res.MissingData) == 0 {
		t.Fatal("unknown stage must carry a missing-data marker")
	}
}

func TestValidateStage_DocumentsPendingHasNoRequiredFields(t *testing.T) {
	v := NewValidator(zap.NewNop())

	res := v.ValidateStage(domain.StageDocumentsPending, domain.PropertyFields{})
	if !res.IsComplete {
		t.Fatalf("documents_pending declares no required fields, missing %v", res.MissingData)
	}
}

func TestDetectStageIntent(t *testing.T) {
	v := NewValidator(zap.NewNop())

	tests := []struct {
		name   string
		stage  domain.AcquisitionStage
		fields domain.PropertyFields
		text   string
		want   StageIntent
	}{
		{
			name:  "number provides first missing field",
			stage: domain.StageInspectionDone,
			text:  "el arv es 65000",
			want:  ProvideFieldIntent(domain.FieldARV),
		},
		{
			name:  "number provides asking price at initial",
			stage: domain.StageInitial,
			text:  "they are asking $45,000 for it",
			want:  ProvideFieldIntent(domain.FieldAskingPrice),
		},
		{
			name:  "ask next step english",
			stage: domain.StageInitial,
			text:  "ok, what's next?",
			want:  StageIntentAskNextStep,
		},
		{
			name:  "ask next step spanish",
			stage: domain.StagePassed70Rule,
			text:  "cual es el siguiente paso",
			want:  StageIntentAskNextStep,
		},
		{
			name:  "signal complete",
			stage: domain.StageInitial,
			text:  "listo, ya terminamos con esto",
			want:  StageIntentSignalComplete,
		},
		{
			name:   "no number and no phrase",
			stage:  domain.StageInitial,
			fields: domain.PropertyFields{},
			text:   "tell me about this one",
			want:   StageIntentUnknown,
		},
		{
			name: "number with nothing missing",
			stage: domain.StageInspectionDone,
			fields: domain.PropertyFields{
				ARV: f64(65000),
			},
			text: "I saw 3 houses today",
			want: StageIntentUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.DetectStageIntent(tt.stage, tt.fields, tt.text)
			if got != tt.want {
				t.Fatalf("DetectStageIntent = %q, want %q", got, tt.want)
			}
		})
	}
}
