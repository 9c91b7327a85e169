package flow

import (
	"regexp"
	"strings"

	"github.com/casaflow/casaflow/internal/domain"
	"go.uber.org/zap"
)

// Result is the outcome of validating a property against its current stage.
type Result struct {
	IsComplete       bool                    `json:"is_complete"`
	MissingData      []string                `json:"missing_data"`
	CurrentStep      string                  `json:"current_step"`
	NextStep         domain.AcquisitionStage `json:"next_step,omitempty"`
	RecommendedAgent string                  `json:"recommended_agent"`
}

// Validator checks stage completeness against the flow table. Construct it
// with NewValidator and pass it where needed; it holds no mutable state
// beyond the logger.
type Validator struct {
	logger *zap.Logger
}

func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// ValidateStage looks up the stage in the flow table and reports which of
// its required fields are still missing. A nil field is missing; a zero
// value is present (a repair estimate of $0 is a real estimate).
//
// Unknown stages never produce an error: routing must not crash the
// conversation, so they log a warning and return a safe default.
func (v *Validator) ValidateStage(stage domain.AcquisitionStage, fields domain.PropertyFields) Result {
	step, ok := Table[stage]
	if !ok {
		v.logger.Warn("unknown acquisition stage, using safe default",
			zap.String("stage", string(stage)))
		return Result{
			IsComplete:       false,
			MissingData:      []string{"unknown_stage"},
			CurrentStep:      string(stage),
			RecommendedAgent: domain.AgentMain,
		}
	}

	var missing []string
	for _, name := range step.RequiredData {
		if fields.Get(name) == nil {
			missing = append(missing, name)
		}
	}

	return Result{
		IsComplete:       len(missing) == 0,
		MissingData:      missing,
		CurrentStep:      step.DisplayName,
		NextStep:         step.NextStage,
		RecommendedAgent: step.OwningAgent,
	}
}

// StageIntent labels what the user is doing relative to the current stage.
type StageIntent string

const (
	StageIntentAskNextStep    StageIntent = "ask_next_step"
	StageIntentSignalComplete StageIntent = "signal_complete"
	StageIntentUnknown        StageIntent = "unknown"
)

// ProvideFieldIntent builds the intent label for supplying a missing field,
// e.g. "provide_arv".
func ProvideFieldIntent(field string) StageIntent {
	return StageIntent("provide_" + field)
}

var numberRe = regexp.MustCompile(`\$?\d[\d,]*(\.\d+)?`)

var nextStepPhrases = []string{
	"next step", "what's next", "whats next", "what now",
	"siguiente paso", "que sigue", "qué sigue", "ahora que",
}

var completePhrases = []string{
	"done", "finished", "all set", "completed",
	"listo", "terminado", "completado", "ya esta", "ya está",
}

// DetectStageIntent classifies the utterance against the *current* missing
// fields. This is deliberately context-sensitive: if the stage is waiting
// on arv and the message carries a number, the user is providing the arv.
func (v *Validator) DetectStageIntent(stage domain.AcquisitionStage, fields domain.PropertyFields, text string) StageIntent {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, p := range nextStepPhrases {
		if strings.Contains(lower, p) {
			return StageIntentAskNextStep
		}
	}
	for _, p := range completePhrases {
		if strings.Contains(lower, p) {
			return StageIntentSignalComplete
		}
	}

	res := v.ValidateStage(stage, fields)
	if len(res.MissingData) > 0 && numberRe.MatchString(text) {
		// Attribute the number to the first outstanding field; the agent
		// confirms the assignment with the user before persisting.
		return ProvideFieldIntent(res.MissingData[0])
	}

	return StageIntentUnknown
}
