package flow

import "github.com/casaflow/casaflow/internal/domain"

// Step describes one acquisition stage: what data must be gathered before
// the property can leave it, where it goes next, and which agent owns the
// conversation while the property sits in it.
type Step struct {
	Stage        domain.AcquisitionStage
	DisplayName  string
	RequiredData []string
	NextStage    domain.AcquisitionStage // empty for terminal stages
	OwningAgent  string
}

// Table is the acquisition flow: a linear forward chain with review
// side-branches that re-enter the main path after human action, and one
// absorbing terminal (rejected). Stage transitions only move forward along
// NextStage edges; the review gates are resolved through ResolveReview.
var Table = map[domain.AcquisitionStage]Step{
	domain.StageDocumentsPending: {
		Stage:       domain.StageDocumentsPending,
		DisplayName: "Documents Pending",
		// Completeness here is judged by document count, which is owned
		// by the document pipeline, not by field presence.
		RequiredData: nil,
		NextStage:    domain.StageInitial,
		OwningAgent:  domain.AgentDocument,
	},
	domain.StageInitial: {
		Stage:        domain.StageInitial,
		DisplayName:  "Initial Evaluation",
		RequiredData: []string{domain.FieldAskingPrice, domain.FieldMarketValue},
		NextStage:    domain.StagePassed70Rule,
		OwningAgent:  domain.AgentProperty,
	},
	domain.StageReviewRequired: {
		Stage:       domain.StageReviewRequired,
		DisplayName: "Manual Review (70% Rule)",
		NextStage:   domain.StagePassed70Rule,
		OwningAgent: domain.AgentMain,
	},
	domain.StagePassed70Rule: {
		Stage:        domain.StagePassed70Rule,
		DisplayName:  "Passed 70% Rule",
		RequiredData: []string{domain.FieldTitleStatus, domain.FieldRepairEstimate},
		NextStage:    domain.StageInspectionDone,
		OwningAgent:  domain.AgentProperty,
	},
	domain.StageReviewRequiredTitle: {
		Stage:       domain.StageReviewRequiredTitle,
		DisplayName: "Manual Review (Title)",
		NextStage:   domain.StageInspectionDone,
		OwningAgent: domain.AgentMain,
	},
	domain.StageInspectionDone: {
		Stage:        domain.StageInspectionDone,
		DisplayName:  "Inspection Done",
		RequiredData: []string{domain.FieldARV},
		NextStage:    domain.StagePassed80Rule,
		OwningAgent:  domain.AgentProperty,
	},
	domain.StageReviewRequired80: {
		Stage:       domain.StageReviewRequired80,
		DisplayName: "Manual Review (80% Rule)",
		NextStage:   domain.StagePassed80Rule,
		OwningAgent: domain.AgentMain,
	},
	domain.StagePassed80Rule: {
		Stage:       domain.StagePassed80Rule,
		DisplayName: "Passed 80% Rule",
		NextStage:   domain.StageContractGenerated,
		OwningAgent: domain.AgentContract,
	},
	domain.StageRejected: {
		Stage:       domain.StageRejected,
		DisplayName: "Rejected",
		OwningAgent: domain.AgentMain,
	},
	domain.StageContractGenerated: {
		Stage:       domain.StageContractGenerated,
		DisplayName: "Contract Generated",
		OwningAgent: domain.AgentContract,
	},
}

// reviewStages are the manual human gates. Approving one re-enters the main
// chain at its NextStage; rejecting the 70%/80% gates moves the property to
// the absorbing rejected state.
var reviewStages = map[domain.AcquisitionStage]bool{
	domain.StageReviewRequired:      true,
	domain.StageReviewRequiredTitle: true,
	domain.StageReviewRequired80:    true,
}

// IsReviewStage reports whether the stage is a manual human gate.
func IsReviewStage(s domain.AcquisitionStage) bool {
	return reviewStages[s]
}

// IsTerminal reports whether the stage has no outgoing edge.
func IsTerminal(s domain.AcquisitionStage) bool {
	step, ok := Table[s]
	return ok && step.NextStage == ""
}

// CanReject reports whether rejection is allowed from the stage. Only the
// 70% and 80% review gates can reject.
func CanReject(s domain.AcquisitionStage) bool {
	return s == domain.StageReviewRequired || s == domain.StageReviewRequired80
}
