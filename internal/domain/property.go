package domain

import (
	"time"

	"github.com/google/uuid"
)

// AcquisitionStage is a named step in the property-buying workflow.
// It is the key into the flow table.
type AcquisitionStage string

const (
	StageDocumentsPending    AcquisitionStage = "documents_pending"
	StageInitial             AcquisitionStage = "initial"
	StageReviewRequired      AcquisitionStage = "review_required"
	StagePassed70Rule        AcquisitionStage = "passed_70_rule"
	StageReviewRequiredTitle AcquisitionStage = "review_required_title"
	StageInspectionDone      AcquisitionStage = "inspection_done"
	StageReviewRequired80    AcquisitionStage = "review_required_80"
	StagePassed80Rule        AcquisitionStage = "passed_80_rule"
	StageRejected            AcquisitionStage = "rejected"
	StageContractGenerated   AcquisitionStage = "contract_generated"
)

func ValidStage(s string) bool {
	switch AcquisitionStage(s) {
	case StageDocumentsPending, StageInitial, StageReviewRequired,
		StagePassed70Rule, StageReviewRequiredTitle, StageInspectionDone,
		StageReviewRequired80, StagePassed80Rule, StageRejected,
		StageContractGenerated:
		return true
	}
	return false
}

// PropertyStatus tracks the post-acquisition lifecycle of a property.
// This is a separate, simpler state machine than the acquisition flow.
type PropertyStatus string

const (
	StatusPurchased  PropertyStatus = "purchased"
	StatusRenovating PropertyStatus = "renovating"
	StatusPublished  PropertyStatus = "published"
	StatusReserved   PropertyStatus = "reserved"
	StatusSold       PropertyStatus = "sold"
)

func ValidStatus(s string) bool {
	switch PropertyStatus(s) {
	case StatusPurchased, StatusRenovating, StatusPublished, StatusReserved, StatusSold:
		return true
	}
	return false
}

// PropertyFields holds the optional numeric/text fields gathered during
// acquisition. A nil pointer means the field has not been provided; a zero
// value is a real value (a repair estimate of $0 is meaningful).
type PropertyFields struct {
	AskingPrice    *float64 `json:"asking_price"`
	MarketValue    *float64 `json:"market_value"`
	RepairEstimate *float64 `json:"repair_estimate"`
	ARV            *float64 `json:"arv"`
	TitleStatus    *string  `json:"title_status"`
}

// Get returns the value of the named field, or nil when absent.
func (f PropertyFields) Get(name string) any {
	switch name {
	case FieldAskingPrice:
		if f.AskingPrice != nil {
			return *f.AskingPrice
		}
	case FieldMarketValue:
		if f.MarketValue != nil {
			return *f.MarketValue
		}
	case FieldRepairEstimate:
		if f.RepairEstimate != nil {
			return *f.RepairEstimate
		}
	case FieldARV:
		if f.ARV != nil {
			return *f.ARV
		}
	case FieldTitleStatus:
		if f.TitleStatus != nil {
			return *f.TitleStatus
		}
	}
	return nil
}

// Field names used by the flow table's required_data lists.
const (
	FieldAskingPrice    = "asking_price"
	FieldMarketValue    = "market_value"
	FieldRepairEstimate = "repair_estimate"
	FieldARV            = "arv"
	FieldTitleStatus    = "title_status"
)

type Property struct {
	ID          uuid.UUID        `json:"id"`
	TenantID    uuid.UUID        `json:"tenant_id,omitempty"`
	Address     string           `json:"address"`
	Description string           `json:"description,omitempty"`
	Stage       AcquisitionStage `json:"acquisition_stage"`
	Status      PropertyStatus   `json:"status"`
	Fields      PropertyFields   `json:"fields"`
	Embedding   []float32        `json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// PropertyWithScore is a search result ranked by embedding similarity.
type PropertyWithScore struct {
	Property
	Score float32 `json:"score"`
}
