package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gitshopapp/gemcart/internal/variant"
)

// WizardStep is the seller's position in the product creation flow. Steps
// are linear; the order of the constants below is the order of the flow.
type WizardStep string

const (
	StepDetails    WizardStep = "details"
	StepAttributes WizardStep = "attributes"
	StepVariants   WizardStep = "variants"
	StepPricing    WizardStep = "pricing"
	StepReview     WizardStep = "review"
	StepPublished  WizardStep = "published"
)

var WizardSteps = []WizardStep{
	StepDetails,
	StepAttributes,
	StepVariants,
	StepPricing,
	StepReview,
	StepPublished,
}

// Next returns the step after s, or false when s is the last step or unknown.
func (s WizardStep) Next() (WizardStep, bool) {
	for i, step := range WizardSteps {
		if step == s && i+1 < len(WizardSteps) {
			return WizardSteps[i+1], true
		}
	}
	return "", false
}

func (s WizardStep) Valid() bool {
	for _, step := range WizardSteps {
		if step == s {
			return true
		}
	}
	return false
}

type Product struct {
	ID            uuid.UUID              `json:"id"`
	SellerID      string                 `json:"seller_id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	Step          WizardStep             `json:"step"`
	AttributeSets []variant.AttributeSet `json:"attribute_sets"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// HasIdentity reports whether the backend has assigned the product an ID.
func (p *Product) HasIdentity() bool {
	return p != nil && p.ID != uuid.Nil
}

func (p *Product) IsPublished() bool {
	return p != nil && p.Step == StepPublished
}
