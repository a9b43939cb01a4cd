package catalog

// Package catalog provides catalog and attribute set validation.

import (
	"fmt"
	"strings"

	"github.com/gitshopapp/gemcart/internal/variant"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(file *CatalogFile) error {
	if file == nil {
		return fmt.Errorf("catalog is required")
	}

	if len(file.Attributes) == 0 {
		return fmt.Errorf("at least one attribute is required")
	}

	ids := make(map[int]bool)
	for i, attribute := range file.Attributes {
		if err := v.validateAttribute(&attribute); err != nil {
			return fmt.Errorf("attribute %d validation failed: %w", i, err)
		}

		if ids[attribute.ID] {
			return fmt.Errorf("duplicate attribute id: %d", attribute.ID)
		}
		ids[attribute.ID] = true
	}

	return nil
}

func (v *Validator) validateAttribute(attribute *variant.Attribute) error {
	if attribute.ID <= 0 {
		return fmt.Errorf("attribute id must be positive")
	}

	if strings.TrimSpace(attribute.Name) == "" {
		return fmt.Errorf("attribute name is required")
	}

	if len(attribute.Values) == 0 {
		return fmt.Errorf("attribute values cannot be empty")
	}

	valueIDs := make(map[int]bool)
	valueNames := make(map[string]bool)
	for i, value := range attribute.Values {
		if value.ID <= 0 {
			return fmt.Errorf("value %d id must be positive", i)
		}
		name := strings.ToLower(strings.TrimSpace(value.Name))
		if name == "" {
			return fmt.Errorf("value %d name is required", i)
		}

		if valueIDs[value.ID] {
			return fmt.Errorf("duplicate value id: %d", value.ID)
		}
		valueIDs[value.ID] = true

		if valueNames[name] {
			return fmt.Errorf("duplicate value name: %s", value.Name)
		}
		valueNames[name] = true
	}

	return nil
}

// ValidateSets checks seller-authored attribute sets against the catalog.
// Duplicate values are rejected here because the combination generator
// does not deduplicate.
func (v *Validator) ValidateSets(sets []variant.AttributeSet, catalog variant.Catalog) error {
	for i, set := range sets {
		if err := v.validateSet(set, catalog); err != nil {
			return fmt.Errorf("attribute set %d validation failed: %w", i+1, err)
		}
	}
	return nil
}

func (v *Validator) validateSet(set variant.AttributeSet, catalog variant.Catalog) error {
	if len(set) == 0 {
		return fmt.Errorf("add at least one attribute")
	}

	attributes := make(map[int]bool)
	for _, choice := range set {
		attribute, ok := catalog.Attribute(choice.AttributeID)
		if !ok {
			return fmt.Errorf("unknown attribute id: %d", choice.AttributeID)
		}

		if attributes[choice.AttributeID] {
			return fmt.Errorf("attribute %s is listed twice", attribute.Name)
		}
		attributes[choice.AttributeID] = true

		if len(choice.ValueIDs) == 0 {
			return fmt.Errorf("select at least one value for %s", attribute.Name)
		}

		values := make(map[int]bool)
		for _, valueID := range choice.ValueIDs {
			if _, ok := catalog.ValueName(choice.AttributeID, valueID); !ok {
				return fmt.Errorf("unknown value id %d for %s", valueID, attribute.Name)
			}
			if values[valueID] {
				return fmt.Errorf("value id %d is listed twice for %s", valueID, attribute.Name)
			}
			values[valueID] = true
		}
	}

	return nil
}
