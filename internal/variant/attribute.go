package variant

// Package variant expands seller attribute sets into purchasable variants,
// prices them, and resolves shopper selections back to a single variant.

type AttributeValue struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type Attribute struct {
	ID     int              `json:"id" yaml:"id"`
	Name   string           `json:"name" yaml:"name"`
	Values []AttributeValue `json:"values" yaml:"values"`
}

// Catalog is a read-only snapshot of the attribute catalog.
type Catalog struct {
	Attributes []Attribute `json:"attributes" yaml:"attributes"`
}

func NewCatalog(attributes ...Attribute) Catalog {
	return Catalog{Attributes: attributes}
}

func (c Catalog) Attribute(attributeID int) (Attribute, bool) {
	for _, attribute := range c.Attributes {
		if attribute.ID == attributeID {
			return attribute, true
		}
	}
	return Attribute{}, false
}

// ValueName returns the display name of a value, or false when either the
// attribute or the value is missing from the catalog.
func (c Catalog) ValueName(attributeID, valueID int) (string, bool) {
	attribute, ok := c.Attribute(attributeID)
	if !ok {
		return "", false
	}
	for _, value := range attribute.Values {
		if value.ID == valueID {
			return value.Name, true
		}
	}
	return "", false
}

// AttributeChoice is one axis of an AttributeSet: the values a seller picked
// for a single attribute, in the order they were picked.
type AttributeChoice struct {
	AttributeID int   `json:"attribute_id" yaml:"attribute_id" validate:"required"`
	ValueIDs    []int `json:"value_ids" yaml:"value_ids" validate:"required,min=1"`
}

// AttributeSet is an ordered list of axes. Order matters: the last axis
// varies fastest when the set is expanded.
type AttributeSet []AttributeChoice

func (s AttributeSet) Len() int {
	return len(s)
}

// Size is the number of combinations the set expands to.
func (s AttributeSet) Size() int {
	if len(s) == 0 {
		return 0
	}
	size := 1
	for _, choice := range s {
		size *= len(choice.ValueIDs)
	}
	return size
}
