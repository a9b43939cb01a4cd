package variant

import (
	"maps"
	"slices"
)

// Selection maps attribute ID to the single value ID a shopper picked.
type Selection map[int]int

// With returns a copy of the selection with one axis changed.
func (s Selection) With(attributeID, valueID int) Selection {
	next := maps.Clone(s)
	if next == nil {
		next = Selection{}
	}
	next[attributeID] = valueID
	return next
}

// Without returns a copy of the selection with one axis cleared.
func (s Selection) Without(attributeID int) Selection {
	next := maps.Clone(s)
	delete(next, attributeID)
	return next
}

type ResolutionState string

const (
	StateIncomplete  ResolutionState = "incomplete"
	StateUnavailable ResolutionState = "unavailable"
	StateResolved    ResolutionState = "resolved"
)

type Resolution struct {
	State   ResolutionState `json:"state"`
	Variant *Variant        `json:"variant,omitempty"`
	// Missing lists required axes without a value when State is incomplete.
	Missing []int `json:"missing,omitempty"`
}

func (r Resolution) Resolved() bool {
	return r.State == StateResolved && r.Variant != nil
}

// RequiredAxes returns every attribute ID used by any variant, in the order
// they are first seen.
func RequiredAxes(variants []Variant) []int {
	var axes []int
	seen := map[int]struct{}{}
	for _, v := range variants {
		for _, pick := range v.Combination {
			if _, ok := seen[pick.AttributeID]; ok {
				continue
			}
			seen[pick.AttributeID] = struct{}{}
			axes = append(axes, pick.AttributeID)
		}
	}
	return axes
}

// Select resolves a selection against the variant list. Matching is exact
// per axis. When several variants match, the first one in list order wins.
// The returned variant is a copy.
func Select(variants []Variant, selection Selection, requiredAxes []int) Resolution {
	var missing []int
	for _, axis := range requiredAxes {
		if _, ok := selection[axis]; !ok {
			missing = append(missing, axis)
		}
	}
	if len(missing) > 0 {
		return Resolution{State: StateIncomplete, Missing: missing}
	}

	for i := range variants {
		if matches(variants[i].Combination, selection, requiredAxes) {
			match := variants[i]
			return Resolution{State: StateResolved, Variant: &match}
		}
	}
	return Resolution{State: StateUnavailable}
}

func matches(combination Combination, selection Selection, axes []int) bool {
	for _, axis := range axes {
		value, ok := combination.Value(axis)
		if !ok || value != selection[axis] {
			return false
		}
	}
	return true
}

// DefaultVariant is the variant a product page opens on: the first one in
// stock, or the first one overall when nothing is in stock.
func DefaultVariant(variants []Variant) (Variant, bool) {
	if len(variants) == 0 {
		return Variant{}, false
	}
	for _, v := range variants {
		if v.InStock {
			return v, true
		}
	}
	return variants[0], true
}

// SeedSelection builds the initial selection from DefaultVariant.
func SeedSelection(variants []Variant) Selection {
	selection := Selection{}
	v, ok := DefaultVariant(variants)
	if !ok {
		return selection
	}
	for _, pick := range v.Combination {
		selection[pick.AttributeID] = pick.ValueID
	}
	return selection
}

// AvailableValues lists the values of axis that still lead to at least one
// variant, given the values already selected on the other axes.
func AvailableValues(variants []Variant, selection Selection, axis int) []int {
	others := selection.Without(axis)
	var values []int
	for _, v := range variants {
		value, ok := v.Combination.Value(axis)
		if !ok || slices.Contains(values, value) {
			continue
		}
		if compatible(v.Combination, others) {
			values = append(values, value)
		}
	}
	return values
}

func compatible(combination Combination, selection Selection) bool {
	for axis, want := range selection {
		value, ok := combination.Value(axis)
		if !ok || value != want {
			return false
		}
	}
	return true
}
