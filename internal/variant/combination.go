package variant

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Pick is a single attribute fixed to a single value.
type Pick struct {
	AttributeID int `json:"attribute_id"`
	ValueID     int `json:"value_id"`
}

// Combination is one point in the Cartesian product of an AttributeSet.
// Picks keep the order of the set they were generated from.
type Combination []Pick

func (c Combination) Value(attributeID int) (int, bool) {
	for _, pick := range c {
		if pick.AttributeID == attributeID {
			return pick.ValueID, true
		}
	}
	return 0, false
}

func (c Combination) AttributeIDs() []int {
	ids := make([]int, 0, len(c))
	for _, pick := range c {
		ids = append(ids, pick.AttributeID)
	}
	return ids
}

// Key is an order-independent identity for the combination, so that the
// same picks declared in a different order compare equal.
func (c Combination) Key() string {
	sorted := slices.Clone(c)
	slices.SortFunc(sorted, func(a, b Pick) int {
		return cmp.Compare(a.AttributeID, b.AttributeID)
	})

	var b strings.Builder
	for i, pick := range sorted {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.Itoa(pick.AttributeID))
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(pick.ValueID))
	}
	return b.String()
}

// Combinations expands an AttributeSet into every combination of its values.
// Expansion is iterative, so the last axis varies fastest. An empty set, or
// a set containing an axis with no values, yields no combinations.
func Combinations(set AttributeSet) []Combination {
	if len(set) == 0 {
		return nil
	}

	combinations := []Combination{{}}
	for _, choice := range set {
		next := make([]Combination, 0, len(combinations)*len(choice.ValueIDs))
		for _, partial := range combinations {
			for _, valueID := range choice.ValueIDs {
				combination := make(Combination, len(partial), len(partial)+1)
				copy(combination, partial)
				combination = append(combination, Pick{AttributeID: choice.AttributeID, ValueID: valueID})
				next = append(next, combination)
			}
		}
		combinations = next
	}

	if len(combinations) == 0 {
		return nil
	}
	return combinations
}
