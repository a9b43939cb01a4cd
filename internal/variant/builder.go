package variant

import (
	"fmt"
	"slices"
)

// DraftGroup holds the drafts generated from one AttributeSet.
type DraftGroup struct {
	Index    int       `json:"index"`
	Variants []Variant `json:"variants"`
}

type Builder struct {
	skus *SKUGenerator
}

func NewBuilder(skus *SKUGenerator) *Builder {
	if skus == nil {
		skus = NewSKUGenerator(DefaultSKUPrefixLength)
	}
	return &Builder{skus: skus}
}

// Build expands every set in declaration order into unpersisted drafts.
//
// SKUs are unique within a batch: when two different combinations produce
// the same code, later ones get a -2, -3, ... suffix. The same combination
// declared in two sets keeps one SKU.
func (b *Builder) Build(sets []AttributeSet, catalog Catalog) []DraftGroup {
	return b.Rebuild(sets, catalog, nil)
}

// Rebuild is Build for a product that already has saved variants. A saved
// combination keeps its saved SKU whatever order its axes are declared in,
// and new combinations are suffixed around the saved SKUs, so codes stay
// put across rebuilds.
func (b *Builder) Rebuild(sets []AttributeSet, catalog Catalog, persisted []Variant) []DraftGroup {
	groups := make([]DraftGroup, 0, len(sets))
	skuOwner := map[string]string{}
	skuByKey := map[string]string{}

	for _, saved := range persisted {
		if len(saved.Combination) == 0 {
			continue
		}
		key := saved.Combination.Key()
		if _, seen := skuByKey[key]; !seen {
			skuByKey[key] = saved.SKU
		}
		skuOwner[saved.SKU] = key
	}

	for i, set := range sets {
		combinations := Combinations(set)
		group := DraftGroup{Index: i, Variants: make([]Variant, 0, len(combinations))}

		for _, combination := range combinations {
			key := combination.Key()
			sku, seen := skuByKey[key]
			if !seen {
				sku = uniqueSKU(b.skus.Generate(combination, catalog), key, skuOwner)
				skuOwner[sku] = key
				skuByKey[key] = sku
			}
			group.Variants = append(group.Variants, NewDraft(sku, combination))
		}

		groups = append(groups, group)
	}

	return groups
}

// Validate reports ErrEmptyAttributeSet when the sets would leave the
// product without a single purchasable variant.
func (b *Builder) Validate(sets []AttributeSet) error {
	for _, set := range sets {
		if set.Size() > 0 {
			return nil
		}
	}
	return ErrEmptyAttributeSet
}

func uniqueSKU(base, key string, owners map[string]string) string {
	if owner, taken := owners[base]; !taken || owner == key {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s%s%d", base, skuSeparator, n)
		if owner, taken := owners[candidate]; !taken || owner == key {
			return candidate
		}
	}
}

// Flatten returns the drafts of every group in order, dropping repeated SKUs.
func Flatten(groups []DraftGroup) []Variant {
	var out []Variant
	seen := map[string]struct{}{}
	for _, group := range groups {
		for _, draft := range group.Variants {
			if _, dup := seen[draft.SKU]; dup {
				continue
			}
			seen[draft.SKU] = struct{}{}
			out = append(out, draft)
		}
	}
	return out
}

// ReconcileResult is the authoritative list after merging a rebuild.
type ReconcileResult struct {
	Variants []Variant `json:"variants"`
	Added    []string  `json:"added"`
	Kept     []string  `json:"kept"`
	// Orphaned lists persisted SKUs the rebuild no longer produces. They
	// stay in the list until removed explicitly.
	Orphaned []string `json:"orphaned"`
}

// Reconcile merges freshly built drafts into the persisted list. Drafts
// are matched to persisted records by combination; a persisted record with
// no combination falls back to matching by SKU. A matched draft is dropped
// in favour of the persisted record, so re-running Build never duplicates
// or resets a saved variant. An unmatched draft whose SKU is taken by a
// different persisted combination gets the next free suffix.
// The inputs are not modified.
func Reconcile(persisted []Variant, drafts []Variant) ReconcileResult {
	result := ReconcileResult{Variants: slices.Clone(persisted)}

	byKey := map[string]int{}
	owners := map[string]string{}
	for i, existing := range persisted {
		key := existing.Combination.Key()
		if len(existing.Combination) > 0 {
			if _, dup := byKey[key]; !dup {
				byKey[key] = i
			}
		}
		owners[existing.SKU] = key
	}

	matched := make([]bool, len(persisted))
	produced := map[string]struct{}{}

	for _, draft := range drafts {
		key := draft.Combination.Key()
		if _, dup := produced[key]; dup {
			continue
		}
		produced[key] = struct{}{}

		idx, ok := byKey[key]
		if !ok {
			idx, ok = FindBySKU(persisted, draft.SKU)
			ok = ok && len(persisted[idx].Combination) == 0 && !matched[idx]
		}
		if ok {
			matched[idx] = true
			result.Kept = append(result.Kept, persisted[idx].SKU)
			continue
		}

		draft.SKU = uniqueSKU(draft.SKU, key, owners)
		owners[draft.SKU] = key
		result.Variants = append(result.Variants, draft)
		result.Added = append(result.Added, draft.SKU)
	}

	for i, existing := range persisted {
		if !matched[i] {
			result.Orphaned = append(result.Orphaned, existing.SKU)
		}
	}

	return result
}

// Upsert applies incoming records to list with last-write-wins semantics.
// Records are matched by backend ID when both sides have one, otherwise by
// SKU. A matched record keeps its backend ID if the incoming one has none.
// Unmatched records are appended. The returned slice is a new list.
func Upsert(list []Variant, incoming ...Variant) []Variant {
	out := slices.Clone(list)
	for _, next := range incoming {
		idx := indexOf(out, next)
		if idx < 0 {
			out = append(out, next)
			continue
		}
		if !next.Persisted() {
			next.ID = out[idx].ID
		}
		out[idx] = next
	}
	return out
}

func indexOf(list []Variant, v Variant) int {
	if v.Persisted() {
		for i := range list {
			if list[i].ID == v.ID {
				return i
			}
		}
	}
	if idx, ok := FindBySKU(list, v.SKU); ok {
		return idx
	}
	return -1
}
