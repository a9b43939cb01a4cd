package variant

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	DefaultSKUPrefixLength = 3
	skuSeparator           = "-"
	placeholderSKUPrefix   = "SKU"
)

// SKUGenerator derives SKU codes from value names.
type SKUGenerator struct {
	prefixLength int
	suffix       func() string
}

func NewSKUGenerator(prefixLength int) *SKUGenerator {
	if prefixLength <= 0 {
		prefixLength = DefaultSKUPrefixLength
	}
	return &SKUGenerator{
		prefixLength: prefixLength,
		suffix:       randomSuffix,
	}
}

// Generate joins the upper-cased name prefix of every resolvable pick, e.g.
// YEL-14K. Picks missing from the catalog are skipped. When nothing resolves
// a random placeholder is returned, so the result is never empty.
func (g *SKUGenerator) Generate(combination Combination, catalog Catalog) string {
	parts := make([]string, 0, len(combination))
	for _, pick := range combination {
		name, ok := catalog.ValueName(pick.AttributeID, pick.ValueID)
		if !ok {
			continue
		}
		if prefix := namePrefix(name, g.prefixLength); prefix != "" {
			parts = append(parts, prefix)
		}
	}

	if len(parts) == 0 {
		return placeholderSKUPrefix + skuSeparator + g.suffix()
	}
	return strings.Join(parts, skuSeparator)
}

func namePrefix(name string, n int) string {
	var b strings.Builder
	count := 0
	for _, r := range strings.TrimSpace(name) {
		if count == n {
			break
		}
		b.WriteRune(unicode.ToUpper(r))
		count++
	}
	return b.String()
}

func randomSuffix() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:8])
}
