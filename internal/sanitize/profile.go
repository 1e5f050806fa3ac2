package sanitize

import (
	"fmt"
	"sort"
)

// fieldKind selects the normalizer applied to a recognized profile field.
type fieldKind int

const (
	kindString fieldKind = iota
	kindDate
	kindTime
	kindCurrency
	kindCount
)

// profileFields is the fixed set of recognized profile keys. Input keys
// outside this set are dropped silently.
var profileFields = map[string]fieldKind{
	"wedding_date":       kindDate,
	"wedding_time":       kindTime,
	"partner1_name":      kindString,
	"partner2_name":      kindString,
	"location":           kindString,
	"reception_location": kindString,
	"venue_name":         kindString,
	"venue_cost":         kindCurrency,
	"guest_count":        kindCount,
	"total_budget":       kindCurrency,
	"primary_color":      kindString,
	"secondary_color":    kindString,
	"style":              kindString,
}

// sanitizeProfile walks the fragment's own keys rather than a fixed schema,
// so unrecognized keys are ignored without a warning. A recognized key
// whose value fails its normalizer is omitted entirely and leaves one
// warning; it never appears with a null or default placeholder.
func sanitizeProfile(raw any) (ProfileFragment, []string) {
	out := ProfileFragment{}
	var warnings []string

	frag, ok := raw.(map[string]any)
	if !ok {
		return out, warnings
	}

	// Sorted key walk keeps the warning order deterministic.
	keys := make([]string, 0, len(frag))
	for key := range frag {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		kind, recognized := profileFields[key]
		if !recognized {
			continue
		}
		value := frag[key]
		if !fieldPresent(value) {
			continue
		}

		switch kind {
		case kindString:
			if s, ok := NormalizeString(value); ok {
				out[key] = s
				continue
			}
		case kindDate:
			if s, ok := NormalizeDate(value); ok {
				out[key] = s
				continue
			}
		case kindTime:
			if s, ok := NormalizeTime(value); ok {
				out[key] = s
				continue
			}
		case kindCurrency:
			if n, ok := NormalizeCurrency(value); ok {
				out[key] = n
				continue
			}
		case kindCount:
			if n, ok := NormalizeCount(value); ok {
				out[key] = n
				continue
			}
		}

		warnings = append(warnings, fmt.Sprintf(
			"profile field %q: could not use value %v", key, value))
	}

	return out, warnings
}
