package sanitize

import "strings"

// Canonicalization tables. These are immutable, data-only lookups: there is
// no behavior attached to a category, only membership. A raw value is
// lowercased and trimmed, then either resolves to exactly one canonical
// token or rejects (ok=false, never an error).

// vendorTypes is the closed set of canonical vendor types. Raw values are
// checked here first, then against vendorTypeAliases.
var vendorTypes = map[string]struct{}{
	"venue":          {},
	"caterer":        {},
	"photographer":   {},
	"videographer":   {},
	"florist":        {},
	"dj":             {},
	"band":           {},
	"officiant":      {},
	"planner":        {},
	"baker":          {},
	"hair_makeup":    {},
	"attire":         {},
	"jeweler":        {},
	"transportation": {},
	"rentals":        {},
	"stationery":     {},
	"other":          {},
}

var vendorTypeAliases = map[string]string{
	"photo":           "photographer",
	"photos":          "photographer",
	"photography":     "photographer",
	"video":           "videographer",
	"videography":     "videographer",
	"flowers":         "florist",
	"floral":          "florist",
	"florals":         "florist",
	"catering":        "caterer",
	"food":            "caterer",
	"music":           "dj",
	"deejay":          "dj",
	"disc jockey":     "dj",
	"cake":            "baker",
	"bakery":          "baker",
	"desserts":        "baker",
	"hair":            "hair_makeup",
	"makeup":          "hair_makeup",
	"hair and makeup": "hair_makeup",
	"beauty":          "hair_makeup",
	"dress":           "attire",
	"suit":            "attire",
	"tux":             "attire",
	"jewelry":         "jeweler",
	"rings":           "jeweler",
	"transport":       "transportation",
	"limo":            "transportation",
	"shuttle":         "transportation",
	"rental":          "rentals",
	"invitations":     "stationery",
	"invites":         "stationery",
	"paper goods":     "stationery",
	"coordinator":     "planner",
	"wedding planner": "planner",
	"minister":        "officiant",
	"celebrant":       "officiant",
	"location":        "venue",
	"reception venue": "venue",
}

// budgetCategories maps lowercased synonyms to canonical budget categories.
// Every canonical token maps to itself so canonicalization is idempotent.
var budgetCategories = map[string]string{
	"venue":           "venue",
	"reception venue": "venue",
	"ceremony site":   "venue",
	"catering":        "catering",
	"caterer":         "catering",
	"food":            "catering",
	"bar":             "catering",
	"drinks":          "catering",
	"photography":     "photography",
	"photo":           "photography",
	"photographer":    "photography",
	"videography":     "videography",
	"video":           "videography",
	"videographer":    "videography",
	"flowers":         "flowers",
	"floral":          "flowers",
	"florist":         "flowers",
	"bouquets":        "flowers",
	"music":           "music",
	"dj":              "music",
	"band":            "music",
	"entertainment":   "music",
	"attire":          "attire",
	"dress":           "attire",
	"wedding dress":   "attire",
	"suit":            "attire",
	"tux":             "attire",
	"beauty":          "beauty",
	"hair":            "beauty",
	"makeup":          "beauty",
	"hair and makeup": "beauty",
	"stationery":      "stationery",
	"invitations":     "stationery",
	"invites":         "stationery",
	"transportation":  "transportation",
	"transport":       "transportation",
	"limo":            "transportation",
	"rentals":         "rentals",
	"rental":          "rentals",
	"cake":            "cake",
	"dessert":         "cake",
	"bakery":          "cake",
	"favors":          "favors",
	"guest gifts":     "favors",
	"decor":           "decor",
	"decorations":     "decor",
	"lighting":        "decor",
	"officiant":       "officiant",
	"planner":         "planner",
	"coordinator":     "planner",
	"jewelry":         "jewelry",
	"rings":           "jewelry",
	"honeymoon":       "honeymoon",
	"other":           "other",
	"misc":            "other",
	"miscellaneous":   "other",
}

// taskCategories maps lowercased synonyms to canonical task categories.
var taskCategories = map[string]string{
	"planning":         "planning",
	"logistics":        "planning",
	"admin":            "planning",
	"venue":            "venue",
	"location":         "venue",
	"vendors":          "vendors",
	"vendor":           "vendors",
	"booking":          "vendors",
	"attire":           "attire",
	"dress":            "attire",
	"outfits":          "attire",
	"guests":           "guests",
	"guest list":       "guests",
	"invitations":      "guests",
	"rsvps":            "guests",
	"budget":           "budget",
	"payments":         "budget",
	"finance":          "budget",
	"ceremony":         "ceremony",
	"reception":        "reception",
	"beauty":           "beauty",
	"hair and makeup":  "beauty",
	"honeymoon":        "honeymoon",
	"travel":           "honeymoon",
	"legal":            "legal",
	"paperwork":        "legal",
	"marriage license": "legal",
	"other":            "other",
	"misc":             "other",
}

// Flat closed sets with no aliasing: a raw value must match a canonical
// token exactly after lowercasing and trimming.
var (
	vendorStatuses = map[string]struct{}{
		"researching":  {},
		"contacted":    {},
		"quoted":       {},
		"booked":       {},
		"deposit_paid": {},
		"paid_in_full": {},
		"completed":    {},
		"cancelled":    {},
	}
	taskStatuses = map[string]struct{}{
		"pending":     {},
		"in_progress": {},
		"completed":   {},
		"cancelled":   {},
	}
	taskPriorities = map[string]struct{}{
		"low":    {},
		"medium": {},
		"high":   {},
	}
)

func canonKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// CanonicalVendorType resolves a raw vendor type against the canonical set
// first, then the alias table.
func CanonicalVendorType(raw string) (string, bool) {
	key := canonKey(raw)
	if _, ok := vendorTypes[key]; ok {
		return key, true
	}
	if canonical, ok := vendorTypeAliases[key]; ok {
		return canonical, true
	}
	return "", false
}

// CanonicalBudgetCategory resolves a raw budget category.
func CanonicalBudgetCategory(raw string) (string, bool) {
	canonical, ok := budgetCategories[canonKey(raw)]
	return canonical, ok
}

// CanonicalTaskCategory resolves a raw task category.
func CanonicalTaskCategory(raw string) (string, bool) {
	canonical, ok := taskCategories[canonKey(raw)]
	return canonical, ok
}

// CanonicalVendorStatus resolves a raw vendor status against the flat set.
func CanonicalVendorStatus(raw string) (string, bool) {
	key := canonKey(raw)
	_, ok := vendorStatuses[key]
	if !ok {
		return "", false
	}
	return key, true
}

// CanonicalTaskStatus resolves a raw task status against the flat set.
func CanonicalTaskStatus(raw string) (string, bool) {
	key := canonKey(raw)
	_, ok := taskStatuses[key]
	if !ok {
		return "", false
	}
	return key, true
}

// CanonicalTaskPriority resolves a raw task priority against the flat set.
func CanonicalTaskPriority(raw string) (string, bool) {
	key := canonKey(raw)
	_, ok := taskPriorities[key]
	if !ok {
		return "", false
	}
	return key, true
}
