package sanitize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Primitive normalizers. Each takes one untrusted value and returns either
// a validated typed value or ok=false. None of them ever panic on bad input.

var (
	dateRE       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	time24RE     = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?$`)
	time12RE     = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)$`)
	embedded24RE = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	bareHourRE   = regexp.MustCompile(`\b(1[0-2]|[1-9])\b`)
	emailRE      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigitRE   = regexp.MustCompile(`[^0-9]`)
	nonAmountRE  = regexp.MustCompile(`[^0-9.\-]`)
)

// NormalizeString accepts only text values, trims them, and rejects the
// result if nothing is left.
func NormalizeString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// NormalizeDate accepts a strict YYYY-MM-DD string and round-trips it
// through the calendar so impossible dates (Feb 31) are rejected, not
// normalized away.
func NormalizeDate(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if !dateRE.MatchString(s) {
		return "", false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// NormalizeCurrency converts a monetary value to a non-negative integer.
// Strings are stripped of everything but digits, '.' and '-' before
// parsing, so "$25,000" becomes 25000. Negative, non-finite, and
// unparsable values are rejected.
func NormalizeCurrency(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return roundNonNegative(t)
	case int:
		if t < 0 || int64(t) > maxAmount {
			return 0, false
		}
		return int64(t), true
	case int64:
		if t < 0 || t > maxAmount {
			return 0, false
		}
		return t, true
	case string:
		cleaned := nonAmountRE.ReplaceAllString(t, "")
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return roundNonNegative(f)
	default:
		return 0, false
	}
}

// maxAmount bounds monetary and count values. Anything above it is
// rejected rather than converted: float64-to-int64 conversion of an
// out-of-range value is undefined and overflows to a negative number.
const maxAmount = int64(1) << 53

func roundNonNegative(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > float64(maxAmount) {
		return 0, false
	}
	return int64(math.Round(f)), true
}

// NormalizeCount converts a count-like value to a non-negative integer.
// Unlike NormalizeCurrency, strings are stripped to digits only, so
// separators and units vanish but fractional counts never round.
func NormalizeCount(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 || t > float64(maxAmount) || t != math.Trunc(t) {
			return 0, false
		}
		return int64(t), true
	case int:
		if t < 0 || int64(t) > maxAmount {
			return 0, false
		}
		return int64(t), true
	case int64:
		if t < 0 || t > maxAmount {
			return 0, false
		}
		return t, true
	case string:
		digits := nonDigitRE.ReplaceAllString(t, "")
		if digits == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil || n > maxAmount {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// NormalizeBool accepts native booleans and a closed vocabulary of truthy
// and falsy tokens. Anything else returns known=false, which is distinct
// from false: an unrecognized value must not silently flip a flag off.
func NormalizeBool(v any) (value, known bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "paid", "completed":
			return true, true
		case "false", "no", "n", "unpaid", "not paid":
			return false, true
		}
	}
	return false, false
}

// NormalizeTime converts a free-text time expression to 24-hour HH:MM.
// Patterns are tried in priority order and the first match wins:
//
//  1. literal "noon" / "midnight"
//  2. a direct 24-hour H:MM or HH:MM[:SS] value
//  3. 12-hour with an am/pm modifier (12am -> 00, 12pm -> 12)
//  4. an embedded 24-hour pattern anywhere in the string
//  5. a bare hour token 1-12 anywhere in the string, minutes default to 00
func NormalizeTime(v any) (string, bool) {
	raw, ok := v.(string)
	if !ok {
		return "", false
	}
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	switch s {
	case "noon":
		return "12:00", true
	case "midnight":
		return "00:00", true
	}

	if m := time24RE.FindStringSubmatch(s); m != nil {
		if out, ok := clock24(m[1], m[2]); ok {
			return out, true
		}
	}

	if m := time12RE.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour >= 1 && hour <= 12 && minute <= 59 {
			pm := strings.HasPrefix(m[3], "p")
			if hour == 12 {
				hour = 0
			}
			if pm {
				hour += 12
			}
			return fmt.Sprintf("%02d:%02d", hour, minute), true
		}
	}

	if m := embedded24RE.FindStringSubmatch(s); m != nil {
		if out, ok := clock24(m[1], m[2]); ok {
			return out, true
		}
	}

	if m := bareHourRE.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:00", hour), true
	}

	return "", false
}

func clock24(hh, mm string) (string, bool) {
	hour, _ := strconv.Atoi(hh)
	minute, _ := strconv.Atoi(mm)
	if hour > 23 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// NormalizeEmail validates a contact email address.
func NormalizeEmail(v any) (string, bool) {
	s, ok := NormalizeString(v)
	if !ok || !emailRE.MatchString(s) {
		return "", false
	}
	return s, true
}

// NormalizePhone validates a phone number by digit count (7-15), keeping
// the caller's formatting intact.
func NormalizePhone(v any) (string, bool) {
	s, ok := NormalizeString(v)
	if !ok {
		return "", false
	}
	digits := nonDigitRE.ReplaceAllString(s, "")
	if len(digits) < 7 || len(digits) > 15 {
		return "", false
	}
	return s, true
}
