package sanitize

import "fmt"

// sanitizeVendors validates each raw vendor item independently. A rejected
// item never stops the walk; each rejection or adjustment leaves exactly
// one warning. A vendor with a resolvable type and a non-empty name is
// kept even when nothing else survives: the identity key alone is enough
// for downstream reconciliation.
func sanitizeVendors(raw any) ([]Vendor, []string) {
	var out []Vendor
	var warnings []string

	items, ok := raw.([]any)
	if !ok {
		return out, warnings
	}

	seen := map[string]struct{}{}

	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"vendor entry %d: not a structured entry, skipped", i+1))
			continue
		}

		name, ok := NormalizeString(m["name"])
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"vendor entry %d: missing a name, skipped", i+1))
			continue
		}

		rawType, _ := m["type"].(string)
		vtype, ok := CanonicalVendorType(rawType)
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"vendor %q: unrecognized vendor type %v, skipped", name, m["type"]))
			continue
		}

		v := Vendor{Type: vtype, Name: name}
		if _, dup := seen[v.Key()]; dup {
			warnings = append(warnings, fmt.Sprintf(
				"vendor %q (%s): duplicate entry, kept the first one", name, vtype))
			continue
		}
		seen[v.Key()] = struct{}{}

		if s, ok := NormalizeString(m["contact_name"]); ok {
			v.ContactName = s
		}
		if raw, present := m["email"]; present && fieldPresent(raw) {
			if s, ok := NormalizeEmail(raw); ok {
				v.Email = s
			} else {
				warnings = append(warnings, fmt.Sprintf(
					"vendor %q: invalid email %v, skipped that field", name, raw))
			}
		}
		if raw, present := m["phone"]; present && fieldPresent(raw) {
			if s, ok := NormalizePhone(raw); ok {
				v.Phone = s
			} else {
				warnings = append(warnings, fmt.Sprintf(
					"vendor %q: invalid phone number %v, skipped that field", name, raw))
			}
		}

		v.TotalCost = vendorAmount(m, "total_cost", name, &warnings)
		v.DepositAmount = vendorAmount(m, "deposit_amount", name, &warnings)
		v.BalanceDue = vendorAmount(m, "balance_due", name, &warnings)

		// Deposit can never exceed total cost; clamping is an adjustment,
		// not a rejection, so the data stays.
		if v.TotalCost != nil && v.DepositAmount != nil && *v.DepositAmount > *v.TotalCost {
			warnings = append(warnings, fmt.Sprintf(
				"vendor %q: deposit %d was larger than total cost %d, reduced to match",
				name, *v.DepositAmount, *v.TotalCost))
			clamped := *v.TotalCost
			v.DepositAmount = &clamped
		}

		if raw, present := m["deposit_paid"]; present && fieldPresent(raw) {
			if value, known := NormalizeBool(raw); known {
				v.DepositPaid = &value
			} else {
				warnings = append(warnings, fmt.Sprintf(
					"vendor %q: invalid deposit_paid value %v, skipped that field", name, raw))
			}
		}
		if raw, present := m["contract_signed"]; present && fieldPresent(raw) {
			if value, known := NormalizeBool(raw); known {
				v.ContractSigned = &value
			} else {
				warnings = append(warnings, fmt.Sprintf(
					"vendor %q: invalid contract_signed value %v, skipped that field", name, raw))
			}
		}

		v.DepositDate = vendorDate(m, "deposit_date", name, &warnings)
		v.FinalPaymentDate = vendorDate(m, "final_payment_date", name, &warnings)
		v.ContractDate = vendorDate(m, "contract_date", name, &warnings)
		v.ServiceDate = vendorDate(m, "service_date", name, &warnings)

		if raw, present := m["status"]; present && fieldPresent(raw) {
			rawStatus, _ := raw.(string)
			if status, ok := CanonicalVendorStatus(rawStatus); ok {
				v.Status = status
			} else {
				warnings = append(warnings, fmt.Sprintf(
					"vendor %q: unknown status %v, left unset", name, raw))
			}
		}

		if s, ok := NormalizeString(m["notes"]); ok {
			v.Notes = s
		}

		out = append(out, v)
	}

	return out, warnings
}

func vendorAmount(m map[string]any, field, name string, warnings *[]string) *int64 {
	raw, present := m[field]
	if !present || !fieldPresent(raw) {
		return nil
	}
	n, ok := NormalizeCurrency(raw)
	if !ok {
		*warnings = append(*warnings, fmt.Sprintf(
			"vendor %q: invalid %s value %v, skipped that field", name, field, raw))
		return nil
	}
	return &n
}

func vendorDate(m map[string]any, field, name string, warnings *[]string) string {
	raw, present := m[field]
	if !present || !fieldPresent(raw) {
		return ""
	}
	s, ok := NormalizeDate(raw)
	if !ok {
		*warnings = append(*warnings, fmt.Sprintf(
			"vendor %q: invalid %s value %v, skipped that field", name, field, raw))
		return ""
	}
	return s
}
