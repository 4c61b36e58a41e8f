package sales

import "strings"

// NormalizeKey folds an identifier-like value so that equivalent values
// compare equal regardless of source formatting: surrounding whitespace is
// trimmed and the result is lowercased.
func NormalizeKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// NormalizeRow returns a copy of r with the four identifier-like fields
// (Salesperson, RegionManager, Region, StoreLocation) normalized. All other
// fields pass through unchanged. It applies uniformly whether the row comes
// from a spreadsheet import or from a live submission, so stored values are
// always comparably cased. Normalizing an already-normalized row is a no-op.
//
// A required identifier field that is blank after trimming yields a
// *ValidationError; callers must supply a default or drop the row.
func NormalizeRow(r Row) (Row, error) {
	r.Salesperson = NormalizeKey(r.Salesperson)
	r.RegionManager = NormalizeKey(r.RegionManager)
	r.Region = NormalizeKey(r.Region)
	r.StoreLocation = NormalizeKey(r.StoreLocation)

	for _, f := range []struct {
		name, value string
	}{
		{"salesperson", r.Salesperson},
		{"region_manager", r.RegionManager},
		{"region", r.Region},
		{"store_location", r.StoreLocation},
	} {
		if f.value == "" {
			return Row{}, &ValidationError{Field: f.name, Reason: "must not be blank"}
		}
	}
	return r, nil
}
