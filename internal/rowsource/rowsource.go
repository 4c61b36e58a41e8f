// Package rowsource abstracts the external provider of pre-import sales
// rows. The sync engine consumes a Source once per session bootstrap; the
// core never touches file mechanics directly.
package rowsource

import "sales_desk/internal/sales"

// Source yields every available raw row. Implementations do not normalize
// or derive anything; that is the sync engine's job.
type Source interface {
	Rows() ([]sales.Row, error)
}

// Static is a fixed in-memory Source, used in tests and for seeding.
type Static struct {
	rows []sales.Row
}

var _ Source = (*Static)(nil)

func NewStatic(rows ...sales.Row) *Static {
	return &Static{rows: rows}
}

func (s *Static) Rows() ([]sales.Row, error) {
	out := make([]sales.Row, len(s.rows))
	copy(out, s.rows)
	return out, nil
}
