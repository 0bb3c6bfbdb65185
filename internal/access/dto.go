package access

import "time"

// Query is the raw request shape. Zero values mean "not supplied"; the
// service normalizes it into a Filter.
type Query struct {
	DateFrom      time.Time
	DateTo        time.Time
	FailedOnly    bool
	SucceededOnly bool
	Sort          string
}

// Normalize applies the query's defaulting rules. The date bounds are
// both-or-neither: if either is missing the range filter is dropped entirely.
// The two outcome booleans tie-break to no filter when they agree (both set
// or both unset), so a caller asking for "failed and succeeded" gets
// everything rather than nothing.
func (q Query) Normalize() Filter {
	f := Filter{Sort: ParseSortKey(q.Sort)}

	if !q.DateFrom.IsZero() && !q.DateTo.IsZero() {
		from, to := q.DateFrom, q.DateTo
		f.From, f.To = &from, &to
	}

	if q.FailedOnly != q.SucceededOnly {
		failed := q.FailedOnly
		f.Failed = &failed
	}

	return f
}
