// Package access is the read model over the login audit trail. Rows are
// appended by the authentication flow and only ever read here.
package access

import "time"

// Access is one audit row as served to callers: the event fields plus a
// minimal reference to the user, never the full record.
type Access struct {
	ID         int64     `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	Failed     bool      `json:"failed"`
	User       UserRef   `json:"user"`
}

type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SortKey is the closed set of orderings the audit query accepts.
type SortKey string

const (
	SortDatetimeAsc  SortKey = "datetime_asc"
	SortDatetimeDesc SortKey = "datetime_desc"
	SortUserAsc      SortKey = "user_asc"
	SortUserDesc     SortKey = "user_desc"
)

// ParseSortKey maps caller input onto the whitelist. Unrecognized or absent
// input falls back to newest-first rather than failing the query.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortDatetimeAsc, SortDatetimeDesc, SortUserAsc, SortUserDesc:
		return SortKey(s)
	default:
		return SortDatetimeDesc
	}
}

// Filter is the normalized query handed to the repository: date bounds are
// both set or both nil, Failed is nil when no outcome filter applies.
type Filter struct {
	From   *time.Time
	To     *time.Time
	Failed *bool
	Sort   SortKey
}
