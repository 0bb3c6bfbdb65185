package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/user-management/internal/access"
)

type AccessRepository struct {
	db *sqlx.DB
}

func NewAccessRepository(db *sqlx.DB) access.Repository {
	return &AccessRepository{db: db}
}

type accessRow struct {
	ID         int64     `db:"id"`
	OccurredAt time.Time `db:"occurred_at"`
	IP         string    `db:"ip"`
	UserAgent  string    `db:"user_agent"`
	Failed     bool      `db:"failed"`
	UserID     int64     `db:"user_id"`
	UserName   string    `db:"user_name"`
}

var orderBy = map[access.SortKey]string{
	access.SortDatetimeAsc:  "ae.occurred_at ASC",
	access.SortDatetimeDesc: "ae.occurred_at DESC",
	access.SortUserAsc:      "u.name ASC, ae.occurred_at DESC",
	access.SortUserDesc:     "u.name DESC, ae.occurred_at DESC",
}

func (r *AccessRepository) List(f access.Filter) ([]*access.Access, error) {
	var (
		conds []string
		args  []interface{}
	)

	if f.From != nil && f.To != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("ae.occurred_at >= $%d", len(args)))
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("ae.occurred_at <= $%d", len(args)))
	}
	if f.Failed != nil {
		args = append(args, *f.Failed)
		conds = append(conds, fmt.Sprintf("ae.failed = $%d", len(args)))
	}

	query := `SELECT ae.id, ae.occurred_at, ae.ip, ae.user_agent, ae.failed,
       u.id AS user_id, u.name AS user_name
FROM access_events ae
JOIN users u ON u.id = ae.user_id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	order, ok := orderBy[f.Sort]
	if !ok {
		order = orderBy[access.SortDatetimeDesc]
	}
	query += " ORDER BY " + order

	var rows []accessRow
	if err := r.db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("access query: %w", err)
	}

	out := make([]*access.Access, 0, len(rows))
	for _, row := range rows {
		out = append(out, &access.Access{
			ID:         row.ID,
			OccurredAt: row.OccurredAt,
			IP:         row.IP,
			UserAgent:  row.UserAgent,
			Failed:     row.Failed,
			User:       access.UserRef{ID: row.UserID, Name: row.UserName},
		})
	}
	return out, nil
}
