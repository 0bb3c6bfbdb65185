package access

import (
	"log/slog"

	"github.com/frahmantamala/user-management/internal"
)

// Repository executes the normalized filter against the store.
type Repository interface {
	List(f Filter) ([]*Access, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns audit rows matching the query after normalization.
func (s *Service) List(q Query) ([]*Access, error) {
	f := q.Normalize()

	rows, err := s.repo.List(f)
	if err != nil {
		return nil, internal.NewInternalError("failed to query access events", err)
	}

	s.logger.Debug("access query served", "rows", len(rows), "sort", string(f.Sort))
	return rows, nil
}
