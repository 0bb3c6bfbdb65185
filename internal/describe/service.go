package describe

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/user-management/internal"
)

// Lookuper is the remote side of the service; satisfied by SPARQLClient.
type Lookuper interface {
	Lookup(ctx context.Context, term string) (string, error)
}

type Service struct {
	client Lookuper
	cache  *DiskCache
	source string
	logger *slog.Logger
}

func NewService(client Lookuper, cache *DiskCache, source string, logger *slog.Logger) *Service {
	return &Service{client: client, cache: cache, source: source, logger: logger}
}

// Describe returns the abstract for a term, serving from the disk cache when
// fresh and falling back to the remote endpoint otherwise.
func (s *Service) Describe(ctx context.Context, term string) (*Description, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, internal.NewValidationFieldError("term", "term is required", internal.ErrCodeValidationFailed)
	}

	if cached, ok := s.cache.Get(term); ok {
		s.logger.Debug("describe served from cache", "term", term)
		return cached, nil
	}

	abstract, err := s.client.Lookup(ctx, term)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewExternalError("description lookup failed", err)
	}

	d := &Description{
		Term:      term,
		Abstract:  abstract,
		Source:    s.source,
		FetchedAt: time.Now(),
	}
	if err := s.cache.Put(d); err != nil {
		// A cache write failure only costs the next lookup.
		s.logger.Warn("failed to cache description", "term", term, "error", err)
	}
	return d, nil
}
