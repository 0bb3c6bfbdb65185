package access

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/user-management/internal/transport"
	"github.com/frahmantamala/user-management/pkg/logger"
)

type ServiceAPI interface {
	List(q Query) ([]*Access, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetAccesses handles GET /accesses
func (h *Handler) GetAccesses(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.Service.List(q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rows)
}

func queryFromRequest(r *http.Request) (Query, error) {
	var q Query
	params := r.URL.Query()

	var err error
	if q.DateFrom, err = parseDate(params.Get("date_from")); err != nil {
		return q, err
	}
	if q.DateTo, err = parseDate(params.Get("date_to")); err != nil {
		return q, err
	}

	q.FailedOnly = params.Get("failed_only") == "true"
	q.SucceededOnly = params.Get("succeeded_only") == "true"
	q.Sort = params.Get("sort")
	return q, nil
}

// parseDate accepts RFC 3339 or a bare date. Empty input stays zero so the
// both-or-neither rule can apply downstream.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
