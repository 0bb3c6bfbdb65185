package auth

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/transport"
	"github.com/frahmantamala/user-management/pkg/logger"
)

// ServiceAPI is the service surface the HTTP layer consumes.
type ServiceAPI interface {
	Login(dto LoginDTO, client ClientInfo) (*LoginResult, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	UserAccess(userID int64) (*UserAccess, error)
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

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Login(dto, clientInfo(r))
	if err != nil {
		if _, ok := err.(ValidationError); ok {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	// Both soft failures collapse to the same response so callers cannot
	// probe which emails have accounts.
	switch result.Outcome {
	case OutcomeUserNotFound, OutcomeWrongPassword:
		h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	profiles := make([]string, 0, len(result.User.Profiles))
	for _, p := range result.User.Profiles {
		profiles = append(profiles, p.Name)
	}

	h.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken:    result.Tokens.AccessToken,
		RefreshToken:   result.Tokens.RefreshToken,
		UserName:       result.User.Name,
		PrimaryProfile: result.User.PrimaryProfile,
		Profiles:       profiles,
		Resources:      result.User.Resources,
		User:           result.User,
	})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.Logger.Error("token refresh failed", "error", err)

		switch err {
		case ErrInvalidToken, ErrTokenExpired:
			h.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		default:
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware validates the bearer token and attaches the authenticated
// identity, with its resolved resources, to the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Error("token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		uid, err := strconv.ParseInt(claims.UserID, 10, 64)
		if err != nil {
			h.Logger.Warn("failed to parse user id from token claims", "value", claims.UserID, "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		access, err := h.Service.UserAccess(uid)
		if err != nil {
			h.Logger.Error("failed to load user access", "user_id", uid, "error", err)
			h.WriteError(w, http.StatusUnauthorized, "user not found")
			return
		}

		ctx := internal.ContextWithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ContextWithUser(ctx, access)))
	})
}

// clientInfo extracts the caller's address for the audit trail. Proxy headers
// win over the peer address: the first X-Forwarded-For entry, then X-Real-IP.
func clientInfo(r *http.Request) ClientInfo {
	info := ClientInfo{UserAgent: r.UserAgent()}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		info.IP = strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
		return info
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		info.IP = strings.TrimSpace(real)
		return info
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		info.IP = r.RemoteAddr
		return info
	}
	info.IP = host
	return info
}
