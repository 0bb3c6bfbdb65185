package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

// Outcome is the terminal state of one login attempt. All three are soft
// results carried in the normal return shape, never raised as errors, so the
// caller can tell "no account" from "bad credential".
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeUserNotFound  Outcome = "user_not_found"
	OutcomeWrongPassword Outcome = "wrong_password"
)

// ClientInfo carries the transport-level facts recorded on the audit trail.
// The HTTP layer extracts it; the service never touches the request.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// LoginResult is the full product of one authentication attempt.
type LoginResult struct {
	Outcome Outcome
	Tokens  AuthTokens
	User    *AuthenticatedUser
}

// AuthenticatedUser is the public view packaged for token issuance: the
// display name, the primary profile (first membership), the full profile
// list with nested permissions, and the resolved effective resources.
type AuthenticatedUser struct {
	ID             int64              `json:"id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	PrimaryProfile string             `json:"primary_profile"`
	Profiles       []ProfileView      `json:"profiles"`
	Resources      []string           `json:"resources"`
}

type ProfileView struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Permissions []PermissionView `json:"permissions"`
}

type PermissionView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// UserAccess is the authenticated identity attached to request contexts by
// the auth middleware: just enough to authorize subsequent operations.
type UserAccess struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Resources []string `json:"resources"`
}

// HasResource reports whether the effective resource set covers resource.
func (u *UserAccess) HasResource(resource string) bool {
	for _, r := range u.Resources {
		if r == resource {
			return true
		}
	}
	return false
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates session tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID string, email string) (token string, err error)
	GenerateRefreshToken(userID string, email string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type contextKey string

const ContextUserKey contextKey = "auth_user"

func ContextWithUser(ctx context.Context, u *UserAccess) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

func UserFromContext(ctx context.Context) (*UserAccess, bool) {
	u, ok := ctx.Value(ContextUserKey).(*UserAccess)
	return u, ok
}

// profileViews maps eager-loaded datamodel profiles to views.
func profileViews(u *userDatamodel.User) []ProfileView {
	views := make([]ProfileView, 0, len(u.Profiles))
	for _, p := range u.Profiles {
		view := ProfileView{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
		}
		for _, perm := range p.Permissions {
			view.Permissions = append(view.Permissions, PermissionView{
				ID:       perm.ID,
				Name:     perm.Name,
				Resource: perm.Resource,
				Action:   string(perm.Action),
			})
		}
		views = append(views, view)
	}
	return views
}
