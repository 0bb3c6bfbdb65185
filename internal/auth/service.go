package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/user-management/internal"
	accessDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/access"
	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
	"github.com/frahmantamala/user-management/internal/core/events"
)

// Repository is the entity-store surface the authentication flow depends on.
// Read paths report absence as a nil result, not an error.
type Repository interface {
	// GetByEmail loads a user by exact email match with profiles and each
	// profile's permissions eagerly loaded.
	GetByEmail(email string) (*userDatamodel.User, error)
	// GetByID loads a user by id with the same eager relations.
	GetByID(id int64) (*userDatamodel.User, error)
	// RecordAccess appends one immutable audit row.
	RecordAccess(ev *accessDatamodel.Event) error

	PermissionSource
}

// Service runs the login state machine: credential validation, audit append,
// permission resolution and token issuance.
type Service struct {
	repo           Repository
	resolver       *Resolver
	tokenGenerator TokenGenerator
	bus            *events.EventBus
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo Repository, tokenGen TokenGenerator, bus *events.EventBus, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:           repo,
		resolver:       NewResolver(repo),
		tokenGenerator: tokenGen,
		bus:            bus,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Login authenticates the supplied credentials. The three outcomes are
// carried in the result, never as errors; errors mean the flow itself could
// not run (storage failure). Exactly one audit row is appended when the email
// resolves to a user, regardless of the password outcome; none otherwise.
// The plaintext password is never stored, returned or logged.
func (s *Service) Login(dto LoginDTO, client ClientInfo) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up user", err)
	}

	if u == nil {
		s.logger.Warn("login denied: no account for email", "ip", client.IP)
		s.publish(events.NewLoginDenied(dto.Email, client.IP))
		return &LoginResult{Outcome: OutcomeUserNotFound}, nil
	}

	failed := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)) != nil

	ev := &accessDatamodel.Event{
		UserID:     u.ID,
		OccurredAt: time.Now(),
		IP:         client.IP,
		UserAgent:  client.UserAgent,
		Failed:     failed,
	}
	if err := s.repo.RecordAccess(ev); err != nil {
		return nil, internal.NewInternalError("failed to record access event", err)
	}

	if failed {
		s.logger.Warn("login failed: wrong password", "user_id", u.ID, "ip", client.IP)
		s.publish(events.NewLoginFailed(u.ID, u.Email, client.IP))
		return &LoginResult{Outcome: OutcomeWrongPassword}, nil
	}

	resources, err := s.resolver.Resolve(u)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve permissions", err)
	}

	userID := strconv.FormatInt(u.ID, 10)
	accessToken, err := s.tokenGenerator.GenerateAccessToken(userID, u.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate access token", err)
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(userID, u.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate refresh token", err)
	}

	s.logger.Info("login succeeded", "user_id", u.ID)
	s.publish(events.NewLoginSucceeded(u.ID, u.Email, client.IP))

	return &LoginResult{
		Outcome: OutcomeSuccess,
		Tokens:  AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken},
		User:    s.authenticatedUser(u, resources),
	}, nil
}

// RefreshTokens validates a refresh token and issues a new pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(claims.UserID, claims.Email)
	if err != nil {
		return AuthTokens{}, err
	}
	newRefreshToken, err := s.tokenGenerator.GenerateRefreshToken(claims.UserID, claims.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// UserAccess loads the authenticated identity for subsequent-request
// authorization: the user plus its resolved effective resources.
func (s *Service) UserAccess(userID int64) (*UserAccess, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}

	resources, err := s.resolver.Resolve(u)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve permissions", err)
	}

	return &UserAccess{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Resources: resources,
	}, nil
}

// HashPassword creates a bcrypt hash of the password. The user service uses
// this when saving credentials.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) authenticatedUser(u *userDatamodel.User, resources []string) *AuthenticatedUser {
	primary := ""
	if len(u.Profiles) > 0 {
		primary = u.Profiles[0].Name
	}
	return &AuthenticatedUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		PrimaryProfile: primary,
		Profiles:       profileViews(u),
		Resources:      resources,
	}
}

func (s *Service) publish(ev events.BaseEvent) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(context.Background(), ev)
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(userID string, email string) (string, error) {
	return j.signed(userID, email, j.AccessTokenTTL, j.AccessTokenSecret)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(userID string, email string) (string, error) {
	return j.signed(userID, email, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) signed(userID, email string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		// Refresh tokens outlive the access TTL; pick the secret by the
		// remaining lifetime.
		if claims, ok := token.Claims.(*Claims); ok && claims.ExpiresAt != nil {
			if time.Until(claims.ExpiresAt.Time) > j.AccessTokenTTL {
				return j.RefreshTokenSecret, nil
			}
		}
		return j.AccessTokenSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
