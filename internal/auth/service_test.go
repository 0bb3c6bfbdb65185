package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	accessDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/access"
	permissionDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/permission"
	profileDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/profile"
	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

var testPermissions = []permissionDatamodel.Permission{
	{ID: 1, Name: "Read users", Resource: "users:read", Action: permissionDatamodel.ActionRead},
	{ID: 2, Name: "Delete users", Resource: "users:delete", Action: permissionDatamodel.ActionDelete},
	{ID: 3, Name: "Read accesses", Resource: "accesses:read", Action: permissionDatamodel.ActionRead},
	{ID: 4, Name: "Update profiles", Resource: "profiles:update", Action: permissionDatamodel.ActionUpdate},
}

// Mock auth repository for testing
type mockAuthRepository struct {
	usersByEmail  map[string]*userDatamodel.User
	usersByID     map[int64]*userDatamodel.User
	recorded      []*accessDatamodel.Event
	returnError   bool
	errorToReturn error
	recordError   error
}

func newMockAuthRepository() *mockAuthRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost)

	adminProfile := profileDatamodel.Profile{
		ID:   profileDatamodel.AdminProfileID,
		Name: "Administrators",
		// Admin membership is a bypass, so its own grants stay thin on purpose.
		Permissions: []permissionDatamodel.Permission{testPermissions[0]},
	}
	viewerProfile := profileDatamodel.Profile{
		ID:          2,
		Name:        "Viewers",
		Permissions: []permissionDatamodel.Permission{testPermissions[0], testPermissions[2]},
	}
	auditorProfile := profileDatamodel.Profile{
		ID:          3,
		Name:        "Auditors",
		Permissions: []permissionDatamodel.Permission{testPermissions[2]},
	}

	users := []*userDatamodel.User{
		{ID: 1, Name: "Admin", Email: "admin@example.com", PasswordHash: string(hashedPassword), Status: userDatamodel.StatusActive,
			Profiles: []profileDatamodel.Profile{adminProfile}},
		{ID: 2, Name: "Viewer", Email: "viewer@example.com", PasswordHash: string(hashedPassword), Status: userDatamodel.StatusActive,
			Profiles: []profileDatamodel.Profile{viewerProfile, auditorProfile}},
		{ID: 3, Name: "Nobody", Email: "nobody@example.com", PasswordHash: string(hashedPassword), Status: userDatamodel.StatusActive},
	}

	m := &mockAuthRepository{
		usersByEmail: map[string]*userDatamodel.User{},
		usersByID:    map[int64]*userDatamodel.User{},
	}
	for _, u := range users {
		m.usersByEmail[u.Email] = u
		m.usersByID[u.ID] = u
	}
	return m
}

func (m *mockAuthRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.usersByEmail[email], nil
}

func (m *mockAuthRepository) GetByID(id int64) (*userDatamodel.User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.usersByID[id], nil
}

func (m *mockAuthRepository) AllPermissions() ([]permissionDatamodel.Permission, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return testPermissions, nil
}

func (m *mockAuthRepository) RecordAccess(ev *accessDatamodel.Event) error {
	if m.recordError != nil {
		return m.recordError
	}
	m.recorded = append(m.recorded, ev)
	return nil
}

func (m *mockAuthRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service       *Service
		mockRepo      *mockAuthRepository
		tokenGen      *JWTTokenGenerator
		client        ClientInfo
		accessSecret  string        = "test-access-secret"
		refreshSecret string        = "test-refresh-secret"
		accessTTL     time.Duration = 15 * time.Minute
		refreshTTL    time.Duration = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockAuthRepository()
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
		service = NewService(mockRepo, tokenGen, nil, bcrypt.MinCost, slog.New(slog.NewTextHandler(io.Discard, nil)))
		client = ClientInfo{IP: "203.0.113.9", UserAgent: "test-agent"}
	})

	ginkgo.Describe("Login", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return tokens and the authenticated user", func() {
				// Given
				dto := LoginDTO{Email: "viewer@example.com", Password: "correct_password"}

				// When
				result, err := service.Login(dto, client)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(result.Outcome).To(gomega.Equal(OutcomeSuccess))
				gomega.Expect(result.Tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(result.Tokens.RefreshToken).ToNot(gomega.BeEmpty())
				gomega.Expect(result.Tokens.AccessToken).ToNot(gomega.Equal(result.Tokens.RefreshToken))
				gomega.Expect(result.User.Name).To(gomega.Equal("Viewer"))
				gomega.Expect(result.User.PrimaryProfile).To(gomega.Equal("Viewers"))
			})

			ginkgo.It("should record exactly one successful access event", func() {
				// Given
				dto := LoginDTO{Email: "viewer@example.com", Password: "correct_password"}

				// When
				_, err := service.Login(dto, client)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(mockRepo.recorded).To(gomega.HaveLen(1))
				gomega.Expect(mockRepo.recorded[0].UserID).To(gomega.Equal(int64(2)))
				gomega.Expect(mockRepo.recorded[0].Failed).To(gomega.BeFalse())
				gomega.Expect(mockRepo.recorded[0].IP).To(gomega.Equal("203.0.113.9"))
				gomega.Expect(mockRepo.recorded[0].UserAgent).To(gomega.Equal("test-agent"))
			})

			ginkgo.It("should resolve the union of the user's profile resources", func() {
				// Given a user in Viewers and Auditors, whose grants overlap
				dto := LoginDTO{Email: "viewer@example.com", Password: "correct_password"}

				// When
				result, err := service.Login(dto, client)

				// Then duplicates collapse
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(result.User.Resources).To(gomega.ConsistOf("users:read", "accesses:read"))
			})

			ginkgo.It("should give an administrator every resource in the catalog", func() {
				// Given
				dto := LoginDTO{Email: "admin@example.com", Password: "correct_password"}

				// When
				result, err := service.Login(dto, client)

				// Then the bypass ignores the admin profile's own thin grants
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(result.User.Resources).To(gomega.ConsistOf(
					"users:read", "users:delete", "accesses:read", "profiles:update"))
			})

			ginkgo.It("should resolve an empty set for a user with no profiles", func() {
				// Given
				dto := LoginDTO{Email: "nobody@example.com", Password: "correct_password"}

				// When
				result, err := service.Login(dto, client)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(result.Outcome).To(gomega.Equal(OutcomeSuccess))
				gomega.Expect(result.User.Resources).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when the password is wrong", func() {
			ginkgo.It("should report the outcome without an error", func() {
				// Given
				dto := LoginDTO{Email: "viewer@example.com", Password: "wrong_password"}

				// When
				result, err := service.Login(dto, client)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(result.Outcome).To(gomega.Equal(OutcomeWrongPassword))
				gomega.Expect(result.Tokens.AccessToken).To(gomega.BeEmpty())
				gomega.Expect(result.User).To(gomega.BeNil())
			})

			ginkgo.It("should still record exactly one access event, marked failed", func() {
				// Given
				dto := LoginDTO{Email: "viewer@example.com", Password: "wrong_password"}

				// When
				_, err := service.Login(dto, client)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(mockRepo.recorded).To(gomega.HaveLen(1))
				gomega.Expect(mockRepo.recorded[0].UserID).To(gomega.Equal(int64(2)))
				gomega.Expect(mockRepo.recorded[0].Failed).To(gomega.BeTrue())
			})

			ginkgo.It("should fail the login when the audit row cannot be written", func() {
				// Given
				mockRepo.recordError = errors.New("disk full")
				dto := LoginDTO{Email: "viewer@example.com", Password: "wrong_password"}

				// When
				result, err := service.Login(dto, client)

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(result).To(gomega.BeNil())
			})
		})

		ginkgo.Context("when the email matches no account", func() {
			ginkgo.It("should report the outcome and record nothing", func() {
				// Given
				dto := LoginDTO{Email: "ghost@example.com", Password: "correct_password"}

				// When
				result, err := service.Login(dto, client)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(result.Outcome).To(gomega.Equal(OutcomeUserNotFound))
				gomega.Expect(mockRepo.recorded).To(gomega.BeEmpty())
			})

			ginkgo.It("should match emails exactly, not case-insensitively", func() {
				// Given
				dto := LoginDTO{Email: "VIEWER@example.com", Password: "correct_password"}

				// When
				result, err := service.Login(dto, client)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(result.Outcome).To(gomega.Equal(OutcomeUserNotFound))
			})
		})

		ginkgo.Context("when the request is malformed", func() {
			ginkgo.It("should reject a missing email", func() {
				// When
				result, err := service.Login(LoginDTO{Password: "x"}, client)

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(result).To(gomega.BeNil())
				gomega.Expect(mockRepo.recorded).To(gomega.BeEmpty())
			})

			ginkgo.It("should reject a missing password", func() {
				// When
				result, err := service.Login(LoginDTO{Email: "viewer@example.com"}, client)

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(result).To(gomega.BeNil())
				gomega.Expect(mockRepo.recorded).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when the store fails", func() {
			ginkgo.It("should surface an error instead of an outcome", func() {
				// Given
				mockRepo.setError(errors.New("connection refused"))

				// When
				result, err := service.Login(LoginDTO{Email: "viewer@example.com", Password: "correct_password"}, client)

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(result).To(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("should issue a new pair for a valid refresh token", func() {
			// Given
			result, err := service.Login(LoginDTO{Email: "viewer@example.com", Password: "correct_password"}, client)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			tokens, err := service.RefreshTokens(result.Tokens.RefreshToken)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("should reject garbage tokens", func() {
			// When
			tokens, err := service.RefreshTokens("not-a-token")

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err).To(gomega.Or(gomega.Equal(ErrInvalidToken), gomega.Equal(ErrTokenExpired)))
			gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		ginkgo.It("should round-trip claims through a generated token", func() {
			// Given
			token, err := tokenGen.GenerateAccessToken("42", "viewer@example.com")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			claims, err := service.ValidateAccessToken(token)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("42"))
			gomega.Expect(claims.Email).To(gomega.Equal("viewer@example.com"))
		})

		ginkgo.It("should reject an expired token", func() {
			// Given a generator whose access tokens are already expired
			expiredGen := NewJWTTokenGenerator(accessSecret, refreshSecret, -time.Minute, refreshTTL)
			token, err := expiredGen.GenerateAccessToken("42", "viewer@example.com")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			claims, err := service.ValidateAccessToken(token)

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err).To(gomega.Equal(ErrTokenExpired))
			gomega.Expect(claims).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("UserAccess", func() {
		ginkgo.It("should load the user with resolved resources", func() {
			// When
			access, err := service.UserAccess(2)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(access.Email).To(gomega.Equal("viewer@example.com"))
			gomega.Expect(access.Resources).To(gomega.ConsistOf("users:read", "accesses:read"))
			gomega.Expect(access.HasResource("users:read")).To(gomega.BeTrue())
			gomega.Expect(access.HasResource("users:delete")).To(gomega.BeFalse())
		})

		ginkgo.It("should error for an unknown user id", func() {
			// When
			access, err := service.UserAccess(99)

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(access).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("HashPassword", func() {
		ginkgo.It("should produce a hash that verifies against the input", func() {
			// When
			hash, err := service.HashPassword("s3cret")

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret"))).To(gomega.Succeed())
		})
	})
})
