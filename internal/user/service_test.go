package user

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/user-management/internal"
	profileDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/profile"
	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type fakeHasher struct{ err error }

func (f fakeHasher) HashPassword(password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hashed:" + password, nil
}

// In-memory repository tracking membership writes.
type mockUserRepository struct {
	users       map[int64]*userDatamodel.User
	profiles    map[int64]string
	nextID      int64
	memberAdds  [][]int64
	memberDrops [][]int64
	failWith    error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: map[int64]*userDatamodel.User{
			1: {ID: 1, Name: "Admin", Email: "admin@example.com", PasswordHash: "hashed:root", Status: userDatamodel.StatusActive,
				Profiles: []profileDatamodel.Profile{{ID: 1, Name: "Administrators"}}},
			2: {ID: 2, Name: "Viewer", Email: "viewer@example.com", PasswordHash: "hashed:old", Status: userDatamodel.StatusActive,
				Profiles: []profileDatamodel.Profile{{ID: 2, Name: "Viewers"}, {ID: 3, Name: "Auditors"}}},
		},
		profiles: map[int64]string{1: "Administrators", 2: "Viewers", 3: "Auditors"},
		nextID:   3,
	}
}

func (m *mockUserRepository) GetAll() ([]*userDatamodel.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]*userDatamodel.User, 0, len(m.users))
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepository) GetByID(id int64) (*userDatamodel.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.users[id], nil
}

func (m *mockUserRepository) Create(u *userDatamodel.User, profileIDs []int64) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	u.ID = m.nextID
	m.applyMemberships(u, profileIDs, nil)
	m.users[u.ID] = u
	m.memberAdds = append(m.memberAdds, profileIDs)
	return nil
}

func (m *mockUserRepository) Update(u *userDatamodel.User, add, remove []int64) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.applyMemberships(u, add, remove)
	m.users[u.ID] = u
	m.memberAdds = append(m.memberAdds, add)
	m.memberDrops = append(m.memberDrops, remove)
	return nil
}

func (m *mockUserRepository) Delete(id int64) error {
	if m.failWith != nil {
		return m.failWith
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) ExistingProfileIDs(ids []int64) ([]int64, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := m.profiles[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *mockUserRepository) applyMemberships(u *userDatamodel.User, add, remove []int64) {
	drop := make(map[int64]struct{}, len(remove))
	for _, id := range remove {
		drop[id] = struct{}{}
	}
	kept := u.Profiles[:0]
	for _, p := range u.Profiles {
		if _, gone := drop[p.ID]; !gone {
			kept = append(kept, p)
		}
	}
	u.Profiles = kept
	for _, id := range add {
		u.Profiles = append(u.Profiles, profileDatamodel.Profile{ID: id, Name: m.profiles[id]})
	}
}

func (m *mockUserRepository) membershipIDs(userID int64) []int64 {
	u := m.users[userID]
	ids := make([]int64, 0, len(u.Profiles))
	for _, p := range u.Profiles {
		ids = append(ids, p.ID)
	}
	return ids
}

var _ = ginkgo.Describe("UserService", func() {
	var (
		service  *Service
		mockRepo *mockUserRepository
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		service = NewService(mockRepo, fakeHasher{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	ginkgo.Describe("Save", func() {
		ginkgo.Context("creating a user", func() {
			ginkgo.It("should store the user active with hashed password and memberships", func() {
				// Given
				dto := UserDTO{
					Name:     "New",
					Email:    "new@example.com",
					Password: "s3cret",
					Profiles: []ProfileRef{{ID: 2}, {ID: 3}},
				}

				// When
				created, err := service.Save(dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(created.ID).ToNot(gomega.BeZero())
				gomega.Expect(created.Status).To(gomega.Equal(userDatamodel.StatusActive))
				gomega.Expect(created.PrimaryProfile).To(gomega.Equal("Viewers"))
				gomega.Expect(mockRepo.users[created.ID].PasswordHash).To(gomega.Equal("hashed:s3cret"))
				gomega.Expect(mockRepo.users[created.ID].RegisteredAt).ToNot(gomega.BeZero())
			})

			ginkgo.It("should reject a create without a password", func() {
				// When
				created, err := service.Save(UserDTO{Name: "New", Email: "new@example.com"})

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(created).To(gomega.BeNil())
			})

			ginkgo.It("should skip memberships to profiles that do not exist", func() {
				// Given one real profile and one unknown
				dto := UserDTO{
					Name:     "New",
					Email:    "new@example.com",
					Password: "s3cret",
					Profiles: []ProfileRef{{ID: 2}, {ID: 99}},
				}

				// When
				created, err := service.Save(dto)

				// Then the unknown one is dropped, not fatal
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(mockRepo.membershipIDs(created.ID)).To(gomega.Equal([]int64{2}))
			})

			ginkgo.It("should skip profile entries without an id", func() {
				// Given
				dto := UserDTO{
					Name:     "New",
					Email:    "new@example.com",
					Password: "s3cret",
					Profiles: []ProfileRef{{Name: "Viewers"}, {ID: 3}},
				}

				// When
				created, err := service.Save(dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(mockRepo.membershipIDs(created.ID)).To(gomega.Equal([]int64{3}))
			})
		})

		ginkgo.Context("updating a user", func() {
			ginkgo.It("should reconcile memberships to exactly the requested set", func() {
				// Given user 2 is in profiles {2, 3}; request {3, 1}
				dto := UserDTO{
					ID:       2,
					Name:     "Viewer",
					Email:    "viewer@example.com",
					Profiles: []ProfileRef{{ID: 3}, {ID: 1}},
				}

				// When
				_, err := service.Save(dto)

				// Then only the delta is written
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(mockRepo.memberAdds[0]).To(gomega.Equal([]int64{1}))
				gomega.Expect(mockRepo.memberDrops[0]).To(gomega.Equal([]int64{2}))
				gomega.Expect(mockRepo.membershipIDs(2)).To(gomega.ConsistOf(int64(1), int64(3)))
			})

			ginkgo.It("should be a no-op when the requested set matches the stored set", func() {
				// Given
				dto := UserDTO{
					ID:       2,
					Name:     "Viewer",
					Email:    "viewer@example.com",
					Profiles: []ProfileRef{{ID: 2}, {ID: 3}},
				}

				// When applied twice
				_, err := service.Save(dto)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				_, err = service.Save(dto)

				// Then no membership churn either time
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(mockRepo.memberAdds[0]).To(gomega.BeEmpty())
				gomega.Expect(mockRepo.memberDrops[0]).To(gomega.BeEmpty())
				gomega.Expect(mockRepo.memberAdds[1]).To(gomega.BeEmpty())
				gomega.Expect(mockRepo.memberDrops[1]).To(gomega.BeEmpty())
			})

			ginkgo.It("should keep the stored password hash when the request omits it", func() {
				// When
				_, err := service.Save(UserDTO{ID: 2, Name: "Viewer", Email: "viewer@example.com"})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(mockRepo.users[2].PasswordHash).To(gomega.Equal("hashed:old"))
			})

			ginkgo.It("should re-hash when the request carries a password", func() {
				// When
				_, err := service.Save(UserDTO{ID: 2, Name: "Viewer", Email: "viewer@example.com", Password: "fresh"})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(mockRepo.users[2].PasswordHash).To(gomega.Equal("hashed:fresh"))
			})

			ginkgo.It("should fail with not-found for an id that is not stored", func() {
				// When
				updated, err := service.Save(UserDTO{ID: 42, Name: "Ghost", Email: "ghost@example.com"})

				// Then
				gomega.Expect(err).To(gomega.Equal(internal.ErrUserNotFound))
				gomega.Expect(updated).To(gomega.BeNil())
			})
		})

		ginkgo.Context("when the store fails", func() {
			ginkgo.It("should surface an internal error", func() {
				// Given
				mockRepo.failWith = errors.New("connection refused")

				// When
				_, err := service.Save(UserDTO{ID: 2, Name: "Viewer", Email: "viewer@example.com"})

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
			})
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("should remove a stored user", func() {
			// When
			err := service.Delete(2)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.users).ToNot(gomega.HaveKey(int64(2)))
		})

		ginkgo.It("should refuse to delete the built-in administrator", func() {
			// When
			err := service.Delete(1)

			// Then the row is untouched
			gomega.Expect(err).To(gomega.Equal(internal.ErrDeleteProtected))
			gomega.Expect(mockRepo.users).To(gomega.HaveKey(int64(1)))
		})

		ginkgo.It("should fail with not-found for an unknown id", func() {
			gomega.Expect(service.Delete(42)).To(gomega.Equal(internal.ErrUserNotFound))
		})
	})

	ginkgo.Describe("GetByID", func() {
		ginkgo.It("should expose the first membership as the primary profile", func() {
			// When
			u, err := service.GetByID(2)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.PrimaryProfile).To(gomega.Equal("Viewers"))
			gomega.Expect(u.Profiles).To(gomega.HaveLen(2))
		})

		ginkgo.It("should fail with not-found for an unknown id", func() {
			_, err := service.GetByID(42)
			gomega.Expect(err).To(gomega.Equal(internal.ErrUserNotFound))
		})
	})
})
