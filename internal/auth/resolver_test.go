package auth

import (
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	permissionDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/permission"
	profileDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/profile"
	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

type stubPermissionSource struct {
	perms []permissionDatamodel.Permission
	err   error
}

func (s *stubPermissionSource) AllPermissions() ([]permissionDatamodel.Permission, error) {
	return s.perms, s.err
}

var _ = ginkgo.Describe("Resolver", func() {
	var (
		resolver *Resolver
		source   *stubPermissionSource
	)

	readUsers := permissionDatamodel.Permission{ID: 1, Name: "Read users", Resource: "users:read", Action: permissionDatamodel.ActionRead}
	deleteUsers := permissionDatamodel.Permission{ID: 2, Name: "Delete users", Resource: "users:delete", Action: permissionDatamodel.ActionDelete}
	readAccesses := permissionDatamodel.Permission{ID: 3, Name: "Read accesses", Resource: "accesses:read", Action: permissionDatamodel.ActionRead}
	// Two permissions can point at the same resource.
	auditAccesses := permissionDatamodel.Permission{ID: 4, Name: "Audit accesses", Resource: "accesses:read", Action: permissionDatamodel.ActionRead}

	ginkgo.BeforeEach(func() {
		source = &stubPermissionSource{perms: []permissionDatamodel.Permission{readUsers, deleteUsers, readAccesses, auditAccesses}}
		resolver = NewResolver(source)
	})

	ginkgo.Context("for a regular user", func() {
		ginkgo.It("should union grants across profiles and deduplicate", func() {
			// Given two profiles whose grants overlap
			u := &userDatamodel.User{
				ID: 5,
				Profiles: []profileDatamodel.Profile{
					{ID: 2, Name: "Viewers", Permissions: []permissionDatamodel.Permission{readUsers, readAccesses}},
					{ID: 3, Name: "Auditors", Permissions: []permissionDatamodel.Permission{readAccesses, auditAccesses}},
				},
			}

			// When
			resources, err := resolver.Resolve(u)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resources).To(gomega.Equal([]string{"users:read", "accesses:read"}))
		})

		ginkgo.It("should resolve an empty set for zero profiles", func() {
			// When
			resources, err := resolver.Resolve(&userDatamodel.User{ID: 6})

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resources).To(gomega.BeEmpty())
		})

		ginkgo.It("should never consult the full catalog", func() {
			// Given a catalog source that would fail if called
			source.err = errors.New("catalog unavailable")
			u := &userDatamodel.User{
				ID: 5,
				Profiles: []profileDatamodel.Profile{
					{ID: 2, Name: "Viewers", Permissions: []permissionDatamodel.Permission{readUsers}},
				},
			}

			// When
			resources, err := resolver.Resolve(u)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resources).To(gomega.Equal([]string{"users:read"}))
		})
	})

	ginkgo.Context("for an administrator", func() {
		admin := func() *userDatamodel.User {
			return &userDatamodel.User{
				ID: 1,
				Profiles: []profileDatamodel.Profile{
					{ID: profileDatamodel.AdminProfileID, Name: "Administrators",
						Permissions: []permissionDatamodel.Permission{readUsers}},
				},
			}
		}

		ginkgo.It("should return every resource in the catalog, not the profile's grants", func() {
			// When
			resources, err := resolver.Resolve(admin())

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resources).To(gomega.Equal([]string{"users:read", "users:delete", "accesses:read"}))
		})

		ginkgo.It("should bypass even when admin membership comes after others", func() {
			// Given
			u := admin()
			u.Profiles = append([]profileDatamodel.Profile{
				{ID: 3, Name: "Auditors", Permissions: []permissionDatamodel.Permission{readAccesses}},
			}, u.Profiles...)

			// When
			resources, err := resolver.Resolve(u)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resources).To(gomega.ConsistOf("users:read", "users:delete", "accesses:read"))
		})

		ginkgo.It("should surface catalog failures", func() {
			// Given
			source.err = errors.New("catalog unavailable")

			// When
			resources, err := resolver.Resolve(admin())

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(resources).To(gomega.BeNil())
		})
	})

	ginkgo.It("should resolve nil for a nil user", func() {
		resources, err := resolver.Resolve(nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(resources).To(gomega.BeNil())
	})
})
