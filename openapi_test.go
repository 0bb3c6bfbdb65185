package main_test

import (
	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI Document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()

		var err error
		doc, err = loader.LoadFromFile("api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())

		Expect(doc.Validate(loader.Context)).To(Succeed())
	})

	It("should document every registered route", func() {
		expected := []string{
			"/health",
			"/ping",
			"/auth/login",
			"/auth/refresh",
			"/auth/logout",
			"/users/me",
			"/users",
			"/users/{id}",
			"/profiles",
			"/profiles/{id}",
			"/permissions",
			"/permissions/delete",
			"/accesses",
			"/describe",
		}

		for _, path := range expected {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("should whitelist the audit sort keys", func() {
		op := doc.Paths.Find("/accesses").Get
		Expect(op).NotTo(BeNil())

		var sortParam *openapi3.Parameter
		for _, ref := range op.Parameters {
			if ref.Value != nil && ref.Value.Name == "sort" {
				sortParam = ref.Value
			}
		}
		Expect(sortParam).NotTo(BeNil())
		Expect(sortParam.Schema.Value.Enum).To(ConsistOf(
			"datetime_asc", "datetime_desc", "user_asc", "user_desc",
		))
		Expect(sortParam.Schema.Value.Default).To(Equal("datetime_desc"))
	})

	It("should require credentials on the login request", func() {
		op := doc.Paths.Find("/auth/login").Post
		Expect(op).NotTo(BeNil())

		schema := op.RequestBody.Value.Content.Get("application/json").Schema.Value
		Expect(schema.Required).To(ConsistOf("email", "password"))
	})
})
