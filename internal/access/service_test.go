package access

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestAccess(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Access Module Suite")
}

type mockAccessRepository struct {
	lastFilter Filter
	rows       []*Access
	err        error
}

func (m *mockAccessRepository) List(f Filter) ([]*Access, error) {
	m.lastFilter = f
	return m.rows, m.err
}

var _ = ginkgo.Describe("Query normalization", func() {
	ginkgo.It("should default the sort to newest first", func() {
		f := Query{}.Normalize()
		gomega.Expect(f.Sort).To(gomega.Equal(SortDatetimeDesc))
	})

	ginkgo.It("should fall back to the default for an unrecognized sort", func() {
		f := Query{Sort: "oldest"}.Normalize()
		gomega.Expect(f.Sort).To(gomega.Equal(SortDatetimeDesc))
	})

	ginkgo.It("should pass whitelisted sorts through", func() {
		for _, key := range []string{"datetime_asc", "datetime_desc", "user_asc", "user_desc"} {
			f := Query{Sort: key}.Normalize()
			gomega.Expect(string(f.Sort)).To(gomega.Equal(key))
		}
	})

	ginkgo.It("should drop the date filter when only one bound is supplied", func() {
		f := Query{DateFrom: time.Now()}.Normalize()
		gomega.Expect(f.From).To(gomega.BeNil())
		gomega.Expect(f.To).To(gomega.BeNil())

		f = Query{DateTo: time.Now()}.Normalize()
		gomega.Expect(f.From).To(gomega.BeNil())
		gomega.Expect(f.To).To(gomega.BeNil())
	})

	ginkgo.It("should keep the date filter when both bounds are supplied", func() {
		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		f := Query{DateFrom: from, DateTo: to}.Normalize()
		gomega.Expect(f.From).To(gomega.HaveValue(gomega.Equal(from)))
		gomega.Expect(f.To).To(gomega.HaveValue(gomega.Equal(to)))
	})

	ginkgo.It("should filter to failed when only failedOnly is set", func() {
		f := Query{FailedOnly: true}.Normalize()
		gomega.Expect(f.Failed).To(gomega.HaveValue(gomega.BeTrue()))
	})

	ginkgo.It("should filter to succeeded when only succeededOnly is set", func() {
		f := Query{SucceededOnly: true}.Normalize()
		gomega.Expect(f.Failed).To(gomega.HaveValue(gomega.BeFalse()))
	})

	ginkgo.It("should apply no outcome filter when both flags agree", func() {
		// Both true and both false are indistinguishable: no filter either way.
		f := Query{FailedOnly: true, SucceededOnly: true}.Normalize()
		gomega.Expect(f.Failed).To(gomega.BeNil())

		f = Query{}.Normalize()
		gomega.Expect(f.Failed).To(gomega.BeNil())
	})
})

var _ = ginkgo.Describe("AccessService", func() {
	var (
		service  *Service
		mockRepo *mockAccessRepository
	)

	ginkgo.BeforeEach(func() {
		mockRepo = &mockAccessRepository{rows: []*Access{
			{ID: 1, Failed: false, User: UserRef{ID: 2, Name: "Viewer"}},
		}}
		service = NewService(mockRepo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	ginkgo.It("should hand the normalized filter to the repository", func() {
		// When
		rows, err := service.List(Query{FailedOnly: true, Sort: "user_asc"})

		// Then
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(rows).To(gomega.HaveLen(1))
		gomega.Expect(mockRepo.lastFilter.Sort).To(gomega.Equal(SortUserAsc))
		gomega.Expect(mockRepo.lastFilter.Failed).To(gomega.HaveValue(gomega.BeTrue()))
	})

	ginkgo.It("should produce the same filter for both-true and both-false outcome flags", func() {
		// When
		_, err := service.List(Query{FailedOnly: true, SucceededOnly: true})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		bothTrue := mockRepo.lastFilter

		_, err = service.List(Query{})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		bothFalse := mockRepo.lastFilter

		// Then
		gomega.Expect(bothTrue).To(gomega.Equal(bothFalse))
	})

	ginkgo.It("should surface repository failures", func() {
		mockRepo.err = errors.New("connection refused")
		_, err := service.List(Query{})
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
