package competitorfile

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/liuqy/experiment-management/internal"
	competitorfileDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/competitorfile"
)

func TestCompetitorFile(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "CompetitorFile Module Suite")
}

type noopRecorder struct{}

func (noopRecorder) Record(activityType, description string, userID *int64) {}

type mockFileRepository struct {
	rows   map[int64]*competitorfileDatamodel.CompetitorFile
	nextID int64
}

func newMockFileRepository() *mockFileRepository {
	return &mockFileRepository{rows: map[int64]*competitorfileDatamodel.CompetitorFile{}, nextID: 1}
}

func (m *mockFileRepository) toResponse(row *competitorfileDatamodel.CompetitorFile) *FileResponse {
	return &FileResponse{
		ID:         row.ID,
		PersonID:   row.PersonID,
		BatchID:    row.BatchID,
		FileName:   row.FileName,
		FilePath:   row.FilePath,
		UploadTime: row.UploadTime,
	}
}

func (m *mockFileRepository) List(limit, offset int, batchID, personID *int64) ([]FileResponse, error) {
	return m.ListAll()
}

func (m *mockFileRepository) ListAll() ([]FileResponse, error) {
	var rows []FileResponse
	for _, row := range m.rows {
		rows = append(rows, *m.toResponse(row))
	}
	return rows, nil
}

func (m *mockFileRepository) GetByID(id int64) (*FileResponse, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, internal.ErrFileNotFound
	}
	return m.toResponse(row), nil
}

func (m *mockFileRepository) FindByOwnerAndName(batchID, personID int64, fileName string) (*competitorfileDatamodel.CompetitorFile, error) {
	for _, row := range m.rows {
		if row.BatchID == batchID && row.PersonID == personID && row.FileName == fileName {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockFileRepository) Create(f *competitorfileDatamodel.CompetitorFile) error {
	f.ID = m.nextID
	m.nextID++
	copied := *f
	m.rows[f.ID] = &copied
	return nil
}

func (m *mockFileRepository) Update(f *competitorfileDatamodel.CompetitorFile) error {
	row, ok := m.rows[f.ID]
	if !ok {
		return internal.ErrFileNotFound
	}
	row.FileName = f.FileName
	row.FilePath = f.FilePath
	row.UploadTime = f.UploadTime
	return nil
}

func (m *mockFileRepository) Delete(id int64) error {
	if _, ok := m.rows[id]; !ok {
		return internal.ErrFileNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *mockFileRepository) CheckOwnerRefs(batchID, personID int64) error {
	if batchID == 9999 || personID == 9999 {
		return internal.NewInvalidReferenceError("Referenced batch does not exist")
	}
	return nil
}

var _ = ginkgo.Describe("CompetitorFile Service", func() {
	var (
		service *Service
		repo    *mockFileRepository
		storage *Storage
		baseDir string
	)

	ginkgo.BeforeEach(func() {
		var err error
		baseDir, err = os.MkdirTemp("", "uploads")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		repo = newMockFileRepository()
		storage = NewStorage(baseDir)
		service = NewService(repo, storage, noopRecorder{}, slog.Default())
	})

	ginkgo.AfterEach(func() {
		os.RemoveAll(baseDir)
	})

	readStored := func(relPath string) string {
		data, err := os.ReadFile(filepath.Join(baseDir, relPath))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return string(data)
	}

	ginkgo.Describe("Upload", func() {
		ginkgo.It("stores the file under the owner directory", func() {
			resp, err := service.Upload(1, 2, "results.csv", strings.NewReader("a,b,c"), 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.FilePath).To(gomega.Equal(filepath.Join("competitor_files", "1_2", "results.csv")))
			gomega.Expect(readStored(resp.FilePath)).To(gomega.Equal("a,b,c"))
		})

		ginkgo.It("reuses the row and overwrites content on re-upload", func() {
			first, err := service.Upload(1, 2, "results.csv", strings.NewReader("old"), 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			second, err := service.Upload(1, 2, "results.csv", strings.NewReader("new"), 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(second.ID).To(gomega.Equal(first.ID))
			gomega.Expect(repo.rows).To(gomega.HaveLen(1))
			gomega.Expect(readStored(second.FilePath)).To(gomega.Equal("new"))
		})

		ginkgo.It("keeps equal names under different owners apart", func() {
			first, err := service.Upload(1, 2, "results.csv", strings.NewReader("one"), 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			second, err := service.Upload(1, 3, "results.csv", strings.NewReader("two"), 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(first.ID).NotTo(gomega.Equal(second.ID))
			gomega.Expect(readStored(first.FilePath)).To(gomega.Equal("one"))
			gomega.Expect(readStored(second.FilePath)).To(gomega.Equal("two"))
		})

		ginkgo.It("rejects an unknown owner", func() {
			_, err := service.Upload(9999, 2, "results.csv", strings.NewReader("x"), 1)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidReference))
		})

		ginkgo.It("rejects names with path separators", func() {
			_, err := service.Upload(1, 2, "../escape.csv", strings.NewReader("x"), 1)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("Rename", func() {
		var uploaded *FileResponse

		ginkgo.BeforeEach(func() {
			var err error
			uploaded, err = service.Upload(1, 2, "results.csv", strings.NewReader("data"), 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("moves the file and updates the row", func() {
			resp, err := service.Rename(uploaded.ID, RenameDTO{NewName: "final.csv"}, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.FileName).To(gomega.Equal("final.csv"))
			gomega.Expect(readStored(resp.FilePath)).To(gomega.Equal("data"))

			_, statErr := os.Stat(filepath.Join(baseDir, uploaded.FilePath))
			gomega.Expect(os.IsNotExist(statErr)).To(gomega.BeTrue())
		})

		ginkgo.It("conflicts when the target name is taken", func() {
			_, err := service.Upload(1, 2, "final.csv", strings.NewReader("other"), 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.Rename(uploaded.ID, RenameDTO{NewName: "final.csv"}, 1)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeDuplicateFileName))
		})

		ginkgo.It("leaves the row untouched when the filesystem rename fails", func() {
			gomega.Expect(os.Remove(filepath.Join(baseDir, uploaded.FilePath))).To(gomega.Succeed())

			_, err := service.Rename(uploaded.ID, RenameDTO{NewName: "final.csv"}, 1)
			gomega.Expect(err).To(gomega.HaveOccurred())

			got, getErr := service.Get(uploaded.ID)
			gomega.Expect(getErr).NotTo(gomega.HaveOccurred())
			gomega.Expect(got.FileName).To(gomega.Equal("results.csv"))
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("removes the file and the row", func() {
			uploaded, err := service.Upload(1, 2, "results.csv", strings.NewReader("data"), 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(service.Delete(uploaded.ID, 1)).To(gomega.Succeed())
			gomega.Expect(repo.rows).To(gomega.BeEmpty())
		})

		ginkgo.It("tolerates a file already gone from disk", func() {
			uploaded, err := service.Upload(1, 2, "results.csv", strings.NewReader("data"), 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(os.Remove(filepath.Join(baseDir, uploaded.FilePath))).To(gomega.Succeed())

			gomega.Expect(service.Delete(uploaded.ID, 1)).To(gomega.Succeed())
			gomega.Expect(repo.rows).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Download", func() {
		ginkgo.It("streams the stored content with the original name", func() {
			uploaded, err := service.Upload(1, 2, "results.csv", strings.NewReader("payload"), 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			name, reader, err := service.Download(uploaded.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			defer reader.Close()

			gomega.Expect(name).To(gomega.Equal("results.csv"))
			data, err := io.ReadAll(reader)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(string(data)).To(gomega.Equal("payload"))
		})

		ginkgo.It("reports not found when the file left the disk", func() {
			uploaded, err := service.Upload(1, 2, "results.csv", strings.NewReader("payload"), 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(os.Remove(filepath.Join(baseDir, uploaded.FilePath))).To(gomega.Succeed())

			_, _, err = service.Download(uploaded.ID)
			gomega.Expect(err).To(gomega.Equal(internal.ErrFileNotFound))
		})
	})

	ginkgo.Describe("Export", func() {
		ginkgo.It("produces a non-empty workbook", func() {
			_, err := service.Upload(1, 2, "results.csv", strings.NewReader("payload"), 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			data, err := service.Export(1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(len(data)).To(gomega.BeNumerically(">", 0))
		})
	})

	ginkgo.DescribeTable("humanSize",
		func(n int64, expected string) {
			gomega.Expect(humanSize(n)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("bytes", int64(512), "512.0 B"),
		ginkgo.Entry("kilobytes", int64(2048), "2.0 KB"),
		ginkgo.Entry("megabytes", int64(5*1024*1024), "5.0 MB"),
		ginkgo.Entry("gigabytes", int64(3*1024*1024*1024), "3.0 GB"),
	)
})
