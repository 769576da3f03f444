package postgres_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/liuqy/experiment-management/internal"
	"github.com/liuqy/experiment-management/internal/batch"
	batchPostgres "github.com/liuqy/experiment-management/internal/batch/postgres"
	batchDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/batch"
	experimentDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/experiment"
)

func TestBatchPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Batch Postgres Suite")
}

// SQLite-compatible models for testing

type SQLiteBatch struct {
	ID          int64      `gorm:"primaryKey"`
	BatchNumber string     `gorm:"column:batch_number;uniqueIndex;not null"`
	StartTime   time.Time  `gorm:"column:start_time;not null"`
	EndTime     *time.Time `gorm:"column:end_time"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (SQLiteBatch) TableName() string { return "batches" }

type SQLiteExperiment struct {
	ID        int64     `gorm:"primaryKey"`
	BatchID   int64     `gorm:"column:batch_id"`
	Content   string    `gorm:"column:content"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SQLiteExperiment) TableName() string { return "experiments" }

type SQLiteCompetitorFile struct {
	ID       int64 `gorm:"primaryKey"`
	PersonID int64 `gorm:"column:person_id"`
	BatchID  int64 `gorm:"column:batch_id"`
}

func (SQLiteCompetitorFile) TableName() string { return "competitor_files" }

type SQLiteFingerBloodRecord struct {
	ID       int64 `gorm:"primaryKey"`
	PersonID int64 `gorm:"column:person_id"`
	BatchID  int64 `gorm:"column:batch_id"`
}

func (SQLiteFingerBloodRecord) TableName() string { return "finger_blood_records" }

type SQLiteSensor struct {
	ID       int64 `gorm:"primaryKey"`
	PersonID int64 `gorm:"column:person_id"`
	BatchID  int64 `gorm:"column:batch_id"`
}

func (SQLiteSensor) TableName() string { return "sensors" }

var _ = Describe("Batch PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo batch.RepositoryAPI
	)

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&SQLiteBatch{},
			&SQLiteExperiment{},
			&SQLiteCompetitorFile{},
			&SQLiteFingerBloodRecord{},
			&SQLiteSensor{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = batchPostgres.NewBatchRepository(db)
	})

	Describe("Create", func() {
		It("creates a batch", func() {
			b := &batchDatamodel.Batch{BatchNumber: "B-001", StartTime: start}
			err := repo.Create(b)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.ID).To(BeNumerically(">", 0))
		})

		It("rejects a duplicate batch number with a conflict", func() {
			Expect(repo.Create(&batchDatamodel.Batch{BatchNumber: "B-001", StartTime: start})).To(Succeed())

			err := repo.Create(&batchDatamodel.Batch{BatchNumber: "B-001", StartTime: start})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateBatchNumber))
			Expect(appErr.StatusCode).To(Equal(409))
		})
	})

	Describe("Update", func() {
		var existing *batchDatamodel.Batch

		BeforeEach(func() {
			end := start.Add(48 * time.Hour)
			existing = &batchDatamodel.Batch{BatchNumber: "B-001", StartTime: start, EndTime: &end}
			Expect(repo.Create(existing)).To(Succeed())
		})

		It("rejects renaming to another batch's number", func() {
			Expect(repo.Create(&batchDatamodel.Batch{BatchNumber: "B-002", StartTime: start})).To(Succeed())

			existing.BatchNumber = "B-002"
			err := repo.Update(existing)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateBatchNumber))
		})

		It("keeps its own number on update", func() {
			existing.StartTime = start.Add(time.Hour)
			Expect(repo.Update(existing)).To(Succeed())
		})

		It("clears end_time when the update omits it", func() {
			existing.EndTime = nil
			Expect(repo.Update(existing)).To(Succeed())

			got, err := repo.GetByID(existing.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.EndTime).To(BeNil())
		})
	})

	Describe("Delete", func() {
		var existing *batchDatamodel.Batch

		BeforeEach(func() {
			existing = &batchDatamodel.Batch{BatchNumber: "B-001", StartTime: start}
			Expect(repo.Create(existing)).To(Succeed())
		})

		It("deletes a batch nothing references", func() {
			Expect(repo.Delete(existing.ID)).To(Succeed())

			_, err := repo.GetByID(existing.ID)
			Expect(err).To(Equal(internal.ErrBatchNotFound))
		})

		It("refuses while an experiment references the batch", func() {
			Expect(db.Create(&experimentDatamodel.Experiment{BatchID: existing.ID, Content: "trial"}).Error).To(Succeed())

			err := repo.Delete(existing.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDependentRecords))

			_, getErr := repo.GetByID(existing.ID)
			Expect(getErr).NotTo(HaveOccurred())
		})

		It("returns not found for an unknown id", func() {
			Expect(repo.Delete(9999)).To(Equal(internal.ErrBatchNotFound))
		})
	})

	Describe("List", func() {
		It("orders by start_time descending", func() {
			Expect(repo.Create(&batchDatamodel.Batch{BatchNumber: "B-001", StartTime: start})).To(Succeed())
			Expect(repo.Create(&batchDatamodel.Batch{BatchNumber: "B-002", StartTime: start.Add(24 * time.Hour)})).To(Succeed())

			batches, err := repo.List(100, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(batches).To(HaveLen(2))
			Expect(batches[0].BatchNumber).To(Equal("B-002"))
			Expect(batches[1].BatchNumber).To(Equal("B-001"))
		})
	})
})
