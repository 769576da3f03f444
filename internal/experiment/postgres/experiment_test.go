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
	experimentDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/experiment"
	"github.com/liuqy/experiment-management/internal/experiment"
	experimentPostgres "github.com/liuqy/experiment-management/internal/experiment/postgres"
)

func TestExperimentPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Experiment Postgres Suite")
}

// SQLite-compatible models for testing

type SQLiteBatch struct {
	ID          int64     `gorm:"primaryKey"`
	BatchNumber string    `gorm:"column:batch_number;uniqueIndex;not null"`
	StartTime   time.Time `gorm:"column:start_time"`
}

func (SQLiteBatch) TableName() string { return "batches" }

type SQLitePerson struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name;not null"`
}

func (SQLitePerson) TableName() string { return "persons" }

type SQLiteExperiment struct {
	ID        int64     `gorm:"primaryKey"`
	BatchID   int64     `gorm:"column:batch_id;not null"`
	Content   string    `gorm:"column:content"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SQLiteExperiment) TableName() string { return "experiments" }

type SQLiteExperimentMember struct {
	ID           int64     `gorm:"primaryKey"`
	ExperimentID int64     `gorm:"column:experiment_id;not null;uniqueIndex:idx_experiment_person"`
	PersonID     int64     `gorm:"column:person_id;not null;uniqueIndex:idx_experiment_person"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (SQLiteExperimentMember) TableName() string { return "experiment_members" }

var _ = Describe("Experiment PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo experiment.RepositoryAPI

		batchID int64
		alice   int64
		bob     int64
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&SQLiteBatch{},
			&SQLitePerson{},
			&SQLiteExperiment{},
			&SQLiteExperimentMember{},
		)
		Expect(err).NotTo(HaveOccurred())

		b := SQLiteBatch{BatchNumber: "B-001", StartTime: time.Now()}
		Expect(db.Create(&b).Error).To(Succeed())
		batchID = b.ID

		p1 := SQLitePerson{Name: "Alice"}
		p2 := SQLitePerson{Name: "Bob"}
		Expect(db.Create(&p1).Error).To(Succeed())
		Expect(db.Create(&p2).Error).To(Succeed())
		alice, bob = p1.ID, p2.ID

		repo = experimentPostgres.NewExperimentRepository(db)
	})

	Describe("Create", func() {
		It("stores the experiment with its member set", func() {
			e := &experimentDatamodel.Experiment{BatchID: batchID, Content: "glucose trial"}
			Expect(repo.Create(e, []int64{alice, bob})).To(Succeed())

			got, err := repo.GetByID(e.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.BatchNumber).To(Equal("B-001"))
			Expect(got.Members).To(HaveLen(2))
			Expect(got.Members[0].PersonName).To(Equal("Alice"))
		})

		It("rejects an unknown person id", func() {
			e := &experimentDatamodel.Experiment{BatchID: batchID}
			err := repo.Create(e, []int64{alice, 9999})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidReference))

			var count int64
			Expect(db.Model(&SQLiteExperiment{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})

		It("rejects an unknown batch id", func() {
			e := &experimentDatamodel.Experiment{BatchID: 9999}
			err := repo.Create(e, []int64{alice})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidReference))
		})
	})

	Describe("Update", func() {
		var e *experimentDatamodel.Experiment

		BeforeEach(func() {
			e = &experimentDatamodel.Experiment{BatchID: batchID, Content: "v1"}
			Expect(repo.Create(e, []int64{alice})).To(Succeed())
		})

		It("replaces the whole member set", func() {
			e.Content = "v2"
			Expect(repo.Update(e, []int64{bob})).To(Succeed())

			got, err := repo.GetByID(e.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Content).To(Equal("v2"))
			Expect(got.Members).To(HaveLen(1))
			Expect(got.Members[0].PersonID).To(Equal(bob))
		})
	})

	Describe("AddMember", func() {
		var e *experimentDatamodel.Experiment

		BeforeEach(func() {
			e = &experimentDatamodel.Experiment{BatchID: batchID}
			Expect(repo.Create(e, []int64{alice})).To(Succeed())
		})

		It("adds a new member", func() {
			Expect(repo.AddMember(e.ID, bob)).To(Succeed())

			got, err := repo.GetByID(e.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Members).To(HaveLen(2))
		})

		It("rejects an existing member with a conflict", func() {
			err := repo.AddMember(e.ID, alice)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateMember))
		})

		It("returns not found for an unknown experiment", func() {
			Expect(repo.AddMember(9999, alice)).To(Equal(internal.ErrExperimentNotFound))
		})
	})

	Describe("RemoveMember", func() {
		var e *experimentDatamodel.Experiment

		BeforeEach(func() {
			e = &experimentDatamodel.Experiment{BatchID: batchID}
			Expect(repo.Create(e, []int64{alice, bob})).To(Succeed())
		})

		It("removes a member while others remain", func() {
			Expect(repo.RemoveMember(e.ID, bob)).To(Succeed())

			got, err := repo.GetByID(e.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Members).To(HaveLen(1))
			Expect(got.Members[0].PersonID).To(Equal(alice))
		})

		It("never drops the last member", func() {
			Expect(repo.RemoveMember(e.ID, bob)).To(Succeed())

			err := repo.RemoveMember(e.ID, alice)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeLastMember))

			got, getErr := repo.GetByID(e.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(got.Members).To(HaveLen(1))
		})
	})

	Describe("List", func() {
		It("filters by member person", func() {
			e1 := &experimentDatamodel.Experiment{BatchID: batchID, Content: "first"}
			Expect(repo.Create(e1, []int64{alice})).To(Succeed())
			e2 := &experimentDatamodel.Experiment{BatchID: batchID, Content: "second"}
			Expect(repo.Create(e2, []int64{bob})).To(Succeed())

			personID := bob
			rows, err := repo.List(100, 0, nil, &personID)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Content).To(Equal("second"))
		})
	})
})
