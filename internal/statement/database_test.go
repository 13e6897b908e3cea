package statement

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/zombor/statement-ocr/internal/extract"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	newRun := func(id string, createdAt time.Time) *Run {
		return &Run{
			ID:          id,
			Filename:    "jan.pdf",
			ContentType: "application/pdf",
			Transactions: []extract.Transaction{
				{
					Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
					Description: "GROCERY STORE PURCHASE",
					Amount:      decimal.RequireFromString("1234.56"),
				},
			},
			PagesProcessed: 3,
			Stats: &extract.Stats{
				Lines:      40,
				Candidates: 2,
				Duplicates: 1,
				Rejected:   map[string]int{"no_date": 38},
			},
			CreatedAt: createdAt,
		}
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveRun", func() {
		var (
			run *Run
			err error
		)

		BeforeEach(func() {
			run = newRun("run-1", time.Now())
		})

		JustBeforeEach(func() {
			err = db.SaveRun(run)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should save the run to the database", func() {
				saved, getErr := db.GetRun("run-1")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.ID).To(Equal("run-1"))
			})
		})

		When("the run already exists", func() {
			BeforeEach(func() {
				Expect(db.SaveRun(newRun("run-1", time.Now()))).To(Succeed())
				run.Error = "engine unavailable"
			})

			It("should overwrite it", func() {
				saved, getErr := db.GetRun("run-1")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.Error).To(Equal("engine unavailable"))
			})
		})
	})

	Describe("GetRun", func() {
		var (
			runID string
			run   *Run
			err   error
		)

		JustBeforeEach(func() {
			run, err = db.GetRun(runID)
		})

		When("run exists", func() {
			BeforeEach(func() {
				runID = "run-1"
				Expect(db.SaveRun(newRun(runID, time.Now()))).To(Succeed())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should round-trip the transactions", func() {
				Expect(run.Transactions).To(HaveLen(1))
				txn := run.Transactions[0]
				Expect(txn.Date.Format(extract.DateLayout)).To(Equal("2024-03-15"))
				Expect(txn.Description).To(Equal("GROCERY STORE PURCHASE"))
				Expect(txn.Amount.StringFixed(2)).To(Equal("1234.56"))
			})

			It("should round-trip the envelope", func() {
				Expect(run.PagesProcessed).To(Equal(3))
				Expect(run.Stats.Rejected).To(HaveKeyWithValue("no_date", 38))
			})
		})

		When("run does not exist", func() {
			BeforeEach(func() {
				runID = "nonexistent"
			})

			It("returns the error", func() {
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("run not found"))
			})
		})
	})

	Describe("ListRuns", func() {
		When("runs exist", func() {
			BeforeEach(func() {
				base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
				Expect(db.SaveRun(newRun("zzz", base))).To(Succeed())
				Expect(db.SaveRun(newRun("aaa", base.Add(time.Hour)))).To(Succeed())
			})

			It("should return them ordered by creation time", func() {
				runs, err := db.ListRuns()
				Expect(err).NotTo(HaveOccurred())
				Expect(runs).To(HaveLen(2))
				Expect(runs[0].ID).To(Equal("zzz"))
				Expect(runs[1].ID).To(Equal("aaa"))
			})
		})

		When("no runs exist", func() {
			It("should return an empty list", func() {
				runs, err := db.ListRuns()
				Expect(err).NotTo(HaveOccurred())
				Expect(runs).To(BeEmpty())
			})
		})
	})

	Describe("DeleteRun", func() {
		BeforeEach(func() {
			Expect(db.SaveRun(newRun("run-1", time.Now()))).To(Succeed())
		})

		It("should remove the run", func() {
			Expect(db.DeleteRun("run-1")).To(Succeed())
			_, err := db.GetRun("run-1")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("NewBoltDB", func() {
		When("the path is not writable", func() {
			It("returns the error", func() {
				_, err := NewBoltDB(filepath.Join(tmpDir, "missing", "dir", "test.db"))
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("opening boltdb"))
			})
		})
	})
})
