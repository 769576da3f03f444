package fingerblood

import (
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestFingerBlood(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "FingerBlood Module Suite")
}

var _ = ginkgo.Describe("RecordDTO validation", func() {
	valid := func() RecordDTO {
		return RecordDTO{
			PersonID:          1,
			BatchID:           1,
			CollectionTime:    time.Date(2025, 3, 1, 7, 30, 0, 0, time.UTC),
			BloodGlucoseValue: 5.6,
		}
	}

	ginkgo.It("accepts a well-formed record", func() {
		gomega.Expect(valid().Validate()).To(gomega.BeNil())
	})

	ginkgo.It("rejects a non-positive glucose value", func() {
		dto := valid()
		dto.BloodGlucoseValue = 0
		gomega.Expect(dto.Validate()).NotTo(gomega.BeNil())
	})

	ginkgo.It("rejects more than two decimal places", func() {
		dto := valid()
		dto.BloodGlucoseValue = 5.678
		gomega.Expect(dto.Validate()).NotTo(gomega.BeNil())
	})

	ginkgo.It("accepts exactly two decimal places", func() {
		dto := valid()
		dto.BloodGlucoseValue = 12.75
		gomega.Expect(dto.Validate()).To(gomega.BeNil())
	})

	ginkgo.It("rejects a value beyond the column range", func() {
		dto := valid()
		dto.BloodGlucoseValue = 1234.5
		gomega.Expect(dto.Validate()).NotTo(gomega.BeNil())
	})

	ginkgo.It("rejects a missing collection time", func() {
		dto := valid()
		dto.CollectionTime = time.Time{}
		gomega.Expect(dto.Validate()).NotTo(gomega.BeNil())
	})
})
