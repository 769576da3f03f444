package sensor

import (
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/liuqy/experiment-management/internal"
)

func TestSensor(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Sensor Module Suite")
}

var _ = ginkgo.Describe("SensorDTO validation", func() {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	valid := func() SensorDTO {
		return SensorDTO{
			Name:      "CGM-7",
			PersonID:  1,
			BatchID:   1,
			StartTime: start,
		}
	}

	ginkgo.It("accepts an open wear period", func() {
		gomega.Expect(valid().Validate()).To(gomega.BeNil())
	})

	ginkgo.It("accepts end_time and end_reason together", func() {
		dto := valid()
		end := start.Add(14 * 24 * time.Hour)
		reason := "sensor detached"
		dto.EndTime = &end
		dto.EndReason = &reason
		gomega.Expect(dto.Validate()).To(gomega.BeNil())
	})

	ginkgo.It("rejects end_time without end_reason", func() {
		dto := valid()
		end := start.Add(time.Hour)
		dto.EndTime = &end

		err := dto.Validate()
		gomega.Expect(err).NotTo(gomega.BeNil())
		gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodeInvalidOperation))
	})

	ginkgo.It("rejects end_reason without end_time", func() {
		dto := valid()
		reason := "sensor detached"
		dto.EndReason = &reason

		err := dto.Validate()
		gomega.Expect(err).NotTo(gomega.BeNil())
		gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodeInvalidOperation))
	})

	ginkgo.It("rejects an end before the start", func() {
		dto := valid()
		end := start.Add(-time.Hour)
		reason := "mistake"
		dto.EndTime = &end
		dto.EndReason = &reason

		gomega.Expect(dto.Validate()).NotTo(gomega.BeNil())
	})

	ginkgo.It("rejects a blank end_reason", func() {
		dto := valid()
		end := start.Add(time.Hour)
		reason := "   "
		dto.EndTime = &end
		dto.EndReason = &reason

		gomega.Expect(dto.Validate()).NotTo(gomega.BeNil())
	})

	ginkgo.It("rejects a missing name", func() {
		dto := valid()
		dto.Name = " "
		gomega.Expect(dto.Validate()).NotTo(gomega.BeNil())
	})
})
