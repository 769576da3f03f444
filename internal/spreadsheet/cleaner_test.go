package spreadsheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

func TestSpreadsheet(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Spreadsheet Module Suite")
}

var _ = ginkgo.Describe("Cleaner", func() {
	var (
		dir    string
		input  string
		output string
	)

	writeWorkbook := func(rows [][]interface{}) {
		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(f.SetSheetRow(sheet, cell, &row)).To(gomega.Succeed())
		}
		gomega.Expect(f.SaveAs(input)).To(gomega.Succeed())
	}

	readRows := func(path string) [][]string {
		f, err := excelize.OpenFile(path)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return rows
	}

	// dataRow fills ten columns; key goes into the ninth.
	dataRow := func(label, key string) []interface{} {
		row := make([]interface{}, 10)
		for i := range row {
			row[i] = label
		}
		row[8] = key
		return row
	}

	ginkgo.BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "cleaner")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		input = filepath.Join(dir, "input.xlsx")
		output = filepath.Join(dir, "output.xlsx")
	})

	ginkgo.AfterEach(func() {
		os.RemoveAll(dir)
	})

	ginkgo.It("keeps the first 8 rows and drops blank-key data rows", func() {
		var rows [][]interface{}
		for i := 0; i < 8; i++ {
			rows = append(rows, dataRow("header", ""))
		}
		rows = append(rows,
			dataRow("r1", "8.4"),
			dataRow("r2", ""),
			dataRow("r3", "9.1"),
			dataRow("r4", "   "),
			dataRow("r5", "7.7"),
		)
		writeWorkbook(rows)

		result, err := NewCleaner().Clean(input, output)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(result.TotalRows).To(gomega.Equal(13))
		gomega.Expect(result.KeptRows).To(gomega.Equal(11))
		gomega.Expect(result.DroppedRows).To(gomega.Equal(2))

		got := readRows(output)
		gomega.Expect(got).To(gomega.HaveLen(11))
		gomega.Expect(got[8][0]).To(gomega.Equal("r1"))
		gomega.Expect(got[9][0]).To(gomega.Equal("r3"))
		gomega.Expect(got[10][0]).To(gomega.Equal("r5"))
	})

	ginkgo.It("drops rows too short to reach the key column", func() {
		var rows [][]interface{}
		for i := 0; i < 8; i++ {
			rows = append(rows, dataRow("header", ""))
		}
		rows = append(rows, []interface{}{"short", "row"})
		writeWorkbook(rows)

		result, err := NewCleaner().Clean(input, output)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(result.DroppedRows).To(gomega.Equal(1))
		gomega.Expect(result.KeptRows).To(gomega.Equal(8))
	})

	ginkgo.It("truncates rows to ten columns", func() {
		wide := make([]interface{}, 12)
		for i := range wide {
			wide[i] = "x"
		}
		var rows [][]interface{}
		rows = append(rows, wide)
		for i := 0; i < 7; i++ {
			rows = append(rows, dataRow("header", ""))
		}
		writeWorkbook(rows)

		_, err := NewCleaner().Clean(input, output)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		got := readRows(output)
		gomega.Expect(got[0]).To(gomega.HaveLen(10))
	})

	ginkgo.It("fails cleanly on a missing input file", func() {
		_, err := NewCleaner().Clean(filepath.Join(dir, "absent.xlsx"), output)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
