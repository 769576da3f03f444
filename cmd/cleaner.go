package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/liuqy/experiment-management/internal/spreadsheet"
)

var cleanSheetOutput string

var cleanSheetCmd = &cobra.Command{
	Use:   "clean-sheet <input.xlsx>",
	Short: "Drop data rows whose key column is blank",
	Long: `Reads a workbook, keeps the first 8 rows untouched, and drops every
later row whose ninth column is blank. The result is written to a new file.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input := args[0]
		output := cleanSheetOutput
		if output == "" {
			output = input + ".cleaned.xlsx"
		}

		result, err := spreadsheet.NewCleaner().Clean(input, output)
		if err != nil {
			log.Fatalf("clean-sheet: %v", err)
		}

		fmt.Printf("Wrote %s: kept %d of %d rows (%d dropped)\n",
			output, result.KeptRows, result.TotalRows, result.DroppedRows)
	},
}

func init() {
	cleanSheetCmd.Flags().StringVarP(&cleanSheetOutput, "output", "o", "", "output file path")
}
