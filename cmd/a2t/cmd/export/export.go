package export

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"audioscribe/internal/api/v1/services"
	"audioscribe/internal/app"
	"audioscribe/internal/app/converter/export"
)

var (
	user           string
	outputFilePath string
)

func init() {
	Cmd.Flags().StringVarP(&user, "user", "n", "",
		"Only export this user's transcriptions (default: everyone)")
	Cmd.Flags().StringVarP(&outputFilePath, "output", "o", "",
		"Path of the xlsx file to write")

	Cmd.MarkFlagRequired("output")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export transcription history to excel",
	Long: `Export transcription history to excel.

- One row per successful transcription: user, file, duration, text, timestamp
- With --user only that user's history is exported`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dao := app.InitializeHistory()
		defer dao.Close()

		if user != "" {
			transcriptions, err := dao.GetAllByUser(user)
			if err != nil {
				return err
			}
			if err := export.ToExcel(transcriptions, outputFilePath); err != nil {
				return err
			}
			fmt.Printf("export finished, exported file path: %v\n", outputFilePath)
			return nil
		}

		summaries, err := dao.CountByUser()
		if err != nil {
			return err
		}
		for _, s := range summaries {
			fmt.Printf("%s: %d transcription(s)\n", s.User, s.Count)
		}

		f, err := os.Create(outputFilePath)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := services.NewExportService(dao).ExportTranscriptions(cmd.Context(), "", f); err != nil {
			return err
		}
		fmt.Printf("export finished, exported file path: %v\n", outputFilePath)
		return nil
	},
}
