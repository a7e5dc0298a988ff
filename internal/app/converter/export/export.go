// Package export writes transcription history to spreadsheet files.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/tealeg/xlsx"

	"audioscribe/internal/app/model"
)

var headers = []string{
	"ID", "User", "Created At", "File Name", "Duration (s)",
	"Provider", "Language", "Transcription", "Error Message",
}

// ToExcel writes transcriptions to an xlsx file at outputFilePath.
func ToExcel(transcriptions []model.Transcription, outputFilePath string) error {
	file, err := build(transcriptions)
	if err != nil {
		return err
	}
	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("save %s: %w", outputFilePath, err)
	}
	return nil
}

// Write streams the workbook to w, for HTTP attachment downloads.
func Write(transcriptions []model.Transcription, w io.Writer) error {
	file, err := build(transcriptions)
	if err != nil {
		return err
	}
	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func build(transcriptions []model.Transcription) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transcriptions")
	if err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().Value = h
	}

	for _, t := range transcriptions {
		row := sheet.AddRow()
		row.AddCell().Value = fmt.Sprint(t.ID)
		row.AddCell().Value = t.User
		row.AddCell().Value = t.CreatedAt.Format(time.RFC3339)
		row.AddCell().Value = t.FileName
		row.AddCell().Value = fmt.Sprintf("%.2f", t.AudioDuration)
		row.AddCell().Value = t.Provider
		row.AddCell().Value = t.Language
		row.AddCell().Value = t.Text
		row.AddCell().Value = t.ErrorMessage
	}

	return file, nil
}
