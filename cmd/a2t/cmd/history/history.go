package history

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"audioscribe/internal/app"
	"audioscribe/internal/app/model"
)

var (
	user  string
	limit int
)

func init() {
	Cmd.Flags().StringVarP(&user, "user", "n", "",
		"Only show this user's transcriptions")
	Cmd.Flags().IntVarP(&limit, "limit", "l", 10,
		"How many rows to show")
}

// Cmd represents the history command
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent transcriptions",
	Long: `Show recent transcriptions from the history store, newest first.

- Without --user the latest rows across all users are shown
- Use export for the full history as a spreadsheet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dao := app.InitializeHistory()
		defer dao.Close()

		var rows []model.Transcription
		var err error
		if user != "" {
			rows, err = dao.GetAllByUser(user)
			if err == nil && len(rows) > limit {
				rows = rows[:limit]
			}
		} else {
			rows, err = dao.GetRecent(limit)
		}
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			fmt.Println("no transcriptions yet")
			return nil
		}

		for _, row := range rows {
			fmt.Printf("#%d  %s  %s  %s  %.0fs\n  %s\n",
				row.ID,
				row.CreatedAt.Format("2006-01-02 15:04"),
				row.User,
				row.FileName,
				row.AudioDuration,
				preview(row.Text))
		}
		return nil
	},
}

// preview keeps terminal output to one line per transcript.
func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > 100 {
		return text[:100] + "..."
	}
	return text
}
