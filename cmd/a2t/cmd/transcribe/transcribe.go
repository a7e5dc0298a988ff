package transcribe

import (
	"fmt"

	"github.com/spf13/cobra"

	"audioscribe/internal/app"
	"audioscribe/internal/app/converter"
	"audioscribe/internal/logging"
)

var (
	user      string
	inputDir  string
	extension string
	limit     int
	parallel  int
	language  string
	prompt    string
	progress  bool
)

func init() {
	Cmd.Flags().StringVarP(&user, "user", "n", "",
		"Who owns the recordings; fills the 'user' column in history and scopes duplicate detection")
	Cmd.Flags().StringVarP(&inputDir, "input", "i", "",
		"Directory containing the audio files, example: ./data/recordings")
	Cmd.Flags().StringVarP(&extension, "extension", "e", "",
		"Only process files with this extension, example: .mp3 (default: any known audio extension)")
	Cmd.Flags().IntVarP(&limit, "limit", "l", 0,
		"Stop after this many new files (0 = no limit)")
	Cmd.Flags().IntVarP(&parallel, "parallel", "p", 1,
		"Number of files transcribed concurrently")
	Cmd.Flags().StringVar(&language, "language", "",
		"Spoken language hint passed to the provider, example: en")
	Cmd.Flags().StringVar(&prompt, "prompt", "",
		"Context prompt passed to the provider to steer vocabulary")
	Cmd.Flags().BoolVar(&progress, "progress", false,
		"Force progress bars even when stderr is not a terminal")

	Cmd.MarkFlagRequired("user")
	Cmd.MarkFlagRequired("input")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe all audio files in a directory",
	Long: `Transcribe all audio files in a directory.

- Scans the directory for audio files and skips ones already in history
- Reuses earlier results for identical file content
- Runs the configured transcription provider on the rest and records every outcome`,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger, err := logging.New(logging.Options{Verbose: verbose})
		if err != nil {
			return err
		}
		defer logger.Sync()

		conv := app.InitializeConverter(logger)
		defer conv.Close()

		summary, err := conv.ConvertDir(cmd.Context(), converter.Options{
			User:      user,
			InputDir:  inputDir,
			Extension: extension,
			Limit:     limit,
			Parallel:  parallel,
			Language:  language,
			Prompt:    prompt,
			Progress: converter.ProgressConfig{
				Enabled: converter.ShouldShowProgress(progress),
			},
		})
		if err != nil {
			return err
		}

		fmt.Printf("scanned %d file(s): %d skipped, %d reused, %d transcribed, %d failed\n",
			summary.Scanned, summary.Skipped, summary.Reused, summary.Succeeded, summary.Failed)
		if summary.Failed > 0 {
			return fmt.Errorf("%d file(s) failed to transcribe", summary.Failed)
		}
		return nil
	},
}
