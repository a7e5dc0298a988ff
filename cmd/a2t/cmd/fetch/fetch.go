package fetch

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"audioscribe/internal/app"
	"audioscribe/internal/app/converter"
	"audioscribe/internal/app/fetch"
	"audioscribe/internal/app/util/files"
	"audioscribe/internal/logging"
)

var (
	outputDir  string
	transcribe bool
	user       string
)

func init() {
	Cmd.Flags().StringVarP(&outputDir, "output", "o", "",
		"Directory to save the downloaded audio (default: <project>/data/fetched)")
	Cmd.Flags().BoolVar(&transcribe, "transcribe", false,
		"Transcribe the downloaded audio right away")
	Cmd.Flags().StringVarP(&user, "user", "n", "",
		"History owner for --transcribe")
}

// Cmd represents the fetch command
var Cmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download the audio behind a web page",
	Long: `Download the audio behind a web page.

- Direct media URLs are downloaded as-is
- Pages are scanned for audio markup and audio metadata
- With --transcribe the download is fed straight into the batch pipeline`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if transcribe && user == "" {
			return errors.New("--transcribe needs --user to own the history rows")
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		logger, err := logging.New(logging.Options{Verbose: verbose})
		if err != nil {
			return err
		}
		defer logger.Sync()

		dir := outputDir
		if dir == "" {
			dir, err = files.GetDataDir("fetched")
			if err != nil {
				return err
			}
		}

		path, err := fetch.New(logger).FetchToDir(cmd.Context(), args[0], dir)
		if err != nil {
			return err
		}
		fmt.Printf("saved %s\n", path)

		if !transcribe {
			return nil
		}

		conv := app.InitializeConverter(logger)
		defer conv.Close()

		summary, err := conv.ConvertDir(cmd.Context(), converter.Options{
			User:     user,
			InputDir: dir,
			Progress: converter.ProgressConfig{
				Enabled: converter.ShouldShowProgress(false),
			},
		})
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d file(s) failed to transcribe", summary.Failed)
		}
		fmt.Printf("transcribed %d file(s) (%d reused)\n", summary.Succeeded, summary.Reused)
		return nil
	},
}
