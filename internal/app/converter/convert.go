// Package converter drives batch transcription of local directories: scan,
// skip what history already has, fan the rest out to the provider and record
// every outcome.
package converter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"audioscribe/internal/app/api/provider"
	"audioscribe/internal/app/audio"
	"audioscribe/internal/app/model"
	"audioscribe/internal/app/repository"
	"audioscribe/internal/app/util/files"
	"audioscribe/internal/app/utils"
)

// Options controls one batch run.
type Options struct {
	User      string
	InputDir  string
	Extension string // e.g. ".mp3"; empty matches any known audio extension
	Limit     int    // max files to process this run; 0 means all
	Parallel  int    // concurrent provider calls; 0 means 1
	Language  string
	Prompt    string

	Progress ProgressConfig
}

// Summary reports what a batch run did.
type Summary struct {
	Scanned   int
	Skipped   int
	Reused    int
	Succeeded int
	Failed    int
}

type Converter struct {
	transcriber provider.Transcriber
	db          repository.TranscriptionDAO
	logger      *zap.Logger
}

func NewConverter(transcriber provider.Transcriber, db repository.TranscriptionDAO, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		transcriber: transcriber,
		db:          db,
		logger:      logger,
	}
}

func (c *Converter) Close() error {
	return c.db.Close()
}

// ConvertDir transcribes every unprocessed audio file in a directory.
// Individual failures are recorded and counted, not fatal: one broken file
// must not sink a thousand-file batch.
func (c *Converter) ConvertDir(ctx context.Context, opts Options) (*Summary, error) {
	fileInfos, err := files.ListAudioFiles(opts.InputDir, opts.Extension)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", opts.InputDir, err)
	}

	summary := &Summary{Scanned: len(fileInfos)}
	toProcess, err := c.filterUnprocessed(fileInfos, opts.Limit, summary)
	if err != nil {
		return nil, err
	}
	if len(toProcess) == 0 {
		c.logger.Info("nothing to do",
			zap.String("dir", opts.InputDir),
			zap.Int("scanned", summary.Scanned),
			zap.Int("skipped", summary.Skipped))
		return summary, nil
	}

	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}

	pm := NewProgressManager(opts.Progress)
	bar := pm.CreateBar(len(toProcess), progressLabel("Transcribing", opts.User))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	sem := make(chan struct{}, parallel)

	for _, fileInfo := range toProcess {
		wg.Add(1)
		go func(fi model.FileInfo) {
			defer wg.Done()
			defer bar.Increment()

			sem <- struct{}{}
			outcome := c.processFile(ctx, opts, fi)
			<-sem

			mu.Lock()
			switch outcome {
			case outcomeReused:
				summary.Reused++
			case outcomeFailed:
				summary.Failed++
			default:
				summary.Succeeded++
			}
			mu.Unlock()
		}(fileInfo)
	}
	wg.Wait()
	bar.Complete()
	pm.Wait()

	c.logger.Info("batch finished",
		zap.String("dir", opts.InputDir),
		zap.Int("scanned", summary.Scanned),
		zap.Int("skipped", summary.Skipped),
		zap.Int("reused", summary.Reused),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func (c *Converter) filterUnprocessed(fileInfos []model.FileInfo, limit int, summary *Summary) ([]model.FileInfo, error) {
	toProcess := make([]model.FileInfo, 0, len(fileInfos))
	for _, fileInfo := range fileInfos {
		processed, err := c.db.IsFileProcessed(fileInfo.Name)
		if err != nil {
			return nil, fmt.Errorf("check history for %s: %w", fileInfo.Name, err)
		}
		if processed {
			summary.Skipped++
			c.logger.Debug("already processed, skipping", zap.String("file", fileInfo.Name))
			continue
		}
		toProcess = append(toProcess, fileInfo)
		if limit > 0 && len(toProcess) >= limit {
			break
		}
	}
	return toProcess, nil
}

type outcome int

const (
	outcomeSucceeded outcome = iota
	outcomeReused
	outcomeFailed
)

func (c *Converter) processFile(ctx context.Context, opts Options, fileInfo model.FileInfo) outcome {
	record := &model.Transcription{
		User:      opts.User,
		InputDir:  opts.InputDir,
		FileName:  fileInfo.Name,
		Provider:  c.transcriber.Info().Name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	fileHash, err := utils.CalculateFileHash(fileInfo.FullPath)
	if err != nil {
		return c.recordFailure(record, fmt.Errorf("hash %s: %w", fileInfo.Name, err))
	}
	record.FileHash = fileHash
	if size, err := utils.GetFileSize(fileInfo.FullPath); err == nil {
		record.FileSize = size
	}

	// Same bytes under a different name: reuse the stored transcript
	// instead of paying for the provider again.
	if previous, err := c.db.GetByFileHash(fileHash); err == nil && previous != nil {
		record.Text = previous.Text
		record.AudioDuration = previous.AudioDuration
		record.Language = previous.Language
		record.Model = previous.Model
		if _, err := c.db.Record(record); err != nil {
			c.logger.Error("record reused transcription", zap.String("file", fileInfo.Name), zap.Error(err))
			return outcomeFailed
		}
		c.logger.Info("reused transcription for identical content",
			zap.String("file", fileInfo.Name),
			zap.Int64("source_id", previous.ID))
		return outcomeReused
	}

	result, err := c.transcriber.Transcribe(ctx, &provider.Request{
		InputFilePath: fileInfo.FullPath,
		Language:      opts.Language,
		Prompt:        opts.Prompt,
		User:          opts.User,
	})
	if err != nil {
		return c.recordFailure(record, fmt.Errorf("transcribe %s: %w", fileInfo.Name, err))
	}

	record.Text = result.Text
	record.Language = result.Language
	record.Model = result.Model
	record.AudioDuration = result.AudioDuration
	if record.AudioDuration == 0 {
		// Best effort; a missing ffprobe should not fail the batch.
		if duration, err := audio.GetAudioDuration(ctx, fileInfo.FullPath); err == nil {
			record.AudioDuration = duration
		}
	}

	if _, err := c.db.Record(record); err != nil {
		c.logger.Error("record transcription", zap.String("file", fileInfo.Name), zap.Error(err))
		return outcomeFailed
	}

	c.logger.Info("transcribed",
		zap.String("file", fileInfo.Name),
		zap.Float64("duration_seconds", record.AudioDuration),
		zap.Int("text_length", len(record.Text)))
	return outcomeSucceeded
}

func (c *Converter) recordFailure(record *model.Transcription, cause error) outcome {
	record.HasError = true
	record.ErrorMessage = cause.Error()
	record.Text = ""
	if _, err := c.db.Record(record); err != nil {
		c.logger.Error("record failure row", zap.String("file", record.FileName), zap.Error(err))
	}
	c.logger.Warn("file failed", zap.String("file", record.FileName), zap.Error(cause))
	return outcomeFailed
}

func progressLabel(action, user string) string {
	if user != "" {
		return fmt.Sprintf("%s (%s)", action, user)
	}
	return action
}
