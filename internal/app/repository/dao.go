package repository

import (
	"errors"

	"audioscribe/internal/app/model"
)

// ErrNotFound is wrapped by operations that target one record by id, so
// callers can turn it into a 404 without parsing messages.
var ErrNotFound = errors.New("record not found")

// TranscriptionDAO is the persistence contract for transcription history.
// Both the sqlite and postgres drivers implement it; lookups that find
// nothing return (nil, nil) so callers can distinguish absence from failure.
type TranscriptionDAO interface {
	Close() error

	// Record inserts a finished transcription and returns its new ID.
	Record(t *model.Transcription) (int64, error)

	// GetByID returns one record, nil when it doesn't exist.
	GetByID(id int64) (*model.Transcription, error)

	// GetByFileHash finds an earlier transcription of identical audio,
	// which is what makes repeat uploads free.
	GetByFileHash(fileHash string) (*model.Transcription, error)

	// IsFileProcessed reports whether a file name already has a
	// successful transcription, used by batch runs to skip work.
	IsFileProcessed(fileName string) (bool, error)

	// GetAllByUser returns a user's successful transcriptions,
	// newest first.
	GetAllByUser(user string) ([]model.Transcription, error)

	// GetRecent returns the latest successful transcriptions across
	// all users.
	GetRecent(limit int) ([]model.Transcription, error)

	// GetByProvider returns the latest transcriptions ran by one
	// provider type.
	GetByProvider(providerType string, limit int) ([]model.Transcription, error)

	// List pages through history newest first, error rows included,
	// optionally narrowed to one user. It also returns the total
	// matching count for pagination headers.
	List(user string, offset, limit int) ([]model.Transcription, int, error)

	// CountByUser summarizes how many transcriptions each user has.
	CountByUser() ([]model.UserSummary, error)

	// SoftDelete hides a record without destroying history.
	SoftDelete(id int64) error
}
