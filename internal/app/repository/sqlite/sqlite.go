package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"audioscribe/internal/app/model"
	"audioscribe/internal/app/repository"
)

var _ repository.TranscriptionDAO = (*SQLiteDB)(nil)

// schema is applied on every open; CREATE IF NOT EXISTS keeps it cheap.
const schema = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_nickname TEXT NOT NULL DEFAULT '',
	input_dir TEXT NOT NULL DEFAULT '',
	file_name TEXT NOT NULL DEFAULT '',
	audio_duration REAL NOT NULL DEFAULT 0,
	transcription TEXT NOT NULL DEFAULT '',
	has_error INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	file_hash TEXT NOT NULL DEFAULT '',
	file_size INTEGER NOT NULL DEFAULT 0,
	provider_type TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL DEFAULT '',
	model_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_file_hash ON transcriptions(file_hash);
CREATE INDEX IF NOT EXISTS idx_transcriptions_user ON transcriptions(user_nickname);
`

const selectColumns = `
	id, user_nickname, input_dir, file_name, audio_duration,
	transcription, has_error, error_message, file_hash, file_size,
	provider_type, language, model_name, created_at, updated_at, deleted_at`

// SQLiteDB stores transcription history in a local sqlite file.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (creating if needed) the database file and ensures the
// schema exists.
func NewSQLiteDB(dbFilePath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc", dbFilePath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

func (sdb *SQLiteDB) Close() error {
	return sdb.db.Close()
}

func (sdb *SQLiteDB) Record(t *model.Transcription) (int64, error) {
	insertSQL := `
		INSERT INTO transcriptions (
			user_nickname, input_dir, file_name, audio_duration,
			transcription, has_error, error_message, file_hash, file_size,
			provider_type, language, model_name, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := sdb.db.Exec(insertSQL,
		t.User, t.InputDir, t.FileName, t.AudioDuration,
		t.Text, t.HasError, t.ErrorMessage, t.FileHash, t.FileSize,
		t.Provider, t.Language, t.Model, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert transcription: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read insert id: %w", err)
	}
	return id, nil
}

func (sdb *SQLiteDB) GetByID(id int64) (*model.Transcription, error) {
	query := `SELECT ` + selectColumns + ` FROM transcriptions WHERE id = ?`
	return scanOne(sdb.db.QueryRow(query, id))
}

func (sdb *SQLiteDB) GetByFileHash(fileHash string) (*model.Transcription, error) {
	query := `SELECT ` + selectColumns + `
		FROM transcriptions
		WHERE file_hash = ? AND has_error = 0 AND deleted_at IS NULL
		ORDER BY id DESC
		LIMIT 1`
	return scanOne(sdb.db.QueryRow(query, fileHash))
}

func (sdb *SQLiteDB) IsFileProcessed(fileName string) (bool, error) {
	query := `SELECT id FROM transcriptions
		WHERE file_name = ? AND has_error = 0 AND deleted_at IS NULL
		LIMIT 1`

	var id int64
	err := sdb.db.QueryRow(query, fileName).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query failed: %w", err)
	}
	return true, nil
}

func (sdb *SQLiteDB) GetAllByUser(user string) ([]model.Transcription, error) {
	query := `SELECT ` + selectColumns + `
		FROM transcriptions
		WHERE user_nickname = ? AND has_error = 0 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	rows, err := sdb.db.Query(query, user)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return scanAll(rows)
}

func (sdb *SQLiteDB) GetRecent(limit int) ([]model.Transcription, error) {
	query := `SELECT ` + selectColumns + `
		FROM transcriptions
		WHERE has_error = 0 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := sdb.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return scanAll(rows)
}

func (sdb *SQLiteDB) GetByProvider(providerType string, limit int) ([]model.Transcription, error) {
	query := `SELECT ` + selectColumns + `
		FROM transcriptions
		WHERE provider_type = ? AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := sdb.db.Query(query, providerType, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return scanAll(rows)
}

func (sdb *SQLiteDB) List(user string, offset, limit int) ([]model.Transcription, int, error) {
	where := `WHERE deleted_at IS NULL`
	args := []interface{}{}
	if user != "" {
		where += ` AND user_nickname = ?`
		args = append(args, user)
	}

	var total int
	countSQL := `SELECT COUNT(*) FROM transcriptions ` + where
	if err := sdb.db.QueryRow(countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}

	query := `SELECT ` + selectColumns + `
		FROM transcriptions ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`
	rows, err := sdb.db.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query failed: %w", err)
	}

	transcriptions, err := scanAll(rows)
	if err != nil {
		return nil, 0, err
	}
	return transcriptions, total, nil
}

func (sdb *SQLiteDB) CountByUser() ([]model.UserSummary, error) {
	query := `SELECT user_nickname, COUNT(*) AS cnt
		FROM transcriptions
		WHERE has_error = 0 AND deleted_at IS NULL
		GROUP BY user_nickname
		ORDER BY cnt DESC`

	rows, err := sdb.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var summaries []model.UserSummary
	for rows.Next() {
		var s model.UserSummary
		if err := rows.Scan(&s.User, &s.Count); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (sdb *SQLiteDB) SoftDelete(id int64) error {
	updateSQL := `UPDATE transcriptions
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`

	result, err := sdb.db.Exec(updateSQL, id)
	if err != nil {
		return fmt.Errorf("soft delete failed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("soft delete record %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func scanOne(row *sql.Row) (*model.Transcription, error) {
	var t model.Transcription
	var deletedAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.User, &t.InputDir, &t.FileName, &t.AudioDuration,
		&t.Text, &t.HasError, &t.ErrorMessage, &t.FileHash, &t.FileSize,
		&t.Provider, &t.Language, &t.Model, &t.CreatedAt, &t.UpdatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}
	return &t, nil
}

func scanAll(rows *sql.Rows) ([]model.Transcription, error) {
	defer rows.Close()

	transcriptions := make([]model.Transcription, 0)
	for rows.Next() {
		var t model.Transcription
		var deletedAt sql.NullTime

		err := rows.Scan(
			&t.ID, &t.User, &t.InputDir, &t.FileName, &t.AudioDuration,
			&t.Text, &t.HasError, &t.ErrorMessage, &t.FileHash, &t.FileSize,
			&t.Provider, &t.Language, &t.Model, &t.CreatedAt, &t.UpdatedAt, &deletedAt)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if deletedAt.Valid {
			t.DeletedAt = &deletedAt.Time
		}
		transcriptions = append(transcriptions, t)
	}
	return transcriptions, rows.Err()
}
