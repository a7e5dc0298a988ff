package pg

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"audioscribe/internal/app/model"
	"audioscribe/internal/app/repository"
)

var _ repository.TranscriptionDAO = (*PostgresDB)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id SERIAL PRIMARY KEY,
	user_nickname TEXT NOT NULL DEFAULT '',
	input_dir TEXT NOT NULL DEFAULT '',
	file_name TEXT NOT NULL DEFAULT '',
	audio_duration DOUBLE PRECISION NOT NULL DEFAULT 0,
	transcription TEXT NOT NULL DEFAULT '',
	has_error BOOLEAN NOT NULL DEFAULT FALSE,
	error_message TEXT NOT NULL DEFAULT '',
	file_hash TEXT NOT NULL DEFAULT '',
	file_size BIGINT NOT NULL DEFAULT 0,
	provider_type TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL DEFAULT '',
	model_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	deleted_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_file_hash ON transcriptions(file_hash);
CREATE INDEX IF NOT EXISTS idx_transcriptions_user ON transcriptions(user_nickname);
`

const selectColumns = `
	id, user_nickname, input_dir, file_name, audio_duration,
	transcription, has_error, error_message, file_hash, file_size,
	provider_type, language, model_name, created_at, updated_at, deleted_at`

// PostgresDB stores transcription history in PostgreSQL, for deployments
// where several workers share one history.
type PostgresDB struct {
	db *sql.DB
}

// New wraps an already-open connection. Tests inject sqlmock through here.
func New(db *sql.DB) *PostgresDB {
	return &PostgresDB{db: db}
}

// Open connects with a lib/pq connection string, verifies the connection and
// ensures the schema exists.
func Open(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply postgres schema: %w", err)
	}
	return &PostgresDB{db: db}, nil
}

func (pdb *PostgresDB) Close() error {
	return pdb.db.Close()
}

func (pdb *PostgresDB) Record(t *model.Transcription) (int64, error) {
	insertSQL := `
		INSERT INTO transcriptions (
			user_nickname, input_dir, file_name, audio_duration,
			transcription, has_error, error_message, file_hash, file_size,
			provider_type, language, model_name, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	var id int64
	err := pdb.db.QueryRow(insertSQL,
		t.User, t.InputDir, t.FileName, t.AudioDuration,
		t.Text, t.HasError, t.ErrorMessage, t.FileHash, t.FileSize,
		t.Provider, t.Language, t.Model, t.CreatedAt, t.UpdatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transcription: %w", err)
	}
	return id, nil
}

func (pdb *PostgresDB) GetByID(id int64) (*model.Transcription, error) {
	query := `SELECT ` + selectColumns + ` FROM transcriptions WHERE id = $1`
	return scanOne(pdb.db.QueryRow(query, id))
}

func (pdb *PostgresDB) GetByFileHash(fileHash string) (*model.Transcription, error) {
	query := `SELECT ` + selectColumns + `
		FROM transcriptions
		WHERE file_hash = $1 AND has_error = FALSE AND deleted_at IS NULL
		ORDER BY id DESC
		LIMIT 1`
	return scanOne(pdb.db.QueryRow(query, fileHash))
}

func (pdb *PostgresDB) IsFileProcessed(fileName string) (bool, error) {
	query := `SELECT id FROM transcriptions
		WHERE file_name = $1 AND has_error = FALSE AND deleted_at IS NULL
		LIMIT 1`

	var id int64
	err := pdb.db.QueryRow(query, fileName).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query failed: %w", err)
	}
	return true, nil
}

func (pdb *PostgresDB) GetAllByUser(user string) ([]model.Transcription, error) {
	query := `SELECT ` + selectColumns + `
		FROM transcriptions
		WHERE user_nickname = $1 AND has_error = FALSE AND deleted_at IS NULL
		ORDER BY created_at DESC`

	rows, err := pdb.db.Query(query, user)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return scanAll(rows)
}

func (pdb *PostgresDB) GetRecent(limit int) ([]model.Transcription, error) {
	query := `SELECT ` + selectColumns + `
		FROM transcriptions
		WHERE has_error = FALSE AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := pdb.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return scanAll(rows)
}

func (pdb *PostgresDB) GetByProvider(providerType string, limit int) ([]model.Transcription, error) {
	query := `SELECT ` + selectColumns + `
		FROM transcriptions
		WHERE provider_type = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := pdb.db.Query(query, providerType, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return scanAll(rows)
}

func (pdb *PostgresDB) List(user string, offset, limit int) ([]model.Transcription, int, error) {
	where := `WHERE deleted_at IS NULL`
	args := []interface{}{}
	if user != "" {
		where += ` AND user_nickname = $1`
		args = append(args, user)
	}

	var total int
	countSQL := `SELECT COUNT(*) FROM transcriptions ` + where
	if err := pdb.db.QueryRow(countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+selectColumns+`
		FROM transcriptions %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	rows, err := pdb.db.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query failed: %w", err)
	}

	transcriptions, err := scanAll(rows)
	if err != nil {
		return nil, 0, err
	}
	return transcriptions, total, nil
}

func (pdb *PostgresDB) CountByUser() ([]model.UserSummary, error) {
	query := `SELECT user_nickname, COUNT(*) AS cnt
		FROM transcriptions
		WHERE has_error = FALSE AND deleted_at IS NULL
		GROUP BY user_nickname
		ORDER BY cnt DESC`

	rows, err := pdb.db.Query(query)
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

func (pdb *PostgresDB) SoftDelete(id int64) error {
	updateSQL := `UPDATE transcriptions
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := pdb.db.Exec(updateSQL, id)
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
