// Package testutil provides shared fakes for the transcription provider and
// history store, so service and handler tests do not need a real backend.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"audioscribe/internal/app/api/provider"
	"audioscribe/internal/app/model"
	"audioscribe/internal/app/repository"
)

var _ provider.Transcriber = (*MockTranscriber)(nil)

// MockTranscriber implements provider.Transcriber with configurable responses
// and records every call it receives.
type MockTranscriber struct {
	mu sync.Mutex

	Name        string
	DefaultText string
	Err         error
	HealthErr   error
	Latency     time.Duration
	ResponseMap map[string]*provider.Result
	ErrorMap    map[string]error

	Calls []*provider.Request
}

func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{
		Name:        "mock",
		DefaultText: "mock transcription result",
		ResponseMap: make(map[string]*provider.Result),
		ErrorMap:    make(map[string]error),
	}
}

func (m *MockTranscriber) WithText(text string) *MockTranscriber {
	m.DefaultText = text
	return m
}

func (m *MockTranscriber) WithError(err error) *MockTranscriber {
	m.Err = err
	return m
}

func (m *MockTranscriber) WithHealthError(err error) *MockTranscriber {
	m.HealthErr = err
	return m
}

func (m *MockTranscriber) WithLatency(d time.Duration) *MockTranscriber {
	m.Latency = d
	return m
}

// WithResultFor pins the result returned for one input path.
func (m *MockTranscriber) WithResultFor(inputFilePath string, result *provider.Result) *MockTranscriber {
	m.ResponseMap[inputFilePath] = result
	return m
}

// WithErrorFor makes only the given input path fail.
func (m *MockTranscriber) WithErrorFor(inputFilePath string, err error) *MockTranscriber {
	m.ErrorMap[inputFilePath] = err
	return m
}

func (m *MockTranscriber) Transcribe(ctx context.Context, request *provider.Request) (*provider.Result, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, request)
	m.mu.Unlock()

	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := m.ErrorMap[request.InputFilePath]; ok {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if result, ok := m.ResponseMap[request.InputFilePath]; ok {
		return result, nil
	}
	return &provider.Result{
		Text:     m.DefaultText,
		Language: "en",
		Model:    "mock-model",
	}, nil
}

func (m *MockTranscriber) Info() provider.Info {
	return provider.Info{
		Name:        m.Name,
		DisplayName: "Mock Transcriber",
		Type:        provider.TypeLocal,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV, provider.FormatMP3, provider.FormatWebM,
		},
		DefaultModel: "mock-model",
	}
}

func (m *MockTranscriber) HealthCheck(ctx context.Context) error {
	return m.HealthErr
}

// CallCount returns how many Transcribe calls were made.
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or nil if none were made.
func (m *MockTranscriber) LastCall() *provider.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	return m.Calls[len(m.Calls)-1]
}

var _ repository.TranscriptionDAO = (*MockDAO)(nil)

// MockDAO is an in-memory repository.TranscriptionDAO. It behaves like the
// real drivers (soft deletes filter, lookups return nil when missing) and
// supports error injection per method name.
type MockDAO struct {
	mu     sync.Mutex
	nextID int64
	rows   []*model.Transcription

	CloseErr error
	Errs     map[string]error
}

func NewMockDAO() *MockDAO {
	return &MockDAO{nextID: 1, Errs: make(map[string]error)}
}

func (d *MockDAO) WithCloseError(err error) *MockDAO {
	d.CloseErr = err
	return d
}

// WithError makes the named method ("Record", "GetByFileHash", ...) fail.
func (d *MockDAO) WithError(method string, err error) *MockDAO {
	d.Errs[method] = err
	return d
}

func (d *MockDAO) Close() error {
	return d.CloseErr
}

func (d *MockDAO) Record(t *model.Transcription) (int64, error) {
	if err := d.Errs["Record"]; err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	stored := *t
	stored.ID = d.nextID
	d.nextID++
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}
	d.rows = append(d.rows, &stored)
	return stored.ID, nil
}

func (d *MockDAO) GetByID(id int64) (*model.Transcription, error) {
	if err := d.Errs["GetByID"]; err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, row := range d.rows {
		if row.ID == id {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (d *MockDAO) GetByFileHash(fileHash string) (*model.Transcription, error) {
	if err := d.Errs["GetByFileHash"]; err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	// Newest first, matching the real drivers.
	for i := len(d.rows) - 1; i >= 0; i-- {
		row := d.rows[i]
		if row.FileHash == fileHash && !row.HasError && row.DeletedAt == nil {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (d *MockDAO) IsFileProcessed(fileName string) (bool, error) {
	if err := d.Errs["IsFileProcessed"]; err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, row := range d.rows {
		if row.FileName == fileName && !row.HasError && row.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (d *MockDAO) GetAllByUser(user string) ([]model.Transcription, error) {
	if err := d.Errs["GetAllByUser"]; err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []model.Transcription
	for i := len(d.rows) - 1; i >= 0; i-- {
		row := d.rows[i]
		if row.User == user && !row.HasError && row.DeletedAt == nil {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (d *MockDAO) GetRecent(limit int) ([]model.Transcription, error) {
	if err := d.Errs["GetRecent"]; err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []model.Transcription
	for i := len(d.rows) - 1; i >= 0 && len(out) < limit; i-- {
		row := d.rows[i]
		if !row.HasError && row.DeletedAt == nil {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (d *MockDAO) GetByProvider(providerType string, limit int) ([]model.Transcription, error) {
	if err := d.Errs["GetByProvider"]; err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []model.Transcription
	for i := len(d.rows) - 1; i >= 0 && len(out) < limit; i-- {
		row := d.rows[i]
		if row.Provider == providerType && row.DeletedAt == nil {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (d *MockDAO) List(user string, offset, limit int) ([]model.Transcription, int, error) {
	if err := d.Errs["List"]; err != nil {
		return nil, 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var matching []model.Transcription
	for i := len(d.rows) - 1; i >= 0; i-- {
		row := d.rows[i]
		if row.DeletedAt != nil {
			continue
		}
		if user != "" && row.User != user {
			continue
		}
		matching = append(matching, *row)
	}

	total := len(matching)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matching[offset:end], total, nil
}

func (d *MockDAO) CountByUser() ([]model.UserSummary, error) {
	if err := d.Errs["CountByUser"]; err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	counts := make(map[string]int)
	var order []string
	for _, row := range d.rows {
		if row.HasError || row.DeletedAt != nil {
			continue
		}
		if _, seen := counts[row.User]; !seen {
			order = append(order, row.User)
		}
		counts[row.User]++
	}

	out := make([]model.UserSummary, 0, len(order))
	for _, user := range order {
		out = append(out, model.UserSummary{User: user, Count: counts[user]})
	}
	return out, nil
}

func (d *MockDAO) SoftDelete(id int64) error {
	if err := d.Errs["SoftDelete"]; err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, row := range d.rows {
		if row.ID == id && row.DeletedAt == nil {
			now := time.Now()
			row.DeletedAt = &now
			return nil
		}
	}
	return fmt.Errorf("soft delete record %d: %w", id, repository.ErrNotFound)
}

// Rows returns a snapshot of everything recorded, including error rows.
func (d *MockDAO) Rows() []model.Transcription {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]model.Transcription, 0, len(d.rows))
	for _, row := range d.rows {
		out = append(out, *row)
	}
	return out
}
