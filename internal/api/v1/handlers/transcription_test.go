package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"audioscribe/internal/api/errors"
	"audioscribe/internal/api/middleware"
	"audioscribe/internal/api/v1/dto"
	"audioscribe/internal/app/testutil"
)

func newHandlerRouter() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(zap.NewNop()))
	return router
}

// uploadForm builds a multipart body carrying optional form fields and, when
// filename is non-empty, an audio file part.
func uploadForm(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("audio", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestTranscriptionHandlerUpload(t *testing.T) {
	tests := []struct {
		name           string
		fields         map[string]string
		filename       string
		setupMocks     func(*testutil.MockServices)
		expectedStatus int
		validateBody   func(*testing.T, map[string]interface{})
	}{
		{
			name:     "successful upload",
			fields:   map[string]string{"user": "alice", "provider": "whisper_cpp"},
			filename: "interview.mp3",
			setupMocks: func(ms *testutil.MockServices) {
				ms.TranscriptionService.On("UploadTranscription", mock.Anything, mock.Anything, mock.Anything,
					mock.MatchedBy(func(req *dto.UploadTranscriptionRequest) bool {
						return req.User == "alice" && req.Provider == "whisper_cpp"
					})).
					Return(&dto.TranscriptionResponse{
						ID:            7,
						User:          "alice",
						FileName:      "interview.mp3",
						Status:        dto.StatusCompleted,
						Transcription: "the interview text",
						Provider:      "whisper_cpp",
						CreatedAt:     time.Now(),
					}, nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, float64(7), body["id"])
				assert.Equal(t, "completed", body["status"])
				assert.Equal(t, "the interview text", body["transcription"])
			},
		},
		{
			name:           "missing audio file",
			fields:         map[string]string{"user": "alice"},
			filename:       "",
			setupMocks:     func(ms *testutil.MockServices) {},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "bad_request", body["kind"])
				assert.Equal(t, "No audio file provided", body["message"])
			},
		},
		{
			name:           "user name too long",
			fields:         map[string]string{"user": strings.Repeat("a", 65)},
			filename:       "interview.mp3",
			setupMocks:     func(ms *testutil.MockServices) {},
			expectedStatus: http.StatusUnprocessableEntity,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "validation", body["kind"])
				details := body["details"].(map[string]interface{})
				assert.Contains(t, details, "user")
			},
		},
		{
			name:     "unknown provider",
			fields:   map[string]string{"provider": "nope"},
			filename: "interview.mp3",
			setupMocks: func(ms *testutil.MockServices) {
				ms.TranscriptionService.On("UploadTranscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.NewBadRequestError(`unknown provider "nope"`))
			},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "bad_request", body["kind"])
				assert.Contains(t, body["message"], "nope")
			},
		},
		{
			name:     "transcription failure",
			fields:   nil,
			filename: "interview.mp3",
			setupMocks: func(ms *testutil.MockServices) {
				ms.TranscriptionService.On("UploadTranscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.NewInternalError("Transcription failed"))
			},
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "internal", body["kind"])
				assert.Equal(t, "Transcription failed", body["message"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newHandlerRouter()
			ms := testutil.NewMockServices(t)
			tt.setupMocks(ms)

			handler := NewTranscriptionHandler(ms.TranscriptionService)
			router.POST("/api/v1/transcriptions/upload", handler.Upload)

			body, contentType := uploadForm(t, tt.fields, tt.filename, []byte("audio bytes"))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/transcriptions/upload", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.validateBody(t, decodeBody(t, w))
			ms.TranscriptionService.AssertExpectations(t)
		})
	}
}

func TestTranscriptionHandlerList(t *testing.T) {
	router := newHandlerRouter()
	ms := testutil.NewMockServices(t)

	ms.TranscriptionService.On("ListTranscriptions", mock.Anything, dto.ListTranscriptionsQuery{
		Page: 2, PageSize: 5, User: "alice",
	}).Return(&dto.PaginatedTranscriptionsResponse{
		Transcriptions: []dto.TranscriptionResponse{{ID: 12, Status: dto.StatusCompleted}},
		Pagination:     dto.NewPaginationResponse(dto.ListTranscriptionsQuery{Page: 2, PageSize: 5}, 11),
	}, nil)

	handler := NewTranscriptionHandler(ms.TranscriptionService)
	router.GET("/api/v1/transcriptions", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transcriptions?page=2&page_size=5&user=alice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(11), pagination["total"])
	assert.Len(t, body["transcriptions"], 1)
	ms.TranscriptionService.AssertExpectations(t)
}

func TestTranscriptionHandlerListRejectsBadQuery(t *testing.T) {
	router := newHandlerRouter()
	ms := testutil.NewMockServices(t)

	handler := NewTranscriptionHandler(ms.TranscriptionService)
	router.GET("/api/v1/transcriptions", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transcriptions?page=0", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", decodeBody(t, w)["kind"])
	ms.TranscriptionService.AssertNotCalled(t, "ListTranscriptions", mock.Anything, mock.Anything)
}

func TestTranscriptionHandlerGet(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		setupMocks     func(*testutil.MockServices)
		expectedStatus int
	}{
		{
			name: "found",
			id:   "42",
			setupMocks: func(ms *testutil.MockServices) {
				ms.TranscriptionService.On("GetTranscription", mock.Anything, int64(42)).
					Return(&dto.TranscriptionResponse{ID: 42, Status: dto.StatusCompleted}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "missing",
			id:   "43",
			setupMocks: func(ms *testutil.MockServices) {
				ms.TranscriptionService.On("GetTranscription", mock.Anything, int64(43)).
					Return(nil, errors.NewNotFoundError("Transcription"))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "non-numeric id",
			id:             "abc",
			setupMocks:     func(ms *testutil.MockServices) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero id",
			id:             "0",
			setupMocks:     func(ms *testutil.MockServices) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newHandlerRouter()
			ms := testutil.NewMockServices(t)
			tt.setupMocks(ms)

			handler := NewTranscriptionHandler(ms.TranscriptionService)
			router.GET("/api/v1/transcriptions/:id", handler.Get)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/transcriptions/"+tt.id, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			ms.TranscriptionService.AssertExpectations(t)
		})
	}
}

func TestTranscriptionHandlerDelete(t *testing.T) {
	router := newHandlerRouter()
	ms := testutil.NewMockServices(t)

	ms.TranscriptionService.On("DeleteTranscription", mock.Anything, int64(9)).Return(nil)

	handler := NewTranscriptionHandler(ms.TranscriptionService)
	router.DELETE("/api/v1/transcriptions/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/transcriptions/9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	ms.TranscriptionService.AssertExpectations(t)
}

func TestTranscriptionHandlerDeleteMissing(t *testing.T) {
	router := newHandlerRouter()
	ms := testutil.NewMockServices(t)

	ms.TranscriptionService.On("DeleteTranscription", mock.Anything, int64(9)).
		Return(errors.NewNotFoundError("Transcription"))

	handler := NewTranscriptionHandler(ms.TranscriptionService)
	router.DELETE("/api/v1/transcriptions/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/transcriptions/9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeBody(t, w)["kind"])
}
