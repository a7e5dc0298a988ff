package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"audioscribe/internal/app/testutil"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func TestExportHandlerXLSX(t *testing.T) {
	router := newHandlerRouter()
	ms := testutil.NewMockServices(t)

	ms.ExportService.On("ExportTranscriptions", mock.Anything, "", mock.Anything).
		Run(func(args mock.Arguments) {
			_, err := args.Get(2).(io.Writer).Write([]byte("workbook bytes"))
			require.NoError(t, err)
		}).
		Return(nil)

	handler := NewExportHandler(ms.ExportService)
	router.GET("/api/v1/export/xlsx", handler.ExportXLSX)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/xlsx", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.Equal(t, "workbook bytes", w.Body.String())
	ms.ExportService.AssertExpectations(t)
}

func TestExportHandlerXLSXUserFilter(t *testing.T) {
	router := newHandlerRouter()
	ms := testutil.NewMockServices(t)

	ms.ExportService.On("ExportTranscriptions", mock.Anything, "alice", mock.Anything).Return(nil)

	handler := NewExportHandler(ms.ExportService)
	router.GET("/api/v1/export/xlsx", handler.ExportXLSX)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/xlsx?user=alice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	ms.ExportService.AssertExpectations(t)
}

func TestExportHandlerXLSXFailure(t *testing.T) {
	router := newHandlerRouter()
	ms := testutil.NewMockServices(t)

	ms.ExportService.On("ExportTranscriptions", mock.Anything, "", mock.Anything).
		Return(assert.AnError)

	handler := NewExportHandler(ms.ExportService)
	router.GET("/api/v1/export/xlsx", handler.ExportXLSX)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/xlsx", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// The error answer is JSON, not a half-promised attachment.
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, w.Body.String(), `"kind":"internal"`)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
