package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"audioscribe/internal/api/errors"
	"audioscribe/internal/metrics"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func performRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestRequestIDGenerated(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())

	var seen string
	router.GET("/ping", func(c *gin.Context) {
		seen = c.GetString(RequestIDKey)
		c.Status(http.StatusOK)
	})

	recorder := performRequest(router, http.MethodGet, "/ping")

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))
}

func TestRequestIDHonorsCallerHeader(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	request.Header.Set("X-Request-ID", "upstream-id-7")
	router.ServeHTTP(recorder, request)

	assert.Equal(t, "upstream-id-7", recorder.Header().Get("X-Request-ID"))
}

func TestErrorHandlerKeepsAPIErrorStatus(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), ErrorHandler(zap.NewNop()))
	router.GET("/missing", func(c *gin.Context) {
		HandleError(c, errors.NewNotFoundError("transcription"))
	})

	recorder := performRequest(router, http.MethodGet, "/missing")

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"kind":"not_found"`)
	assert.Contains(t, recorder.Body.String(), "transcription not found")
	assert.Contains(t, recorder.Body.String(), `"request_id"`)
}

func TestErrorHandlerHidesInternalDetails(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), ErrorHandler(zap.NewNop()))
	router.GET("/boom", func(c *gin.Context) {
		HandleError(c, assert.AnError)
	})

	recorder := performRequest(router, http.MethodGet, "/boom")

	// The raw error text must never reach the client.
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Internal server error")
	assert.NotContains(t, recorder.Body.String(), assert.AnError.Error())
}

func TestErrorHandlerRecoversNonErrorPanic(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(zap.NewNop()))
	router.GET("/panic", func(c *gin.Context) {
		panic("something completely unexpected")
	})

	recorder := performRequest(router, http.MethodGet, "/panic")

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Internal server error")
}

func TestHandleErrorNilIsNoOp(t *testing.T) {
	router := gin.New()
	router.GET("/fine", func(c *gin.Context) {
		HandleError(c, nil)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	recorder := performRequest(router, http.MethodGet, "/fine")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestCORSHeaders(t *testing.T) {
	router := gin.New()
	router.Use(CORS(DefaultCORSConfig()))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	recorder := performRequest(router, http.MethodGet, "/ping")

	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "3600", recorder.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, recorder.Header().Get("Access-Control-Expose-Headers"), "X-Request-ID")
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS(DefaultCORSConfig()))
	router.POST("/transcribe", func(c *gin.Context) { c.Status(http.StatusOK) })

	recorder := performRequest(router, http.MethodOptions, "/transcribe")

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORSSpecificOrigin(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowOrigins = []string{"https://app.example.com"}

	router := gin.New()
	router.Use(CORS(config))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	request.Header.Set("Origin", "https://app.example.com")
	router.ServeHTTP(recorder, request)
	assert.Equal(t, "https://app.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))

	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodGet, "/ping", nil)
	request.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(recorder, request)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

type pageQuery struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
	User     string `form:"user"`
}

func TestValidateQueryDefaults(t *testing.T) {
	router := gin.New()

	var query pageQuery
	router.GET("/list", func(c *gin.Context) {
		if err := ValidateQuery(c, &query); err != nil {
			HandleError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	recorder := performRequest(router, http.MethodGet, "/list")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, query.Page)
	assert.Equal(t, 20, query.PageSize)
}

func TestValidateQueryRejectsOutOfRange(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(zap.NewNop()))
	router.GET("/list", func(c *gin.Context) {
		var query pageQuery
		if err := ValidateQuery(c, &query); err != nil {
			HandleError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	recorder := performRequest(router, http.MethodGet, "/list?page=0&page_size=500")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"kind":"bad_request"`)
	assert.Contains(t, recorder.Body.String(), `"page"`)
	assert.Contains(t, recorder.Body.String(), `"pagesize"`)
}

type guardedRequest struct {
	Name string `json:"name"`
}

func (r *guardedRequest) Validate() error {
	if r.Name == "forbidden" {
		return errors.NewBadRequestError("that name is reserved")
	}
	return nil
}

func TestValidateRequestRunsDomainRules(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(zap.NewNop()))
	router.POST("/things", func(c *gin.Context) {
		var req guardedRequest
		if err := ValidateRequest(c, &req); err != nil {
			HandleError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	post := func(body string) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusCreated, post(`{"name":"ok"}`).Code)

	recorder := post(`{"name":"forbidden"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "that name is reserved")

	recorder = post(`{"name":`)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "malformed request")
}

func TestHTTPMetricsRecordsRouteTemplate(t *testing.T) {
	m := metrics.New()

	router := gin.New()
	router.Use(HTTPMetrics(m))
	router.GET("/api/v1/transcriptions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	performRequest(router, http.MethodGet, "/api/v1/transcriptions/42")
	performRequest(router, http.MethodGet, "/api/v1/transcriptions/43")

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Both requests land on one series keyed by the route template.
	assert.Contains(t, recorder.Body.String(),
		`audioscribe_http_requests_total{method="GET",path="/api/v1/transcriptions/:id",status="200"} 2`)
}

func TestHTTPMetricsUnmatchedRoute(t *testing.T) {
	m := metrics.New()

	router := gin.New()
	router.Use(HTTPMetrics(m))

	performRequest(router, http.MethodGet, "/no/such/route")

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Contains(t, recorder.Body.String(), `path="unmatched"`)
}
