package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundtrack-server/services/upload-api/internal/config"
	domain "soundtrack-server/services/upload-api/internal/domain/upload"
	"soundtrack-server/services/upload-api/internal/interfaces/httpserver/handlers"
	"soundtrack-server/services/upload-api/internal/interfaces/httpserver/routes/api"
	"soundtrack-server/services/upload-api/internal/utils/platformerrors"
)

// mockService is a func-field mock of the upload domain service.
type mockService struct {
	ProcessFunc      func(ctx context.Context, input domain.Input) (*domain.Upload, error)
	GetByIDFunc      func(ctx context.Context, id int64) (*domain.Upload, error)
	ListFunc         func(ctx context.Context, limit, offset int) ([]*domain.Upload, domain.Page, error)
	UpdateStatusFunc func(ctx context.Context, id int64, status domain.Status) (*domain.Upload, error)
	DownloadFunc     func(ctx context.Context, id int64) (io.ReadCloser, string, error)
	URLFunc          func(rec *domain.Upload) string
}

func (m *mockService) Process(ctx context.Context, input domain.Input) (*domain.Upload, error) {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, input)
	}
	return nil, nil
}

func (m *mockService) GetByID(ctx context.Context, id int64) (*domain.Upload, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockService) List(ctx context.Context, limit, offset int) ([]*domain.Upload, domain.Page, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, domain.Page{}, nil
}

func (m *mockService) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Upload, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, nil
}

func (m *mockService) Download(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, id)
	}
	return io.NopCloser(bytes.NewReader(nil)), "", nil
}

func (m *mockService) URL(rec *domain.Upload) string {
	if m.URLFunc != nil {
		return m.URLFunc(rec)
	}
	return ""
}

func testConfig() *config.Config {
	return &config.Config{
		MaxUploadBytes:   100 * 1024 * 1024,
		ListDefaultLimit: 100,
		ListMaxLimit:     1000,
	}
}

func newTestRouter(cfg *config.Config, svc domain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	provider := handlers.NewProvider(cfg, svc, zerolog.Nop())
	api.NewRoutes(provider).Register(engine)
	return engine
}

// multipartRequest builds a POST /api/upload request carrying one file part
// with an explicit part content type, plus optional extra form fields.
func multipartRequest(t *testing.T, filename, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUploadSuccess(t *testing.T) {
	var gotInput domain.Input
	svc := &mockService{
		ProcessFunc: func(ctx context.Context, input domain.Input) (*domain.Upload, error) {
			gotInput = input
			return &domain.Upload{
				ID:               12,
				Filename:         "song.mp3",
				OriginalFilename: "song.mp3",
				StorageKey:       "uploads/abc-123-song.mp3",
				FileSize:         input.Size,
				MimeType:         input.MimeType,
				Status:           domain.StatusUploaded,
				CreatedAt:        time.Now(),
			}, nil
		},
	}

	router := newTestRouter(testConfig(), svc)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "song.mp3", "audio/mpeg", []byte("ID3data"), map[string]string{"user_id": "7"}))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "song.mp3", gotInput.OriginalFilename)
	assert.Equal(t, "audio/mpeg", gotInput.MimeType)
	assert.Equal(t, []byte("ID3data"), gotInput.Data)
	require.NotNil(t, gotInput.UserID)
	assert.Equal(t, int64(7), *gotInput.UserID)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "File uploaded successfully", body["message"])
	uploadBody, ok := body["upload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(12), uploadBody["id"])
	assert.Equal(t, "song.mp3", uploadBody["filename"])
	assert.Equal(t, "uploads/abc-123-song.mp3", uploadBody["s3Key"])
	assert.Equal(t, "uploaded", uploadBody["status"])
}

func TestUploadMissingFile(t *testing.T) {
	router := newTestRouter(testConfig(), &mockService{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("user_id", "7"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "No file uploaded", body["error"])
}

func TestUploadTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 16

	processed := false
	svc := &mockService{
		ProcessFunc: func(ctx context.Context, input domain.Input) (*domain.Upload, error) {
			processed = true
			return nil, nil
		},
	}

	router := newTestRouter(cfg, svc)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "big.mp3", "audio/mpeg", bytes.Repeat([]byte("x"), 64), nil))

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, processed, "oversized payload must be rejected before the service runs")
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestUploadDisallowedMime(t *testing.T) {
	router := newTestRouter(testConfig(), &mockService{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "doc.pdf", "application/pdf", []byte("%PDF"), nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "application/pdf")
}

func TestUploadInvalidUserID(t *testing.T) {
	router := newTestRouter(testConfig(), &mockService{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "song.mp3", "audio/mpeg", []byte("data"), map[string]string{"user_id": "not-a-number"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid user_id", body["error"])
}

func TestUploadServiceFailure(t *testing.T) {
	svc := &mockService{
		ProcessFunc: func(ctx context.Context, input domain.Input) (*domain.Upload, error) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeExternal,
				"storage service error",
				io.ErrUnexpectedEOF,
				"00000000-0000-0000-0000-000000000000",
			)
		},
	}

	router := newTestRouter(testConfig(), svc)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "song.mp3", "audio/mpeg", []byte("data"), nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "storage service error", body["error"])
}

func TestGetUpload(t *testing.T) {
	svc := &mockService{
		GetByIDFunc: func(ctx context.Context, id int64) (*domain.Upload, error) {
			if id != 5 {
				return nil, nil
			}
			return &domain.Upload{ID: 5, StorageKey: "uploads/k", Status: domain.StatusUploaded}, nil
		},
		URLFunc: func(rec *domain.Upload) string {
			return "https://cdn.example.com/" + rec.StorageKey
		},
	}
	router := newTestRouter(testConfig(), svc)

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/upload/5", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "https://cdn.example.com/uploads/k", body["url"])
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/upload/999", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Upload not found", body["error"])
	})

	t.Run("non-numeric id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/upload/abc", nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Invalid upload ID", body["error"])
	})
}

func TestListUploads(t *testing.T) {
	svc := &mockService{
		ListFunc: func(ctx context.Context, limit, offset int) ([]*domain.Upload, domain.Page, error) {
			assert.Equal(t, 2, limit)
			assert.Equal(t, 4, offset)
			return []*domain.Upload{
				{ID: 2, Status: domain.StatusUploaded},
				{ID: 1, Status: domain.StatusFailed},
			}, domain.Page{Limit: 2, Offset: 4}, nil
		},
	}

	router := newTestRouter(testConfig(), svc)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/uploads?limit=2&offset=4", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["count"])
	pagination, ok := body["pagination"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), pagination["limit"])
	assert.Equal(t, float64(4), pagination["offset"])
}

func TestFileStreamsBlob(t *testing.T) {
	svc := &mockService{
		DownloadFunc: func(ctx context.Context, id int64) (io.ReadCloser, string, error) {
			return io.NopCloser(bytes.NewReader([]byte("binary-bytes"))), "audio/mpeg", nil
		},
	}

	router := newTestRouter(testConfig(), svc)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/upload/3/file", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "binary-bytes", rec.Body.String())
}

func TestFileNotFound(t *testing.T) {
	svc := &mockService{
		DownloadFunc: func(ctx context.Context, id int64) (io.ReadCloser, string, error) {
			return nil, "", platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeNotFound,
				"upload 3 not found",
				nil,
				"00000000-0000-0000-0000-000000000000",
			)
		},
	}

	router := newTestRouter(testConfig(), svc)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/upload/3/file", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}
