package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"soundtrack-server/services/upload-api/internal/config"
	"soundtrack-server/services/upload-api/internal/infrastructure/logger"
)

var errLocalStorageDisabled = errors.New("local storage is not configured; set LOCAL_STORAGE_PATH to enable")

// LocalStorage stores blobs on the local filesystem, keyed by the same
// storage keys the S3 backend would use.
type LocalStorage struct {
	basePath string
	baseURL  string
	log      zerolog.Logger
	disabled bool
}

// NewLocalStorage creates a local filesystem storage backend.
func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	componentLog := logger.Component(log, "local-storage")

	basePath := strings.TrimSpace(cfg.LocalStoragePath)
	if basePath == "" {
		componentLog.Warn().Msg("LOCAL_STORAGE_PATH is not set; local storage will be disabled")
		return &LocalStorage{
			log:      componentLog,
			disabled: true,
		}, nil
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}

	store := &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(strings.TrimSpace(cfg.LocalStorageBaseURL), "/"),
		log:      componentLog,
	}

	componentLog.Info().
		Str("path", basePath).
		Str("base_url", store.baseURL).
		Msg("local storage initialized")

	return store, nil
}

func (l *LocalStorage) ensureEnabled() error {
	if l.disabled {
		return errLocalStorageDisabled
	}
	return nil
}

// Upload writes a blob under key. The file only becomes visible at its final
// path once fully written: the data goes to a temp file first and is renamed
// into place, so readers never observe a partial blob.
func (l *LocalStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string, metadata map[string]string) error {
	if err := l.ensureEnabled(); err != nil {
		return err
	}

	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	written, err := io.Copy(tmp, body)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if size > 0 && written != size {
		return fmt.Errorf("short write: wrote %d of %d bytes", written, size)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("failed to finalize file: %w", err)
	}

	l.log.Debug().
		Str("key", key).
		Int64("bytes", written).
		Str("content_type", contentType).
		Msg("blob written to local storage")

	return nil
}

// Download reads a blob from the local filesystem.
func (l *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := l.ensureEnabled(); err != nil {
		return nil, "", err
	}

	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("blob not found: %s", key)
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}

	return file, contentTypeFromPath(fullPath), nil
}

// URL returns the display URL for a key. If no base URL is configured the
// file path is returned as a file:// URL.
func (l *LocalStorage) URL(key string) string {
	if l.disabled {
		return ""
	}
	if l.baseURL != "" {
		return fmt.Sprintf("%s/%s", l.baseURL, filepath.ToSlash(key))
	}
	return fmt.Sprintf("file://%s", filepath.Join(l.basePath, filepath.FromSlash(key)))
}

// Health checks if the storage directory is writable.
func (l *LocalStorage) Health(ctx context.Context) error {
	if l.disabled {
		return nil
	}

	testFile := filepath.Join(l.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	_ = os.Remove(testFile)

	return nil
}

// contentTypeFromPath determines a content type from the file extension.
func contentTypeFromPath(path string) string {
	if contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}
