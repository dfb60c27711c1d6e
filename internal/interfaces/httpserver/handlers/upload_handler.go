package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"soundtrack-server/services/upload-api/internal/config"
	domain "soundtrack-server/services/upload-api/internal/domain/upload"
	"soundtrack-server/services/upload-api/internal/infrastructure/logger"
	"soundtrack-server/services/upload-api/internal/infrastructure/metrics"
	"soundtrack-server/services/upload-api/internal/interfaces/httpserver/requests"
	"soundtrack-server/services/upload-api/internal/interfaces/httpserver/responses"
	"soundtrack-server/services/upload-api/internal/utils/platformerrors"
)

// UploadHandler exposes the upload endpoints.
type UploadHandler struct {
	cfg     *config.Config
	service domain.Service
	log     zerolog.Logger
}

func NewUploadHandler(cfg *config.Config, service domain.Service, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		cfg:     cfg,
		service: service,
		log:     logger.Component(log, "upload-handler"),
	}
}

// Upload godoc
// @Summary      Upload a media file
// @Description  Accepts a multipart file, stores the blob and records metadata.
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        file     formData  file    true   "File to upload"
// @Param        user_id  formData  string  false  "Owning user id"
// @Success      201  {object}  responses.UploadCreatedResponse
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      413  {object}  responses.ErrorResponse
// @Router       /api/upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	// Cap the whole request body so a lying Content-Length cannot make us
	// buffer more than the limit; one extra MiB covers multipart framing.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes+(1<<20))

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			metrics.RecordUpload("", "rejected", 0)
			responses.HandleNewError(c, platformerrors.ErrorTypePayloadTooLarge, "File size exceeds the 100MB limit")
			return
		}
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "No file uploaded")
		return
	}
	defer file.Close()

	// Reject oversized payloads before buffering them.
	if header.Size > h.cfg.MaxUploadBytes {
		metrics.RecordUpload(header.Header.Get("Content-Type"), "rejected", 0)
		responses.HandleNewError(c, platformerrors.ErrorTypePayloadTooLarge, "File size exceeds the 100MB limit")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !domain.MIMEAllowed(mimeType) {
		metrics.RecordUpload(mimeType, "rejected", 0)
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"Invalid file type: "+mimeType+". Only audio and video files are allowed.")
		return
	}

	var userID *int64
	if raw := c.Request.FormValue("user_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Invalid user_id")
			return
		}
		userID = &parsed
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read multipart file")
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Failed to read file")
		return
	}

	rec, err := h.service.Process(c.Request.Context(), domain.Input{
		Data:             data,
		OriginalFilename: header.Filename,
		MimeType:         mimeType,
		Size:             int64(len(data)),
		UserID:           userID,
	})
	if err != nil {
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("upload failed")
		metrics.RecordUpload(mimeType, "error", 0)
		responses.HandleError(c, err, "Failed to process upload")
		return
	}

	metrics.RecordUpload(mimeType, "success", rec.FileSize)
	c.JSON(http.StatusCreated, responses.BuildUploadCreated(rec))
}

// Get godoc
// @Summary      Get upload details
// @Tags         uploads
// @Produce      json
// @Param        id  path  int  true  "Upload id"
// @Success      200  {object}  responses.UploadDetailResponse
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /api/upload/{id} [get]
func (h *UploadHandler) Get(c *gin.Context) {
	id, ok := h.uploadID(c)
	if !ok {
		return
	}

	rec, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("get upload failed")
		responses.HandleError(c, err, "Failed to fetch upload")
		return
	}
	if rec == nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, "Upload not found")
		return
	}

	c.JSON(http.StatusOK, responses.BuildUploadDetail(rec, h.service.URL(rec)))
}

// List godoc
// @Summary      List uploads
// @Tags         uploads
// @Produce      json
// @Param        limit   query  int  false  "Page size"
// @Param        offset  query  int  false  "Page offset"
// @Success      200  {object}  responses.UploadListResponse
// @Router       /api/uploads [get]
func (h *UploadHandler) List(c *gin.Context) {
	var query requests.ListUploadsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Invalid pagination parameters")
		return
	}

	records, page, err := h.service.List(c.Request.Context(), query.Limit, query.Offset)
	if err != nil {
		h.log.Error().Err(err).Msg("list uploads failed")
		responses.HandleError(c, err, "Failed to fetch uploads")
		return
	}

	c.JSON(http.StatusOK, responses.BuildUploadList(records, page))
}

// File godoc
// @Summary      Stream the uploaded file
// @Tags         uploads
// @Produce      octet-stream
// @Param        id  path  int  true  "Upload id"
// @Success      200  "binary data"
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /api/upload/{id}/file [get]
func (h *UploadHandler) File(c *gin.Context) {
	id, ok := h.uploadID(c)
	if !ok {
		return
	}

	reader, mimeType, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("download failed")
		responses.HandleError(c, err, "Failed to fetch file")
		return
	}
	defer reader.Close()

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Header("Content-Type", mimeType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("stream error")
	}
}

func (h *UploadHandler) uploadID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Invalid upload ID")
		return 0, false
	}
	return id, true
}
