package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"soundtrack-server/services/upload-api/internal/utils/platformerrors"
)

// ErrorResponse is the envelope returned for every failed request.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HandleError maps a domain error onto the response envelope. Callers only
// see the classified message; the wrapped cause stays in the logs.
func HandleError(reqCtx *gin.Context, err error, fallback string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		message := domainErr.Message
		if message == "" {
			message = fallback
		}

		reqCtx.AbortWithStatusJSON(
			platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType()),
			ErrorResponse{
				Success:   false,
				Error:     message,
				RequestID: domainErr.GetRequestID(),
			},
		)
		return
	}

	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error:   fallback,
	})
}

// HandleNewError classifies an error raised at the route layer and responds.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string) {
	err := platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerRoute, errorType, message, nil, "")

	reqCtx.AbortWithStatusJSON(
		platformerrors.ErrorTypeToHTTPStatus(errorType),
		ErrorResponse{
			Success:   false,
			Error:     message,
			RequestID: err.GetRequestID(),
		},
	)
}
