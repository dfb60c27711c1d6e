package platformerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypeToHTTPStatus(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      int
	}{
		{ErrorTypeNotFound, http.StatusNotFound},
		{ErrorTypeValidation, http.StatusBadRequest},
		{ErrorTypePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{ErrorTypeConflict, http.StatusConflict},
		{ErrorTypeNotImplemented, http.StatusNotImplemented},
		{ErrorTypeDatabaseError, http.StatusInternalServerError},
		{ErrorTypeExternal, http.StatusInternalServerError},
		{ErrorTypeInternal, http.StatusInternalServerError},
		{ErrorType("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorTypeToHTTPStatus(tt.errorType))
		})
	}
}

func TestNewErrorCarriesRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req_abc")

	err := NewError(ctx, LayerDomain, ErrorTypeValidation, "file is empty", nil, "uuid-1")
	assert.Equal(t, "req_abc", err.GetRequestID())
	assert.Equal(t, ErrorTypeValidation, err.GetErrorType())
	assert.Equal(t, "uuid-1", err.GetUUID())
}

func TestRequestIDFromContextMissing(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestIsErrorType(t *testing.T) {
	err := NewError(context.Background(), LayerRepository, ErrorTypeConflict, "duplicate key", nil, "")

	assert.True(t, IsErrorType(err, ErrorTypeConflict))
	assert.False(t, IsErrorType(err, ErrorTypeNotFound))
	assert.False(t, IsErrorType(nil, ErrorTypeConflict))
	assert.False(t, IsErrorType(errors.New("plain"), ErrorTypeConflict))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsErrorType(wrapped, ErrorTypeConflict), "classification must survive wrapping")
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(context.Background(), LayerInfrastructure, ErrorTypeExternal, "storage service error", cause, "")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "storage service error")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAsErrorPreservesClassification(t *testing.T) {
	inner := NewError(context.Background(), LayerRepository, ErrorTypeNotFound, "row missing", nil, "uuid-9")

	outer := AsError(context.Background(), LayerDomain, inner, "lookup failed")
	require.NotNil(t, outer)
	assert.Equal(t, ErrorTypeNotFound, outer.Type)
	assert.Equal(t, "uuid-9", outer.UUID)
	assert.Equal(t, LayerDomain, outer.Layer)

	plain := AsError(context.Background(), LayerDomain, errors.New("boom"), "lookup failed")
	require.NotNil(t, plain)
	assert.Equal(t, ErrorTypeInternal, plain.Type)

	assert.Nil(t, AsError(context.Background(), LayerDomain, nil, "no-op"))
}
