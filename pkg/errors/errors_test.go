package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Wrap(cause, CodeGenerationFailed, "generation failed")

	assert.True(t, HasCode(err, CodeGenerationFailed))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Contains(t, err.Error(), string(CodeGenerationFailed))
}

func TestHasCodeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrQuotaExceeded)
	assert.True(t, HasCode(err, CodeQuotaExceeded))
	assert.False(t, HasCode(err, CodeGenerationFailed))
	assert.False(t, HasCode(nil, CodeQuotaExceeded))
}

func TestAsAppErrorWrapsUnknown(t *testing.T) {
	appErr := AsAppError(stderrors.New("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, CodeUnknown, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
}

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	err := ErrInsufficientContent.WithDetail("project has no source content")
	assert.Equal(t, "project has no source content", err.Detail)
	assert.Empty(t, ErrInsufficientContent.Detail)
	assert.True(t, HasCode(err, CodeInsufficientContent))
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[ErrorCode]int{
		CodeQuotaExceeded:          http.StatusPaymentRequired,
		CodeUnsupportedPlatform:    http.StatusBadRequest,
		CodeInsufficientContent:    http.StatusBadRequest,
		CodeGenerationFailed:       http.StatusBadGateway,
		CodeInvalidContentPack:     http.StatusBadGateway,
		CodeNoOriginalContent:      http.StatusConflict,
		CodeVersionMismatch:        http.StatusConflict,
		CodeNotFoundOrAccessDenied: http.StatusNotFound,
		CodeServiceUnavailable:     http.StatusServiceUnavailable,
	}
	for code, want := range cases {
		assert.Equal(t, want, New(code, "x").HTTPStatus, string(code))
	}
}
