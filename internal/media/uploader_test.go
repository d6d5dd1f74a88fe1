package media

import (
	"bytes"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImageAcceptsPNG(t *testing.T) {
	data := testutil.TinyPNG(t, 32, 32)
	assert.NoError(t, ValidateImage(data, "image/png"))
}

func TestValidateImageAcceptsMissingContentType(t *testing.T) {
	data := testutil.TinyPNG(t, 8, 8)
	assert.NoError(t, ValidateImage(data, ""))
}

func TestValidateImageRejectsEmptyPayload(t *testing.T) {
	err := ValidateImage(nil, "image/png")
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Equal(t, "No file uploaded", appErr.Message)
}

func TestValidateImageRejectsNonImageBytes(t *testing.T) {
	err := ValidateImage([]byte("definitely not an image"), "image/png")
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestValidateImageRejectsContentTypeMismatch(t *testing.T) {
	data := testutil.TinyPNG(t, 8, 8)
	err := ValidateImage(data, "image/jpeg")
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "Image content type mismatch", appErr.Message)
}

func TestValidateImageRejectsTruncatedImage(t *testing.T) {
	data := testutil.TinyPNG(t, 32, 32)
	truncated := data[:len(data)/2]
	// DetectContentType still sees the PNG magic, but the decode must fail.
	require.True(t, bytes.HasPrefix(truncated, []byte("\x89PNG")))
	err := ValidateImage(truncated, "image/png")
	require.Error(t, err)
}

func TestValidateImageRejectsOversizedPayload(t *testing.T) {
	data := testutil.TinyPNG(t, 8, 8)
	padded := append(data, make([]byte, MaxUploadSizeBytes)...)
	err := ValidateImage(padded, "image/png")
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Contains(t, appErr.Message, "File too large")
}
