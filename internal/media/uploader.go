// Package media uploads article images to an external media service.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"net/http"
	"strings"

	"inkwell/internal/models"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// MaxUploadSizeBytes bounds the accepted image payload.
	MaxUploadSizeBytes = 10 * 1024 * 1024
)

// Uploader stores an image with an external media service and returns the
// public URL under which it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// ValidateImage checks that data looks like a supported image before it is
// handed to the upload collaborator. The declared content type, when present,
// must agree with what the bytes actually decode as.
func ValidateImage(data []byte, declaredContentType string) error {
	if len(data) == 0 {
		return models.NewValidationError("No file uploaded")
	}
	if int64(len(data)) > MaxUploadSizeBytes {
		return models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", MaxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(data)
	if !isAllowedImageMIME(detectedType) {
		return models.NewValidationError("Invalid image type")
	}

	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return models.NewValidationError("Invalid image file")
	}
	if !isSupportedDecodedFormat(format) {
		return models.NewValidationError("Unsupported image format")
	}

	if provided := normalizeContentType(declaredContentType); strings.HasPrefix(provided, "image/") {
		if !isMatchingContentType(provided, decodedFormatToMime(format)) {
			return models.NewValidationError("Image content type mismatch")
		}
	}

	return nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}
