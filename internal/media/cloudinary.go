package media

import (
	"bytes"
	"context"
	"errors"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const uploadFolder = "articles"

// CloudinaryUploader uploads images to Cloudinary. Credentials are passed in
// at construction time; the client holds no process-global state.
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
}

// NewCloudinaryUploader builds an uploader from the configured credentials.
func NewCloudinaryUploader(cfg *config.Config) (*CloudinaryUploader, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, errors.New("cloudinary credentials are not configured")
	}
	client, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{client: client}, nil
}

// UnconfiguredUploader stands in when no media credentials are set. Upload
// attempts fail with an upstream error instead of preventing startup, so
// development without Cloudinary still serves everything but image writes.
type UnconfiguredUploader struct{}

func (UnconfiguredUploader) Upload(context.Context, string, []byte) (string, error) {
	return "", models.NewUpstreamError("cloudinary", errors.New("media uploads are not configured"))
}

// Upload sends the image bytes to Cloudinary and returns the secure URL.
// Failures of the remote service surface as upstream errors so callers can
// tell a collaborator fault from a local one.
func (u *CloudinaryUploader) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	result, err := u.client.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       uploadFolder,
		ResourceType: "image",
		Format:       "webp",
	})
	if err != nil {
		return "", models.NewUpstreamError("cloudinary", err)
	}
	if result == nil || result.SecureURL == "" {
		return "", models.NewUpstreamError("cloudinary", errors.New("upload returned no secure URL"))
	}
	return result.SecureURL, nil
}
