// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
)

// UploaderStub is an in-memory media uploader for tests. It records every
// upload and returns a deterministic URL, or Err when set.
type UploaderStub struct {
	mu      sync.Mutex
	Err     error
	Uploads []string
}

// NewUploaderStub creates an uploader stub that accepts every upload.
func NewUploaderStub() *UploaderStub {
	return &UploaderStub{}
}

// Upload records the filename and returns a fake public URL.
func (s *UploaderStub) Upload(_ context.Context, filename string, _ []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	s.Uploads = append(s.Uploads, filename)
	return fmt.Sprintf("https://media.test/articles/%s", filename), nil
}

// UploadCount returns how many uploads the stub has accepted.
func (s *UploaderStub) UploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Uploads)
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
