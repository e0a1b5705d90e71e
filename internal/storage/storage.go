package storage

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrUnsupportedContentType = errors.New("unsupported image content type")

// imageExtensions maps accepted member photo content types to file extensions.
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// MemberPhotoKey builds the object key for a new photo of a member:
// members/<gymID>/<memberRecordID>/<uuid>.<ext>
func MemberPhotoKey(gymID, memberRecordID, contentType string) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedContentType
	}
	return path.Join("members", gymID, memberRecordID, uuid.NewString()+"."+ext), nil
}

// IsMemberPhotoKey reports whether key lives under the given member's prefix.
// Used to reject image keys that point at another gym's objects.
func IsMemberPhotoKey(key, gymID, memberRecordID string) bool {
	prefix := path.Join("members", gymID, memberRecordID) + "/"
	return strings.HasPrefix(key, prefix) && !strings.Contains(key, "..")
}
