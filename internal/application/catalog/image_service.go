package catalog

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	imageKeyPrefix        = "products/"
	defaultMaxImageSize   = 5 << 20
	defaultDownloadExpiry = 15 * time.Minute
)

var (
	ErrImageTooLarge    = shared.NewDomainError("PAYLOAD_TOO_LARGE", "Image exceeds the maximum upload size")
	ErrUnsupportedImage = shared.NewDomainError("INVALID_FILE_TYPE", "Only jpeg, png, webp and gif images are allowed")
	ErrImageNotFound    = shared.NewDomainError("NOT_FOUND", "Image not found")
	ErrEmptyImage       = shared.NewDomainError("INVALID_INPUT", "Image file is empty")
)

// allowedImageTypes maps sniffed content types to the stored file extension
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ObjectStorage defines the object storage operations used for product images.
// Implemented by the S3 and local filesystem backends.
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// LocalFileLocator is implemented by backends that keep objects on local disk
type LocalFileLocator interface {
	LocalPath(storageKey string) (string, error)
}

// ImageServiceConfig holds upload limits and URL settings
type ImageServiceConfig struct {
	MaxSize int64
	// PublicURLPrefix is prepended to the key in returned URLs, e.g. /api/v1/uploads/
	PublicURLPrefix string
	DownloadExpiry  time.Duration
}

// UploadImageResponse is returned after a successful upload
type UploadImageResponse struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// ImageLocation tells the transport how to serve an image.
// Exactly one of RedirectURL and FilePath is set.
type ImageLocation struct {
	RedirectURL string
	FilePath    string
}

// ImageService stores product images in object storage
type ImageService struct {
	storage ObjectStorage
	config  ImageServiceConfig
}

// NewImageService creates a new ImageService
func NewImageService(storage ObjectStorage, config ImageServiceConfig) *ImageService {
	if config.MaxSize <= 0 {
		config.MaxSize = defaultMaxImageSize
	}
	if config.DownloadExpiry <= 0 {
		config.DownloadExpiry = defaultDownloadExpiry
	}
	if config.PublicURLPrefix == "" {
		config.PublicURLPrefix = "/uploads/"
	}
	if !strings.HasSuffix(config.PublicURLPrefix, "/") {
		config.PublicURLPrefix += "/"
	}
	return &ImageService{storage: storage, config: config}
}

// MaxSize returns the largest accepted upload in bytes
func (s *ImageService) MaxSize() int64 {
	return s.config.MaxSize
}

// Upload validates data as an image and stores it under a fresh key.
// The content type is sniffed from the bytes; the client supplied name is ignored.
func (s *ImageService) Upload(ctx context.Context, data []byte) (*UploadImageResponse, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if int64(len(data)) > s.config.MaxSize {
		return nil, ErrImageTooLarge
	}
	contentType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedImage
	}

	key := imageKeyPrefix + uuid.NewString() + ext
	if err := s.storage.Upload(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	return &UploadImageResponse{
		Key:         key,
		URL:         s.config.PublicURLPrefix + key,
		ContentType: contentType,
		Size:        len(data),
	}, nil
}

// Locate resolves a stored image key for download
func (s *ImageService) Locate(ctx context.Context, key string) (*ImageLocation, error) {
	key, err := cleanImageKey(key)
	if err != nil {
		return nil, err
	}
	exists, err := s.storage.ObjectExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrImageNotFound
	}

	if locator, ok := s.storage.(LocalFileLocator); ok {
		p, err := locator.LocalPath(key)
		if err != nil {
			return nil, err
		}
		return &ImageLocation{FilePath: p}, nil
	}

	url, _, err := s.storage.GenerateDownloadURL(ctx, key, s.config.DownloadExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign image download: %w", err)
	}
	return &ImageLocation{RedirectURL: url}, nil
}

// Delete removes a stored image
func (s *ImageService) Delete(ctx context.Context, key string) error {
	key, err := cleanImageKey(key)
	if err != nil {
		return err
	}
	return s.storage.DeleteObject(ctx, key)
}

// cleanImageKey only accepts keys minted by Upload
func cleanImageKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	cleaned := path.Clean(key)
	if cleaned != key || !strings.HasPrefix(cleaned, imageKeyPrefix) || strings.Contains(cleaned, "..") {
		return "", ErrImageNotFound
	}
	if _, ok := allowedExtension(path.Ext(cleaned)); !ok {
		return "", ErrImageNotFound
	}
	return cleaned, nil
}

func allowedExtension(ext string) (string, bool) {
	for contentType, e := range allowedImageTypes {
		if e == ext {
			return contentType, true
		}
	}
	return "", false
}
