package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// ErrMediaDisabled is returned by uploads when no media host is configured.
var ErrMediaDisabled = errors.New("media uploads are not configured")

// MediaStore is the image host posts and profiles upload to.
type MediaStore interface {
	// Upload stores an image given as a data URI and returns its public URL
	// and the id needed to destroy it later.
	Upload(ctx context.Context, dataURI string) (url, publicID string, err error)
	Destroy(ctx context.Context, publicID string) error
}

type CloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryService(cloudName, apiKey, apiSecret, folder string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld:    cld,
		folder: folder,
	}, nil
}

func (s *CloudinaryService) Upload(ctx context.Context, dataURI string) (string, string, error) {
	uploadResult, err := s.cld.Upload.Upload(ctx, dataURI, uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       uuid.NewString(),
		ResourceType:   "image",
		UniqueFilename: api.Bool(false),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if uploadResult.Error.Message != "" {
		return "", "", fmt.Errorf("cloudinary rejected upload: %s", uploadResult.Error.Message)
	}

	return uploadResult.SecureURL, uploadResult.PublicID, nil
}

func (s *CloudinaryService) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to destroy Cloudinary asset: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary rejected destroy: %s", res.Error.Message)
	}
	return nil
}

// disabledMedia answers every upload with ErrMediaDisabled.
type disabledMedia struct{}

func (disabledMedia) Upload(context.Context, string) (string, string, error) {
	return "", "", ErrMediaDisabled
}

func (disabledMedia) Destroy(context.Context, string) error { return nil }

// DisabledMedia is used when Cloudinary credentials are absent.
func DisabledMedia() MediaStore { return disabledMedia{} }

// toDataURI accepts either a data URI or bare base64 and returns a data
// URI. Bare payloads are assumed to be PNG.
func toDataURI(img string) string {
	img = strings.TrimSpace(img)
	if strings.HasPrefix(img, "data:image") {
		return img
	}
	return "data:image/png;base64," + img
}
