package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
)

// MaxImageSize is the largest accepted product image
const MaxImageSize = 5 << 20

// ImageStorage stores product images by key
type ImageStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageUpload is a product image received from the admin panel
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (u ImageUpload) validate() error {
	if len(u.Data) == 0 {
		return shared.NewDomainError("INVALID_IMAGE", "Image is empty")
	}
	if len(u.Data) > MaxImageSize {
		return shared.NewDomainError("INVALID_IMAGE", fmt.Sprintf("Image exceeds %d MB", MaxImageSize>>20))
	}
	if _, ok := imageExtensions[u.contentType()]; !ok {
		return shared.NewDomainError("INVALID_IMAGE", "Only JPEG, PNG, WebP and GIF images are accepted")
	}
	return nil
}

func (u ImageUpload) contentType() string {
	ct, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(u.ContentType)), ";")
	return strings.TrimSpace(ct)
}

// imageKey builds products/<product id>/<random>.<ext>
func imageKey(productID uuid.UUID, contentType string) string {
	return path.Join("products", productID.String(), uuid.New().String()+imageExtensions[contentType])
}
