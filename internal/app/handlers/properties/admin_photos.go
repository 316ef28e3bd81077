package properties

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"coastalstay/internal/app/commands"
	"coastalstay/internal/app/dto"
	"coastalstay/internal/app/policies"
	domainproperties "coastalstay/internal/domain/properties"
	domainuser "coastalstay/internal/domain/user"
)

const uploadPhotoKey = "admin.properties.photo"

const maxPhotoBytes = 10 << 20

var (
	ErrPhotoStorageMissing = errors.New("properties: photo storage is not configured")
	ErrPhotoType           = errors.New("properties: photo must be jpeg, png or webp")
	ErrPhotoTooLarge       = errors.New("properties: photo exceeds 10MB")
)

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type UploadPhotoCommand struct {
	Ref         string `validate:"required"`
	ContentType string `validate:"required"`
	Size        int64
	Reader      io.Reader
}

func (c UploadPhotoCommand) Key() string                   { return uploadPhotoKey }
func (c UploadPhotoCommand) RequiredRole() domainuser.Role { return domainuser.RoleEditor }

type UploadPhotoHandler struct {
	Writer
	Storage policies.PhotoStorage
}

func (h *UploadPhotoHandler) Handle(ctx context.Context, cmd UploadPhotoCommand) (*dto.AdminPropertyDetail, error) {
	if h.Storage == nil {
		return nil, ErrPhotoStorageMissing
	}
	if cmd.Reader == nil {
		return nil, errors.New("properties: photo content is required")
	}
	ext, ok := photoExtensions[strings.ToLower(strings.TrimSpace(cmd.ContentType))]
	if !ok {
		return nil, ErrPhotoType
	}
	if cmd.Size > maxPhotoBytes {
		return nil, ErrPhotoTooLarge
	}
	return h.apply(ctx, cmd.Ref, 0, func(p *domainproperties.Property) error {
		key := path.Join("properties", string(p.ID), uuid.NewString()+ext)
		url, err := h.Storage.Upload(ctx, key, cmd.Reader, cmd.Size, cmd.ContentType)
		if err != nil {
			return fmt.Errorf("upload photo: %w", err)
		}
		return p.AddImage(url, h.Clock.Now())
	})
}

var _ commands.Handler[UploadPhotoCommand, *dto.AdminPropertyDetail] = (*UploadPhotoHandler)(nil)
