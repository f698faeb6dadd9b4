package service

import (
	"context"

	"creatorhub/internal/models"
	"creatorhub/internal/transfer"
)

// PlatformClient is the capability set every connected platform exposes.
// Both clients implement the full interface; the restricted one refuses
// the three write methods at the boundary so callers always get a typed
// failure instead of a silent no-op.
type PlatformClient interface {
	Platform() string

	GetProfile(ctx context.Context, conn *models.PlatformConnection) (*transfer.PlatformProfile, error)
	GetPosts(ctx context.Context, conn *models.PlatformConnection) ([]transfer.PlatformPost, error)
	GetMessages(ctx context.Context, conn *models.PlatformConnection) ([]transfer.PlatformMessage, error)

	CreatePost(ctx context.Context, conn *models.PlatformConnection, req *transfer.PlatformPostRequest) (*transfer.PlatformPost, error)
	UploadMedia(ctx context.Context, conn *models.PlatformConnection, mediaURL string) (*transfer.PlatformMediaUpload, error)
	SendMessage(ctx context.Context, conn *models.PlatformConnection, req *transfer.PlatformMessageRequest) (*transfer.PlatformMessage, error)
}
