package avatar

import (
	"RoleChat/internal/app_errors"
	"RoleChat/internal/models"
	"RoleChat/pkg/logger"
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type userRepo interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetImage(ctx context.Context, id uuid.UUID, objectKey string) error
}

type avatarStorage interface {
	UploadAvatar(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (objectKey string, err error)
	AvatarURL(ctx context.Context, objectKey string) (string, error)
	DeleteAvatar(ctx context.Context, objectKey string) error
}

type AvatarService struct {
	log     logger.Log
	users   userRepo
	storage avatarStorage
	maxSize int64
}

func NewAvatarService(l logger.Log, users userRepo, storage avatarStorage, maxSize int64) *AvatarService {
	return &AvatarService{
		log:     l,
		users:   users,
		storage: storage,
		maxSize: maxSize,
	}
}

// Upload replaces the caller's avatar and returns a presigned URL for it.
func (s *AvatarService) Upload(
	ctx context.Context,
	userID uuid.UUID,
	filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (string, error) {
	if userID == uuid.Nil {
		return "", app_errors.ErrNotSignedIn
	}
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if s.maxSize > 0 && size > s.maxSize {
		return "", app_errors.ErrFileSize
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", app_errors.ErrNotImage
	}

	objectKey, err := s.storage.UploadAvatar(ctx, userID, filename, reader, size, contentType)
	if err != nil {
		s.log.ErrorErr("failed to upload avatar to storage", err, "user_id", userID)
		return "", err
	}
	if err := s.users.SetImage(ctx, userID, objectKey); err != nil {
		s.log.ErrorErr("failed to save avatar key", err, "user_id", userID)
		if delErr := s.storage.DeleteAvatar(ctx, objectKey); delErr != nil {
			s.log.ErrorErr("failed to remove unsaved avatar", delErr, "user_id", userID, "object", objectKey)
		}
		return "", err
	}
	// The previous object is removed only once nothing references it.
	if user.Image != "" && user.Image != objectKey {
		if err := s.storage.DeleteAvatar(ctx, user.Image); err != nil {
			s.log.ErrorErr("failed to delete previous avatar", err, "user_id", userID)
		}
	}
	return s.storage.AvatarURL(ctx, objectKey)
}

// URL resolves a stored object key to a presigned URL. Empty keys resolve to
// an empty URL.
func (s *AvatarService) URL(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", nil
	}
	return s.storage.AvatarURL(ctx, objectKey)
}
