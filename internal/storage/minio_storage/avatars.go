package minio_storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

type AvatarStorage struct {
	storage      *MinioStorage
	bucket       string
	presignedTTL time.Duration
}

func NewAvatarStorage(ctx context.Context, storage *MinioStorage, bucketName string, presignedTTL time.Duration) (*AvatarStorage, error) {
	if err := storage.ensureBucket(ctx, bucketName); err != nil {
		return nil, err
	}
	return &AvatarStorage{storage: storage, bucket: bucketName, presignedTTL: presignedTTL}, nil
}

// avatarKey gives every upload its own key so presigned URLs of the previous
// avatar stop resolving once it is deleted.
func avatarKey(userID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("users/%s/avatar-%s%s", userID.String(), uuid.NewString(), ext)
}

func (s *AvatarStorage) UploadAvatar(
	ctx context.Context,
	userID uuid.UUID,
	filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (objectKey string, err error) {
	objectKey = avatarKey(userID, filename)

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	_, err = s.storage.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		reader,
		size,
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

func (s *AvatarStorage) AvatarURL(ctx context.Context, objectKey string) (string, error) {
	presignedURL, err := s.storage.client.PresignedGetObject(
		ctx,
		s.bucket,
		objectKey,
		s.presignedTTL,
		make(url.Values),
	)
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

func (s *AvatarStorage) DeleteAvatar(ctx context.Context, objectKey string) error {
	return s.storage.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}

func (s *AvatarStorage) Ping(ctx context.Context) error {
	exists, err := s.storage.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}
