package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	maxAvatarBytes = 5 << 20
	sniffLen       = 512
)

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// sniffAvatar detects the payload type from its leading bytes. The
// client-declared content type is never consulted, so a renamed or
// mislabelled file cannot smuggle another format in.
func sniffAvatar(body io.Reader) (contentType, ext string, stream io.Reader, err error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", "", nil, fmt.Errorf("read avatar header: %w", err)
	}
	head = head[:n]

	contentType = http.DetectContentType(head)
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", "", nil, ErrUnsupportedAvatarType
	}
	return contentType, ext, io.MultiReader(bytes.NewReader(head), body), nil
}

// MinioStorage keeps avatars in a single bucket, one object per user,
// so a re-upload replaces the previous avatar in place.
type MinioStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *slog.Logger
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func NewMinioStorage(ctx context.Context, cfg MinioConfig, log *slog.Logger) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	s := &MinioStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket),
		log:       log,
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinioStorage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	s.log.InfoContext(ctx, "bucket created", slog.String("bucket", s.bucket))
	return nil
}

func (s *MinioStorage) UploadAvatar(ctx context.Context, userID string, body io.Reader, size int64) (string, error) {
	if size <= 0 || size > maxAvatarBytes {
		return "", ErrAvatarTooLarge
	}
	contentType, ext, stream, err := sniffAvatar(body)
	if err != nil {
		return "", err
	}

	// Versioned object name busts client caches on replacement.
	object := fmt.Sprintf("avatars/%s/%s.%s", userID, uuid.NewString(), ext)
	_, err = s.client.PutObject(ctx, s.bucket, object, stream, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return fmt.Sprintf("%s/%s", s.publicURL, object), nil
}

var _ ObjectStorage = (*MinioStorage)(nil)
