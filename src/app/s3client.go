package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"

	cfg "c2paview/src/configuration"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

type ClientMinio interface {
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (info minio.UploadInfo, err error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioS3Client archives uploaded originals so they can be re-inspected
// later by URI.
type MinioS3Client struct {
	bucketName string
	prefix     string
	client     ClientMinio
	logger     *logrus.Logger
}

const (
	defaultContentType = "application/octet-stream"
	presignExpiry      = 7 * 24 * time.Hour
)

// NewMinioS3Client creates a new MinioS3Client instance.
func NewMinioS3Client(config *cfg.Properties, logger *logrus.Logger) (*MinioS3Client, error) {
	s3 := config.S3
	minioClient, err := minio.New(s3.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(s3.AccessKey, s3.SecretKey, ""),
		Secure: s3.UseSSL,
	})
	if err != nil {
		logger.WithFields(logrus.Fields{"endpoint": s3.Host, "bucket": s3.Bucket}).
			WithError(err).Error("can not create minio client")
		return nil, fmt.Errorf("failed to create Minio S3 client: %w", err)
	}
	return newWithClient(minioClient, s3.Bucket, s3.Prefix, logger), nil
}

func newWithClient(client ClientMinio, bucketName, prefix string, logger *logrus.Logger) *MinioS3Client {
	return &MinioS3Client{
		bucketName: bucketName,
		prefix:     strings.Trim(prefix, "/"),
		client:     client,
		logger:     logger,
	}
}

// Archive stores an uploaded file under a fresh key and returns where it
// can be fetched from.
func (s3 *MinioS3Client) Archive(ctx context.Context, filename string, data []byte) (ArchivedUpload, error) {
	name := safeFilename(filename)
	key := path.Join(s3.prefix, uuid.NewString(), name)
	contentType := defaultContentType
	if len(data) > 0 {
		contentType = http.DetectContentType(data)
	}

	info, err := s3.client.PutObject(ctx,
		s3.bucketName,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return ArchivedUpload{}, fmt.Errorf("archive %s: %w", filename, err)
	}
	u, err := s3.presign(ctx, key, name)
	if err != nil {
		return ArchivedUpload{}, err
	}
	s3.logger.WithFields(logrus.Fields{"key": key, "size": info.Size}).Info("archived upload")
	return ArchivedUpload{
		Key:         key,
		URL:         u.String(),
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Uploaded:    time.Now().UTC(),
	}, nil
}

// ListArchived returns every archived upload, optionally only those whose
// extension is in filters.
func (s3 *MinioS3Client) ListArchived(ctx context.Context, filters []string) ([]ArchivedUpload, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := make([]ArchivedUpload, 0)
	prefix := s3.prefix
	if prefix != "" {
		prefix += "/"
	}
	objectCh := s3.client.ListObjects(ctx, s3.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return result, fmt.Errorf("list archived uploads: %w", object.Err)
		}
		if len(filters) > 0 && !checkIn(object.Key, filters) {
			continue
		}
		name := path.Base(object.Key)
		u, err := s3.presign(ctx, object.Key, name)
		if err != nil {
			return result, err
		}
		result = append(result, ArchivedUpload{
			Key:         object.Key,
			URL:         u.String(),
			Filename:    name,
			ContentType: object.ContentType,
			Size:        object.Size,
			Uploaded:    object.LastModified,
		})
	}
	return result, nil
}

func (s3 *MinioS3Client) DeleteArchived(ctx context.Context, key string) error {
	if s3.prefix != "" && !strings.HasPrefix(key, s3.prefix+"/") {
		return fmt.Errorf("%s is not an archived upload", key)
	}
	if err := s3.client.RemoveObject(ctx, s3.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	s3.logger.WithFields(logrus.Fields{"bucket": s3.bucketName, "key": key}).Info("removed archived upload")
	return nil
}

func (s3 *MinioS3Client) presign(ctx context.Context, key, filename string) (*url.URL, error) {
	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("inline; filename=%q", filename))
	u, err := s3.client.PresignedGetObject(ctx, s3.bucketName, key, presignExpiry, reqParams)
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}
	return u, nil
}

// checkIn reports whether key's extension is one of filters.
func checkIn(key string, filters []string) bool {
	ext := strings.TrimPrefix(path.Ext(key), ".")
	if ext == "" {
		return false
	}
	for _, f := range filters {
		if strings.EqualFold(f, ext) {
			return true
		}
	}
	return false
}

// safeFilename keeps the base name with anything outside [A-Za-z0-9._-]
// replaced.
func safeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_') {
			return r
		}
		return '_'
	}, base)
}
