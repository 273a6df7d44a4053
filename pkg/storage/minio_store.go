package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageArchive keeps a copy of each upload under a unique key. The local
// upload file is still the fixed, overwritten one.
type ImageArchive interface {
	Archive(ctx context.Context, requestID int, image []byte) (string, error)
}

type MinioArchive struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

func NewMinioArchive(endpoint, accessKey, secretKey, bucket string, secure bool) (*MinioArchive, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Minio client: %v", err)
	}
	return &MinioArchive{client: client, bucket: bucket, now: time.Now}, nil
}

// Archive uploads the image and returns its object key. requestID 0 means
// the registry is disabled, the key is then timestamp based only.
func (m *MinioArchive) Archive(ctx context.Context, requestID int, image []byte) (string, error) {
	key := ObjectKey(requestID, m.now())
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(image), int64(len(image)),
		minio.PutObjectOptions{ContentType: http.DetectContentType(image)})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to Minio: %w", err)
	}
	return key, nil
}

func ObjectKey(requestID int, at time.Time) string {
	stamp := at.UTC().Format("20060102T150405.000000000")
	if requestID > 0 {
		return "uploads/" + strconv.Itoa(requestID) + "-" + stamp
	}
	return "uploads/" + stamp
}
