// Package media uploads course thumbnails to object storage. The stored file
// is served from the bucket's public URL; the backend only keeps that URL.
package media

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// Uploader abstracts the object-storage host.
type Uploader interface {
	UploadImage(file *multipart.FileHeader) (string, error)
}

// OSSUploader stores files in an OSS bucket.
type OSSUploader struct {
	bucket     *oss.Bucket
	bucketName string
	endpoint   string
}

func NewOSSUploader(endpoint, bucketName, accessKey, secretKey string) (*OSSUploader, error) {
	client, err := oss.New(endpoint, accessKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("oss client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("oss bucket %s: %w", bucketName, err)
	}

	return &OSSUploader{bucket: bucket, bucketName: bucketName, endpoint: endpoint}, nil
}

func (u *OSSUploader) UploadImage(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := "thumbnails/" + uuid.NewString() + ext

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	if err := u.bucket.PutObject(key, src, oss.ContentType(contentType)); err != nil {
		return "", fmt.Errorf("oss upload: %w", err)
	}

	return fmt.Sprintf("https://%s.%s/%s", u.bucketName, u.endpoint, key), nil
}
