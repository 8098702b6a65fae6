package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"
)

// MaxImageSize 上传图片大小上限
const MaxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ValidateImage 按真实内容嗅探 MIME 类型校验图片，扩展名不可信
func ValidateImage(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("图片内容为空: %w", ErrValidation)
	}
	if len(data) > MaxImageSize {
		return fmt.Errorf("图片超过 5MB 限制: %w", ErrValidation)
	}
	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return fmt.Errorf("不支持的图片类型 %s: %w", contentType, ErrValidation)
	}
	return nil
}

// MediaStore MinIO 对象存储封装
type MediaStore struct {
	client *minio.Client
	bucket string
	// 对外可访问的基础地址，如 https://cdn.example.com/bucket
	publicBase string
}

func NewMediaStore(client *minio.Client, bucket, publicBase string) *MediaStore {
	return &MediaStore{client: client, bucket: bucket, publicBase: publicBase}
}

// EnsureBucket 启动时确保桶存在
func (m *MediaStore) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("创建存储桶失败: %w", err)
		}
	}
	return nil
}

// Save 上传对象并返回可访问 URL
func (m *MediaStore) Save(ctx context.Context, objectName string, data []byte) (string, error) {
	contentType := http.DetectContentType(data)
	_, err := m.client.PutObject(ctx, m.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("上传对象失败: %w", err)
	}
	return fmt.Sprintf("%s/%s", m.publicBase, objectName), nil
}
