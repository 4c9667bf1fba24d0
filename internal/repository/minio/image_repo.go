package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

const stagingRuleID = "cartify-staging-expiry"

// ImageRepo хранит временные изображения запросов в одном бакете MinIO.
type ImageRepo struct {
	mc     *minio.Client
	bucket string
}

func NewImageRepo(mc *minio.Client, bucket string) *ImageRepo {
	return &ImageRepo{
		mc:     mc,
		bucket: bucket,
	}
}

// EnsureExpiry ставит на бакет правило жизненного цикла, удаляющее объекты старше days дней.
// Подстраховка на случай, если фоновая очистка не успела удалить объект.
func (i *ImageRepo) EnsureExpiry(ctx context.Context, days int) error {
	if days <= 0 {
		return nil
	}

	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{{
		ID:         stagingRuleID,
		Status:     "Enabled",
		Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(days)},
	}}

	if err := i.mc.SetBucketLifecycle(ctx, i.bucket, cfg); err != nil {
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("set lifecycle on %s: %w", i.bucket, err))
	}
	return nil
}

// Upload загружает изображение и возвращает ключ объекта.
func (i *ImageRepo) Upload(ctx context.Context, image *domain.Image) (string, error) {
	size := int64(len(image.Bytes))
	if image.Size != nil {
		size = *image.Size
	}
	contentType := "application/octet-stream"
	if image.MimeType != nil && *image.MimeType != "" {
		contentType = *image.MimeType
	}

	info, err := i.mc.PutObject(ctx, i.bucket, image.ObjectKey, bytes.NewReader(image.Bytes), size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"image-id": image.ID},
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Open возвращает поток чтения объекта.
func (i *ImageRepo) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := i.mc.GetObject(ctx, i.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// GetObject ленивый: ошибка доступа проявляется только при первом обращении
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return obj, nil
}

// Delete удаляет объект. Отсутствующий объект ошибкой не считается.
func (i *ImageRepo) Delete(ctx context.Context, key string) error {
	if err := i.mc.RemoveObject(ctx, i.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
