// Package staging размещает загруженные изображения во временном хранилище на время одного запроса
// и удаляет их в фоне после обработки.
package staging

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/infrastructure"
	"github.com/DRSN-tech/cartify-backend/internal/usecase"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/jitter"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	cleanupAttempts   = 3
	cleanupBaseDelay  = 500 * time.Millisecond
	cleanupMaxDelay   = 5 * time.Second
	cleanupRunTimeout = 30 * time.Second
)

// Infrastructure управляет размещением и очисткой изображений поверх любого ImageRepository.
type Infrastructure struct {
	repo        usecase.ImageRepository
	bucket      string
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
	uploadLimit int
}

func NewInfrastructure(repo usecase.ImageRepository, bucket string, uploadLimit int, logger logger.Logger, shutdownCtx context.Context) *Infrastructure {
	if uploadLimit <= 0 {
		uploadLimit = 1
	}
	return &Infrastructure{
		repo:        repo,
		bucket:      bucket,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		uploadLimit: uploadLimit,
	}
}

// StageImages размещает изображения параллельно с ограничением одновременных операций.
// Ключи уникальны для запроса и возвращаются в порядке входа.
func (s *Infrastructure) StageImages(ctx context.Context, req *usecase.StageImagesReq) (*usecase.StageImagesRes, error) {
	const op = "StagingInfrastructure.StageImages"
	// Отмена остальных загрузок при первой ошибке
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type staged struct {
		idx int
		key string
	}

	keyCh := make(chan staged, len(req.Images))
	errCh := make(chan error, len(req.Images))
	sem := make(chan struct{}, s.uploadLimit)

	var uploadWg sync.WaitGroup
	for i, img := range req.Images {
		uploadWg.Add(1)
		go func() {
			defer uploadWg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			imageID := uuid.NewString()
			ext, err := infrastructure.GetExtensionFromMIME(img.MimeType)
			if err != nil {
				s.logger.Debugf("%s: %s has mime %q, staging as .%s", op, img.Name, img.MimeType, ext)
			}
			name := img.Name
			if name == "" {
				name = fmt.Sprintf("image%d", i+1)
			}
			objKey := fmt.Sprintf("%s/%s-%s.%s", req.Prefix, name, imageID, ext)
			size := int64(len(img.Data))
			mime := img.MimeType
			newImage := domain.NewImage(imageID, s.bucket, objKey, img.Data, &size, &mime)

			key, err := s.repo.Upload(ctx, newImage)
			if err != nil {
				errCh <- fmt.Errorf("stage %s failed: %w", name, err)
				return
			}

			keyCh <- staged{idx: i, key: key}
		}()
	}

	go func() {
		uploadWg.Wait()
		close(errCh)
		close(keyCh)
	}()

	keys := make([]string, len(req.Images))
	var done []string
	ok := false
	// При ошибке дожидаемся оставшихся загрузок и удаляем всё, что успело разместиться
	defer func() {
		if ok {
			return
		}
		s.wg.Add(1)
		go func() {
			for st := range keyCh {
				done = append(done, st.key)
			}
			s.cleanupKeys(done)
		}()
	}()

	for completed := 0; completed < len(req.Images); {
		select {
		case st, chOk := <-keyCh:
			if chOk {
				keys[st.idx] = st.key
				done = append(done, st.key)
				completed++
			}
		case err, chOk := <-errCh:
			if chOk {
				cancel()
				return nil, e.Wrap(op, err)
			}
		case <-ctx.Done():
			cancel()
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	ok = true
	return usecase.NewStageImagesRes(keys), nil
}

// OpenImage открывает размещённое изображение на чтение.
func (s *Infrastructure) OpenImage(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.repo.Open(ctx, key)
	if err != nil {
		return nil, e.Wrap("StagingInfrastructure.OpenImage", err)
	}
	return rc, nil
}

// CleanupImages запускает фоновую очистку указанных ключей.
func (s *Infrastructure) CleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}
	s.wg.Add(1)
	go s.cleanupKeys(keys)
}

// cleanupKeys удаляет объекты с экспоненциальной задержкой и jitter между попытками.
func (s *Infrastructure) cleanupKeys(keys []string) {
	defer s.wg.Done()
	const op = "StagingInfrastructure.cleanupKeys"

	ctx, cancel := context.WithTimeout(s.shutdownCtx, cleanupRunTimeout)
	defer cancel()

	for _, key := range keys {
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := s.repo.Delete(ctx, key)
			if err == nil {
				break
			}

			if attempt == cleanupAttempts-1 {
				s.logger.Warnf("%s: giving up on key=%s: %v", op, key, err)
				break
			}

			sleepTime := jitter.ExponentialBackoff(cleanupBaseDelay, cleanupMaxDelay, attempt, jitter.DefaultJitter)
			select {
			case <-time.After(sleepTime):
			case <-ctx.Done():
				s.logger.Warnf("%s: interrupted by shutdown, key=%s", op, key)
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (s *Infrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("staging cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
