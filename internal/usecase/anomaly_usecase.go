package usecase

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/imaging"
	"github.com/DRSN-tech/cartify-backend/internal/metrics"
	"github.com/DRSN-tech/cartify-backend/internal/similarity"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
	"github.com/google/uuid"
)

// AnomalyUseCase сравнивает два фото товара и решает, совпадают ли они.
type AnomalyUseCase struct {
	extractor   FeatureExtractorInfra
	imagesInfra ImagesInfra
	logger      logger.Logger
}

func NewAnomalyUC(extractor FeatureExtractorInfra, imagesInfra ImagesInfra, logger logger.Logger) *AnomalyUseCase {
	return &AnomalyUseCase{
		extractor:   extractor,
		imagesInfra: imagesInfra,
		logger:      logger,
	}
}

// Compare размещает оба изображения во временном хранилище запроса, извлекает признаки,
// считает косинусное и структурное сходство и выносит решение.
// Временные файлы удаляются при любом исходе.
func (a *AnomalyUseCase) Compare(ctx context.Context, req *CompareImagesReq) (*domain.Comparison, error) {
	const op = "AnomalyUseCase.Compare"

	if req == nil {
		return nil, e.Wrap(op, e.ErrNoImages)
	}

	staged, err := a.imagesInfra.StageImages(ctx, NewStageImagesReq(uuid.NewString(), []UploadImage{req.First, req.Second}))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer a.imagesInfra.CleanupImages(staged.ImagesKeys)

	images := make([]image.Image, len(staged.ImagesKeys))
	for i, key := range staged.ImagesKeys {
		img, err := a.loadImage(ctx, key)
		if err != nil {
			a.logger.Warnf("%s: image %d is not decodable: %v", op, i+1, err)
			return nil, e.Wrap(op, fmt.Errorf("%w: %v", e.ErrFeatureExtraction, err))
		}
		images[i] = img
	}

	layout := a.extractor.Layout()
	vectors, err := a.extractor.ExtractBatch(ctx, [][]float32{
		imaging.AnomalyInput(images[0], layout),
		imaging.AnomalyInput(images[1], layout),
	})
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %v", e.ErrFeatureExtraction, err))
	}

	cmp, err := similarity.Compare(vectors[0], vectors[1], imaging.SSIMInput(images[0]), imaging.SSIMInput(images[1]))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	metrics.RecordAnomalyDecision(cmp.Decision.Label())
	a.logger.Debugf("%s: cosine=%.4f ssim=%.4f final=%.4f decision=%s", op, cmp.Cosine, cmp.Structural, cmp.Blended, cmp.Decision.Label())

	return &cmp, nil
}

// loadImage читает размещённое изображение и декодирует его.
func (a *AnomalyUseCase) loadImage(ctx context.Context, key string) (image.Image, error) {
	rc, err := a.imagesInfra.OpenImage(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			a.logger.Warnf("close staged image %s: %v", key, err)
		}
	}()

	return imaging.Decode(io.LimitReader(rc, maxImageBytes))
}

// maxImageBytes ограничивает чтение одного размещённого изображения.
const maxImageBytes = 32 << 20
