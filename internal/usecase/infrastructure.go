package usecase

import (
	"context"
	"io"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/imaging"
)

// FeatureExtractorInfra прогоняет подготовленный тензор через CNN и возвращает вектор признаков.
type FeatureExtractorInfra interface {
	Layout() imaging.Layout
	Extract(ctx context.Context, input []float32) (domain.FeatureVector, error)
	ExtractBatch(ctx context.Context, inputs [][]float32) ([]domain.FeatureVector, error)
}

// ImagesInfra размещает загрузки во временном хранилище на время обработки одного запроса.
type ImagesInfra interface {
	StageImages(ctx context.Context, req *StageImagesReq) (*StageImagesRes, error)
	OpenImage(ctx context.Context, key string) (io.ReadCloser, error)
	CleanupImages(keys []string)
}

// ChatModelInfra — генеративная модель, продолжающая диалог с учётом истории.
type ChatModelInfra interface {
	Generate(ctx context.Context, history []domain.ChatTurn, message string) (string, error)
}

// MessageProducer публикует события во внешний брокер.
type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
