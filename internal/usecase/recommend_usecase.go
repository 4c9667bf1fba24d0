package usecase

import (
	"context"

	"github.com/DRSN-tech/cartify-backend/internal/imaging"
	"github.com/DRSN-tech/cartify-backend/internal/metrics"
	"github.com/DRSN-tech/cartify-backend/internal/similarity"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
)

// DefaultTopK — число рекомендаций по умолчанию.
const DefaultTopK = 5

// RecommendUseCase находит в галерее товары, визуально похожие на загруженное фото.
type RecommendUseCase struct {
	extractor FeatureExtractorInfra
	gallery   GalleryRepository
	links     LinkRepository
	topK      int
	logger    logger.Logger
}

func NewRecommendUC(extractor FeatureExtractorInfra, gallery GalleryRepository, links LinkRepository, topK int, logger logger.Logger) *RecommendUseCase {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RecommendUseCase{
		extractor: extractor,
		gallery:   gallery,
		links:     links,
		topK:      topK,
		logger:    logger,
	}
}

// Recommend возвращает номера ближайших записей галереи и ссылки на них.
// Запись без ссылки остаётся в ответе со ссылкой nil.
func (r *RecommendUseCase) Recommend(ctx context.Context, req *RecommendReq) (*RecommendRes, error) {
	const op = "RecommendUseCase.Recommend"

	if req == nil || len(req.Image.Data) == 0 {
		return nil, e.Wrap(op, e.ErrNoSelectedFile)
	}

	img, err := imaging.DecodeBytes(req.Image.Data)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	features, err := r.extractor.Extract(ctx, imaging.RecommendInput(img, r.extractor.Layout()))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	query, err := similarity.Normalize(features)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	hits, err := r.gallery.Nearest(ctx, query, r.topK)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	numbers := make([]int64, len(hits))
	links := make([]*string, len(hits))
	for i, hit := range hits {
		numbers[i] = hit.Number

		link, ok, err := r.links.LinkByID(ctx, hit.Number)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		if ok {
			links[i] = &link
		}
	}

	metrics.Recommendations.Inc()
	return NewRecommendRes(numbers, links), nil
}
