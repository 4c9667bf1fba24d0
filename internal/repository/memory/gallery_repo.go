// Package memory содержит хранилища, живущие в памяти процесса.
package memory

import (
	"context"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/similarity"
	"github.com/DRSN-tech/cartify-backend/internal/usecase"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
)

// GalleryRepo выполняет точный перебор галереи со стабильным порядком при равных оценках.
type GalleryRepo struct {
	gallery *domain.Gallery
	vectors []domain.FeatureVector
}

func NewGalleryRepo(gallery *domain.Gallery) *GalleryRepo {
	return &GalleryRepo{
		gallery: gallery,
		vectors: gallery.Vectors(),
	}
}

func (r *GalleryRepo) Dim() int {
	return r.gallery.Dim()
}

func (r *GalleryRepo) Nearest(ctx context.Context, query domain.FeatureVector, k int) ([]usecase.GalleryHit, error) {
	const op = "GalleryRepo.Nearest"

	if err := ctx.Err(); err != nil {
		return nil, e.Wrap(op, err)
	}

	hits, err := similarity.Rank(query, r.vectors, k)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res := make([]usecase.GalleryHit, len(hits))
	for i, hit := range hits {
		entry := r.gallery.Entry(hit.Position)
		res[i] = usecase.NewGalleryHit(hit.Position, entry.Number, hit.Score)
	}
	return res, nil
}
