package qdrant

import (
	"context"
	"fmt"
	"sort"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/usecase"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

const upsertBatchSize = 256

// GalleryRepo ищет ближайшие векторы галереи в коллекции Qdrant.
type GalleryRepo struct {
	client     *qdrant.Client
	collection string
	dim        int
}

func NewGalleryRepo(client *qdrant.Client, collection string, dim int) *GalleryRepo {
	return &GalleryRepo{
		client:     client,
		collection: collection,
		dim:        dim,
	}
}

func (q *GalleryRepo) Dim() int {
	return q.dim
}

// Sync заливает галерею в пустую коллекцию. Непустая коллекция считается уже синхронизированной,
// если число точек в ней совпадает с размером галереи. Возвращает число загруженных точек.
func (q *GalleryRepo) Sync(ctx context.Context, gallery *domain.Gallery) (int, error) {
	exact := true
	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	if count > 0 {
		if count != uint64(gallery.Len()) {
			return 0, e.Wrap(whereami.WhereAmI(),
				fmt.Errorf("collection %s holds %d points, gallery has %d entries", q.collection, count, gallery.Len()))
		}
		return 0, nil
	}

	batch := make([]*domain.Embedding, 0, upsertBatchSize)
	for i := 0; i < gallery.Len(); i++ {
		batch = append(batch, gallery.Entry(i).Embedding())
		if len(batch) == upsertBatchSize {
			if err := q.Upsert(ctx, batch); err != nil {
				return i + 1 - len(batch), err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := q.Upsert(ctx, batch); err != nil {
			return gallery.Len() - len(batch), err
		}
	}

	return gallery.Len(), nil
}

// Upsert сохраняет или обновляет точки в коллекции Qdrant.
func (q *GalleryRepo) Upsert(ctx context.Context, vectors []*domain.Embedding) error {
	reqVectors, err := toPoints(vectors)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	wait := true
	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Wait:           &wait,
		Points:         reqVectors,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Nearest выполняет top-k поиск. Равные оценки упорядочиваются по позиции в галерее.
func (q *GalleryRepo) Nearest(ctx context.Context, query domain.FeatureVector, k int) ([]usecase.GalleryHit, error) {
	const op = "GalleryRepo.Nearest"

	if len(query) != q.dim {
		return nil, e.Wrap(op, fmt.Errorf("query dim %d, gallery %d: %w", len(query), q.dim, e.ErrDimensionMismatch))
	}
	if k <= 0 {
		return []usecase.GalleryHit{}, nil
	}

	limit := uint64(k)
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayloadInclude(domain.PayloadPosition, domain.PayloadNumber),
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(points) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyGallery)
	}

	return toHits(points), nil
}

func toPoints(vectors []*domain.Embedding) ([]*qdrant.PointStruct, error) {
	points := make([]*qdrant.PointStruct, 0, len(vectors))
	for _, vector := range vectors {
		if vector.ID < 0 {
			return nil, fmt.Errorf("negative point id %d", vector.ID)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(vector.ID)),
			Vectors: qdrant.NewVectors(vector.Vector...),
			Payload: qdrant.NewValueMap(vector.Payload),
		})
	}
	return points, nil
}

// toHits берёт позицию и номер товара из payload и упорядочивает равные оценки по позиции.
func toHits(points []*qdrant.ScoredPoint) []usecase.GalleryHit {
	hits := make([]usecase.GalleryHit, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		position := int(payload[domain.PayloadPosition].GetIntegerValue())
		number := payload[domain.PayloadNumber].GetIntegerValue()
		hits = append(hits, usecase.NewGalleryHit(position, number, float64(p.GetScore())))
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Position < hits[j].Position
	})

	return hits
}
