package qdrant

import (
	"testing"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/qdrant/go-client/qdrant"
)

func TestToPointsKeepsDuplicateNumbers(t *testing.T) {
	gallery, err := domain.NewGallery([]domain.GalleryEntry{
		{Number: 1163, Filename: "1163.jpg", Vector: domain.FeatureVector{1, 0}},
		{Number: 1163, Filename: "copy/1163.jpg", Vector: domain.FeatureVector{0, 1}},
	})
	if err != nil {
		t.Fatal(err)
	}

	points, err := toPoints([]*domain.Embedding{gallery.Entry(0).Embedding(), gallery.Entry(1).Embedding()})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %d", len(points))
	}
	if points[0].GetId().GetNum() == points[1].GetId().GetNum() {
		t.Errorf("entries with the same number share point id %d", points[0].GetId().GetNum())
	}
	for i, p := range points {
		if got := p.GetPayload()[domain.PayloadNumber].GetIntegerValue(); got != 1163 {
			t.Errorf("point %d number = %d", i, got)
		}
		if got := p.GetPayload()[domain.PayloadPosition].GetIntegerValue(); got != int64(i) {
			t.Errorf("point %d position = %d", i, got)
		}
	}
}

func TestToPointsRejectsNegativeID(t *testing.T) {
	if _, err := toPoints([]*domain.Embedding{domain.NewEmbedding(-1, []float32{1}, nil)}); err == nil {
		t.Error("negative id accepted")
	}
}

func TestToHits(t *testing.T) {
	scored := func(id uint64, position, number int64, score float32) *qdrant.ScoredPoint {
		return &qdrant.ScoredPoint{
			Id:    qdrant.NewIDNum(id),
			Score: score,
			Payload: qdrant.NewValueMap(map[string]any{
				domain.PayloadPosition: position,
				domain.PayloadNumber:   number,
			}),
		}
	}

	hits := toHits([]*qdrant.ScoredPoint{
		scored(4, 4, 77, 0.5),
		scored(1, 1, 42, 0.9),
		scored(2, 2, 42, 0.5),
	})

	want := []struct {
		position int
		number   int64
	}{{1, 42}, {2, 42}, {4, 77}}
	if len(hits) != len(want) {
		t.Fatalf("hits = %+v", hits)
	}
	for i, w := range want {
		if hits[i].Position != w.position || hits[i].Number != w.number {
			t.Errorf("hit %d = %+v, want position %d number %d", i, hits[i], w.position, w.number)
		}
	}
}
