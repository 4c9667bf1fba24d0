package similarity

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
)

// Hit — позиция записи галереи и её сходство с запросом.
type Hit struct {
	Position int
	Score    float64
}

// Rank возвращает до k позиций галереи с наибольшим скалярным произведением с query,
// по убыванию сходства. При равенстве выше стоит запись с меньшей позицией.
// Векторы галереи и запрос должны быть уже нормированы.
func Rank(query domain.FeatureVector, vectors []domain.FeatureVector, k int) ([]Hit, error) {
	if len(vectors) == 0 {
		return nil, e.ErrEmptyGallery
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	h := make(minHeap, 0, k)
	for pos, v := range vectors {
		if len(v) != len(query) {
			return nil, fmt.Errorf("gallery entry %d has dim %d, query %d: %w", pos, len(v), len(query), e.ErrDimensionMismatch)
		}

		score, _ := Dot(query, v)
		hit := Hit{Position: pos, Score: score}

		if h.Len() < k {
			heap.Push(&h, hit)
			continue
		}
		// Позиции идут по возрастанию, поэтому равная оценка не вытесняет более раннюю запись.
		if score > h[0].Score {
			h[0] = hit
			heap.Fix(&h, 0)
		}
	}

	out := make([]Hit, len(h))
	copy(out, h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Position < out[j].Position
	})

	return out, nil
}

// minHeap держит в корне худшее из лучших: меньшая оценка, при равенстве большая позиция.
type minHeap []Hit

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].Position > h[j].Position
}
func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) { *h = append(*h, x.(Hit)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
