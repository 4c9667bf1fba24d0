package domain

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// FeatureVector — числовое представление изображения, полученное из CNN.
type FeatureVector []float32

// Dim возвращает размерность вектора.
func (f FeatureVector) Dim() int {
	return len(f)
}

// GalleryEntry описывает один предвычисленный эмбеддинг галереи.
type GalleryEntry struct {
	Position int    // порядковый номер в галерее, используется для стабильной сортировки
	Number   int64  // идентификатор товара, извлечённый из имени файла
	Filename string // исходное имя файла изображения
	Vector   FeatureVector
}

// Gallery — неизменяемый набор эмбеддингов, загружаемый один раз при старте.
type Gallery struct {
	entries []GalleryEntry
	dim     int
}

// NewGallery проверяет, что все векторы одной размерности, и фиксирует порядок записей.
func NewGallery(entries []GalleryEntry) (*Gallery, error) {
	dim := 0
	out := make([]GalleryEntry, len(entries))
	for i, entry := range entries {
		if i == 0 {
			dim = entry.Vector.Dim()
		}
		if entry.Vector.Dim() != dim {
			return nil, fmt.Errorf("gallery entry %d (%s): dimension %d, expected %d", i, entry.Filename, entry.Vector.Dim(), dim)
		}
		entry.Position = i
		out[i] = entry
	}

	return &Gallery{entries: out, dim: dim}, nil
}

func (g *Gallery) Len() int {
	if g == nil {
		return 0
	}
	return len(g.entries)
}

func (g *Gallery) Dim() int {
	if g == nil {
		return 0
	}
	return g.dim
}

// Entry возвращает запись по позиции.
func (g *Gallery) Entry(pos int) GalleryEntry {
	return g.entries[pos]
}

// Vectors возвращает векторы в порядке галереи. Срез нельзя изменять.
func (g *Gallery) Vectors() []FeatureVector {
	if g == nil {
		return nil
	}
	out := make([]FeatureVector, len(g.entries))
	for i, entry := range g.entries {
		out[i] = entry.Vector
	}
	return out
}

// ParseGalleryNumber извлекает номер товара из имени файла: "images\\1163.jpg" -> 1163.
// Поддерживаются разделители как "/", так и "\".
func ParseGalleryNumber(filename string) (int64, error) {
	name := strings.ReplaceAll(filename, "\\", "/")
	name = path.Base(name)
	if idx := strings.Index(name, "."); idx >= 0 {
		name = name[:idx]
	}

	n, err := strconv.ParseInt(name, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("gallery filename %q has no numeric id: %w", filename, err)
	}

	return n, nil
}
