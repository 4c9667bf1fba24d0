// Package imaging готовит загруженные изображения к сравнению и извлечению признаков:
// декодирование, перевод в оттенки серого, выравнивание гистограммы, сглаживание,
// масштабирование и сборка входных тензоров для CNN.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/DRSN-tech/cartify-backend/pkg/e"
	_ "golang.org/x/image/webp"
)

// Side — сторона квадратного входа модели.
const Side = 224

// Decode читает изображение любого зарегистрированного формата (jpeg, png, gif, webp).
func Decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrImageDecode, err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("%w: empty %s image", e.ErrImageDecode, format)
	}
	return img, nil
}

// DecodeBytes — Decode для изображения, уже прочитанного в память.
func DecodeBytes(data []byte) (image.Image, error) {
	return Decode(bytes.NewReader(data))
}
