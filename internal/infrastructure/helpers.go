package infrastructure

import (
	"mime"
	"strings"

	"github.com/DRSN-tech/cartify-backend/pkg/e"
)

// extensions — расширения форматов, которые умеет декодировать пакет imaging.
var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// GetExtensionFromMIME возвращает расширение файла по MIME-типу изображения.
// Параметры типа ("; charset=...") и регистр игнорируются.
// Для неизвестных типов возвращает "bin" и e.ErrUnsupportedMediaType.
func GetExtensionFromMIME(mimeType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(mimeType))
	}

	if ext, ok := extensions[mediaType]; ok {
		return ext, nil
	}
	return "bin", e.ErrUnsupportedMediaType
}
