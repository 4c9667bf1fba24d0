// Package localfs хранит временные изображения в каталоге локальной файловой системы.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/jimlawless/whereami"
)

// ImageRepo размещает изображения в собственном временном каталоге процесса.
type ImageRepo struct {
	root string
}

// NewImageRepo создаёт уникальный каталог внутри baseDir (или системного tmp, если baseDir пуст).
func NewImageRepo(baseDir string) (*ImageRepo, error) {
	root, err := os.MkdirTemp(baseDir, "cartify-staging-*")
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return &ImageRepo{root: root}, nil
}

func (r *ImageRepo) Root() string {
	return r.root
}

func (r *ImageRepo) Upload(ctx context.Context, image *domain.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := r.path(image.ObjectKey)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}
	if err := os.WriteFile(path, image.Bytes, 0o600); err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return image.ObjectKey, nil
}

func (r *ImageRepo) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := r.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return f, nil
}

// Delete удаляет файл и, если каталог запроса опустел, сам каталог.
func (r *ImageRepo) Delete(_ context.Context, key string) error {
	path, err := r.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if dir := filepath.Dir(path); dir != r.root {
		_ = os.Remove(dir) // не пустой каталог не удаляется
	}
	return nil
}

// Close удаляет корневой каталог со всем содержимым.
func (r *ImageRepo) Close() error {
	return os.RemoveAll(r.root)
}

func (r *ImageRepo) path(key string) (string, error) {
	if !filepath.IsLocal(key) {
		return "", fmt.Errorf("staging key %q escapes storage root", key)
	}
	return filepath.Join(r.root, key), nil
}
