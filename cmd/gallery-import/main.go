// Command gallery-import переносит предрассчитанные эмбеддинги галереи из JSON в SQLite-файл,
// который читает сервер при старте.
//
// Формат входа: {"filenames": ["15970.jpg", ...], "embeddings": [[0.1, ...], ...]}.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	sqliteRepo "github.com/DRSN-tech/cartify-backend/internal/repository/sqlite"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
	"github.com/goccy/go-json"
)

type galleryDump struct {
	Filenames  []string    `json:"filenames"`
	Embeddings [][]float32 `json:"embeddings"`
}

func main() {
	var (
		input   string
		output  string
		timeout time.Duration
	)
	flag.StringVar(&input, "input", "", "JSON file with filenames and embeddings (default: stdin)")
	flag.StringVar(&output, "output", "data/gallery.db", "SQLite file to write")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Import timeout")
	flag.Parse()

	log := logger.NewSlogLogger()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := run(ctx, input, output)
	if err != nil {
		log.Errorf(err, "gallery import failed")
		os.Exit(1)
	}
	log.Infof("imported %d gallery entries into %s", n, output)
}

func run(ctx context.Context, input, output string) (int, error) {
	var r io.Reader = os.Stdin
	if input != "" {
		f, err := os.Open(input)
		if err != nil {
			return 0, fmt.Errorf("open %s: %w", input, err)
		}
		defer f.Close()
		r = f
	}

	filenames, embeddings, err := readDump(r)
	if err != nil {
		return 0, err
	}

	store, err := sqliteRepo.Open(output)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	if err := store.Replace(ctx, filenames, embeddings); err != nil {
		return 0, err
	}
	return len(filenames), nil
}

// readDump разбирает дамп и проверяет его той же проверкой, что и сервер при загрузке галереи.
func readDump(r io.Reader) ([]string, []domain.FeatureVector, error) {
	var dump galleryDump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, nil, fmt.Errorf("decode gallery dump: %w", err)
	}

	if len(dump.Filenames) != len(dump.Embeddings) {
		return nil, nil, fmt.Errorf("%d filenames for %d embeddings", len(dump.Filenames), len(dump.Embeddings))
	}

	entries := make([]domain.GalleryEntry, len(dump.Embeddings))
	embeddings := make([]domain.FeatureVector, len(dump.Embeddings))
	for i, v := range dump.Embeddings {
		number, err := domain.ParseGalleryNumber(dump.Filenames[i])
		if err != nil {
			return nil, nil, err
		}
		embeddings[i] = domain.FeatureVector(v)
		entries[i] = domain.GalleryEntry{Number: number, Filename: dump.Filenames[i], Vector: embeddings[i]}
	}

	if _, err := domain.NewGallery(entries); err != nil {
		return nil, nil, err
	}
	return dump.Filenames, embeddings, nil
}
