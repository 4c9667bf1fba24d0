// Package sqlite хранит предвычисленную галерею эмбеддингов в файле SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/similarity"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/jimlawless/whereami"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS gallery (
	position  INTEGER PRIMARY KEY,
	filename  TEXT    NOT NULL,
	embedding BLOB    NOT NULL
)`

type GalleryRepo struct {
	db *sql.DB
}

// Open открывает файл галереи. Для чтения схема не создаётся.
func Open(path string) (*GalleryRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return &GalleryRepo{db: db}, nil
}

func (r *GalleryRepo) Close() error {
	return r.db.Close()
}

// Load читает всю галерею в порядке position, проверяет размерность векторов и приводит их
// к единичной норме.
func (r *GalleryRepo) Load(ctx context.Context) (*domain.Gallery, error) {
	const op = "GalleryRepo.Load"

	rows, err := r.db.QueryContext(ctx, `SELECT filename, embedding FROM gallery ORDER BY position`)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer rows.Close()

	var entries []domain.GalleryEntry
	for rows.Next() {
		var (
			filename string
			blob     []byte
		)
		if err := rows.Scan(&filename, &blob); err != nil {
			return nil, e.Wrap(op, err)
		}

		raw, err := DecodeEmbedding(blob)
		if err != nil {
			return nil, e.Wrap(op, fmt.Errorf("%s: %w", filename, err))
		}
		vec, err := similarity.Normalize(raw)
		if err != nil {
			return nil, e.Wrap(op, fmt.Errorf("%s: %w", filename, err))
		}
		number, err := domain.ParseGalleryNumber(filename)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		entries = append(entries, domain.GalleryEntry{
			Number:   number,
			Filename: filename,
			Vector:   vec,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(op, err)
	}

	gallery, err := domain.NewGallery(entries)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return gallery, nil
}

// Replace перезаписывает галерею одной транзакцией. Позиции берутся из порядка filenames,
// векторы сохраняются нормированными.
func (r *GalleryRepo) Replace(ctx context.Context, filenames []string, embeddings []domain.FeatureVector) error {
	const op = "GalleryRepo.Replace"

	if len(filenames) != len(embeddings) {
		return e.Wrap(op, fmt.Errorf("%d filenames for %d embeddings", len(filenames), len(embeddings)))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return e.Wrap(op, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM gallery`); err != nil {
		return e.Wrap(op, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO gallery (position, filename, embedding) VALUES (?, ?, ?)`)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer stmt.Close()

	for i, name := range filenames {
		if _, err := domain.ParseGalleryNumber(name); err != nil {
			return e.Wrap(op, err)
		}
		vec, err := similarity.Normalize(embeddings[i])
		if err != nil {
			return e.Wrap(op, fmt.Errorf("%s: %w", name, err))
		}
		blob, err := EncodeEmbedding(vec)
		if err != nil {
			return e.Wrap(op, err)
		}
		if _, err := stmt.ExecContext(ctx, i, name, blob); err != nil {
			return e.Wrap(op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return e.Wrap(op, err)
	}
	return nil
}

// EncodeEmbedding кодирует вектор как последовательность little-endian float32 без префикса длины.
func EncodeEmbedding(vec domain.FeatureVector) ([]byte, error) {
	if len(vec) == 0 {
		return nil, e.ErrEmptyVectors
	}
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b, nil
}

func DecodeEmbedding(b []byte) (domain.FeatureVector, error) {
	if len(b) == 0 {
		return nil, e.ErrEmptyVectors
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d (not multiple of 4)", len(b))
	}
	vec := make(domain.FeatureVector, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}
