// Package catalog загружает каталог товаров из CSV и отвечает на запросы к нему.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Repo — неизменяемый после загрузки каталог. Безопасен для конкурентного чтения.
type Repo struct {
	records []domain.CatalogRecord
	links   map[int64]string
}

// LoadFile читает CSV (или TSV по расширению) с заголовком. required перечисляет обязательные колонки.
func LoadFile(path string, required ...string) (*Repo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	comma := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}

	repo, err := Load(f, comma, required...)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return repo, nil
}

// Load разбирает таблицу из r. Колонка articleType приводится к нижнему регистру.
// Колонка, все непустые значения которой — числа, хранится как decimal; пустые ячейки — nil.
func Load(r io.Reader, comma rune, required ...string) (*Repo, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty catalog file")
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanCell(cell)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	for _, col := range required {
		if indexOf(header, col) < 0 {
			return nil, fmt.Errorf("%w: %q", e.ErrCatalogColumnMissing, col)
		}
	}

	body := rows[1:]
	numeric := numericColumns(header, body)
	articleCol := indexOf(header, domain.CatalogColumnArticleType)
	caser := cases.Lower(language.Und)

	records := make([]domain.CatalogRecord, 0, len(body))
	for _, row := range body {
		values := make([]any, len(header))
		for i := range header {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}

			switch {
			case i == articleCol:
				values[i] = caser.String(cell)
			case strings.TrimSpace(cell) == "":
				values[i] = nil
			case numeric[i]:
				values[i] = decimal.RequireFromString(strings.TrimSpace(cell))
			default:
				values[i] = cell
			}
		}
		records = append(records, domain.NewCatalogRecord(header, values))
	}

	return &Repo{
		records: records,
		links:   buildLinkIndex(header, records),
	}, nil
}

// All возвращает записи в порядке файла. Срез нельзя изменять.
func (r *Repo) All(_ context.Context) ([]domain.CatalogRecord, error) {
	return r.records, nil
}

// LinkByID возвращает ссылку первой записи с числовым id, равным id.
func (r *Repo) LinkByID(_ context.Context, id int64) (string, bool, error) {
	link, ok := r.links[id]
	return link, ok, nil
}

func (r *Repo) Len() int {
	return len(r.records)
}

// numericColumns отмечает колонки, где каждое непустое значение — десятичное число.
func numericColumns(header []string, rows [][]string) []bool {
	numeric := make([]bool, len(header))
	for i := range header {
		seen := false
		numeric[i] = true
		for _, row := range rows {
			if i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			seen = true
			if _, err := decimal.NewFromString(cell); err != nil {
				numeric[i] = false
				break
			}
		}
		numeric[i] = numeric[i] && seen
	}
	return numeric
}

func buildLinkIndex(header []string, records []domain.CatalogRecord) map[int64]string {
	links := make(map[int64]string)
	if indexOf(header, domain.CatalogColumnID) < 0 || indexOf(header, domain.CatalogColumnLink) < 0 {
		return links
	}

	for _, rec := range records {
		raw, _ := rec.Get(domain.CatalogColumnID)
		id, ok := raw.(decimal.Decimal)
		if !ok || !id.IsInteger() {
			continue
		}

		link := rec.Text(domain.CatalogColumnLink)
		if link == "" {
			continue
		}
		if _, dup := links[id.IntPart()]; !dup {
			links[id.IntPart()] = link
		}
	}
	return links
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func cleanCell(s string) string {
	return strings.TrimSpace(s)
}
