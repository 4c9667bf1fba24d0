package domain

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

const (
	CatalogColumnArticleType = "articleType"
	CatalogColumnID          = "id"
	CatalogColumnLink        = "link"
)

// CatalogRecord — строка каталога с именованными колонками. Порядок колонок совпадает с CSV.
type CatalogRecord struct {
	columns []string
	values  []any // string | decimal.Decimal | nil
}

func NewCatalogRecord(columns []string, values []any) CatalogRecord {
	return CatalogRecord{columns: columns, values: values}
}

func (c CatalogRecord) Columns() []string {
	return c.columns
}

// Get возвращает значение колонки и признак её наличия.
func (c CatalogRecord) Get(column string) (any, bool) {
	for i, name := range c.columns {
		if name == column {
			if i < len(c.values) {
				return c.values[i], true
			}
			return nil, true
		}
	}
	return nil, false
}

// Text возвращает строковое представление ячейки; пустая строка для null.
func (c CatalogRecord) Text(column string) string {
	v, _ := c.Get(column)
	switch val := v.(type) {
	case string:
		return val
	case decimal.Decimal:
		return val.String()
	default:
		return ""
	}
}

// MarshalJSON сериализует запись как объект, сохраняя порядок колонок.
// Числа выводятся без кавычек в точном десятичном представлении.
func (c CatalogRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var v any
		if i < len(c.values) {
			v = c.values[i]
		}
		switch val := v.(type) {
		case nil:
			buf.WriteString("null")
		case decimal.Decimal:
			buf.WriteString(val.String())
		default:
			raw, err := json.Marshal(val)
			if err != nil {
				return nil, err
			}
			buf.Write(raw)
		}
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
