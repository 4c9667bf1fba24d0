package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CatalogUseCase ищет товары каталога по подстроке в articleType.
type CatalogUseCase struct {
	catalog CatalogRepository
}

func NewCatalogUC(catalog CatalogRepository) *CatalogUseCase {
	return &CatalogUseCase{catalog: catalog}
}

// Search возвращает записи, у которых articleType содержит запрос без учёта регистра,
// в порядке каталога. Пустой результат — ErrNoItemsFound.
func (c *CatalogUseCase) Search(ctx context.Context, req *SearchCatalogReq) ([]domain.CatalogRecord, error) {
	const op = "CatalogUseCase.Search"

	if req == nil || req.ArticleType == nil {
		return nil, e.Wrap(op, e.ErrMissingArticleType)
	}

	query := NormalizeQuery(*req.ArticleType)
	if query == "" {
		return nil, e.Wrap(op, e.ErrInvalidArticleType)
	}

	records, err := c.catalog.All(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	found := make([]domain.CatalogRecord, 0)
	for _, rec := range records {
		if strings.Contains(lower(rec.Text(domain.CatalogColumnArticleType)), query) {
			found = append(found, rec)
		}
	}

	if len(found) == 0 {
		return nil, e.ErrNoItemsFound
	}

	return found, nil
}

// NormalizeQuery обрезает пробелы и приводит строку к нижнему регистру с учётом Unicode.
func NormalizeQuery(s string) string {
	return lower(strings.TrimSpace(s))
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
