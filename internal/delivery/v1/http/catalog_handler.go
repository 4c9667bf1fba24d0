package http

import (
	"errors"
	"net/http"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/usecase"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
)

const maxJSONBody = 1 << 20

type CatalogHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase, logger: logger}
}

// SearchRequest — тело запроса поиска по каталогу.
type SearchRequest struct {
	ArticleType string `json:"articleType"`
}

// getData
//
//	@Summary		Поиск по каталогу
//	@Description	Регистронезависимый поиск подстроки в колонке articleType
//	@Tags			catalog
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SearchRequest			true	"Тип товара"
//	@Success		200		{array}		map[string]interface{}	"Найденные записи"
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	MessageResponse	"Ничего не найдено"
//	@Router			/get_data [post]
func (c *CatalogHandler) getData(w http.ResponseWriter, r *http.Request) {
	obj, err := decodeJSONObject(r, maxJSONBody)
	if err != nil {
		WriteError(w, e.ErrMissingArticleType)
		return
	}

	var articleType *string
	if _, present := obj[domain.CatalogColumnArticleType]; present {
		value, ok := stringField(obj, domain.CatalogColumnArticleType)
		if !ok {
			WriteError(w, e.ErrInvalidArticleType)
			return
		}
		articleType = &value
	}

	records, err := c.catalogUsecase.Search(r.Context(), usecase.NewSearchCatalogReq(articleType))
	if err != nil {
		if !errors.Is(err, e.ErrNoItemsFound) {
			c.logger.Warnf("catalog search failed: %v", err)
		}
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, records)
}
