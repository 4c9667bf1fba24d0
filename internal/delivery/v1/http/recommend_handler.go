package http

import (
	"net/http"

	"github.com/DRSN-tech/cartify-backend/internal/usecase"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
)

type RecommendHandler struct {
	recommendUsecase usecase.RecommendUC
	limits           UploadLimits
	logger           logger.Logger
}

func NewRecommendHandler(recommendUsecase usecase.RecommendUC, limits UploadLimits, logger logger.Logger) *RecommendHandler {
	return &RecommendHandler{recommendUsecase: recommendUsecase, limits: limits, logger: logger}
}

// RecommendResponse — номера похожих товаров и ссылки на них (null, если ссылки нет).
type RecommendResponse struct {
	RecommendedNumbers []int64   `json:"recommended_numbers"`
	RecommendedLinks   []*string `json:"recommended_links"`
}

func NewRecommendResponse(res *usecase.RecommendRes) *RecommendResponse {
	numbers, links := res.Numbers, res.Links
	if numbers == nil {
		numbers = []int64{}
	}
	if links == nil {
		links = []*string{}
	}
	return &RecommendResponse{RecommendedNumbers: numbers, RecommendedLinks: links}
}

// recommend
//
//	@Summary		Визуальные рекомендации
//	@Description	Возвращает до пяти визуально похожих товаров из галереи
//	@Tags			recommend
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file			true	"Изображение товара"
//	@Success		200		{object}	RecommendResponse
//	@Failure		400		{object}	ErrorResponse	"Нет файла"
//	@Failure		500		{object}	ErrorResponse
//	@Router			/recommend [post]
func (h *RecommendHandler) recommend(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxRequestBytes)
	if err := parseMultipart(r, h.limits.MaxMemory); err != nil {
		h.logger.Warnf("%d %v", http.StatusBadRequest, err)
		WriteError(w, err)
		return
	}

	fh := formFile(r, "file")
	if fh == nil {
		// Часть без имени файла multipart-парсер кладёт в обычные значения формы
		if r.MultipartForm != nil && len(r.MultipartForm.Value["file"]) > 0 {
			WriteError(w, e.ErrNoSelectedFile)
			return
		}
		WriteError(w, e.ErrNoFilePart)
		return
	}
	if fh.Filename == "" {
		WriteError(w, e.ErrNoSelectedFile)
		return
	}

	img, err := readUpload("file", fh, h.limits.MaxFileBytes)
	if err != nil {
		h.logger.Warnf("read file: %v", err)
		WriteError(w, err)
		return
	}

	res, err := h.recommendUsecase.Recommend(r.Context(), usecase.NewRecommendReq(*img))
	if err != nil {
		h.logger.Errorf(err, "recommendation failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewRecommendResponse(res))
}
