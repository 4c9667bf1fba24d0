package http

import (
	"net/http"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/usecase"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
)

type AnomalyHandler struct {
	anomalyUsecase usecase.AnomalyUC
	limits         UploadLimits
	logger         logger.Logger
}

func NewAnomalyHandler(anomalyUsecase usecase.AnomalyUC, limits UploadLimits, logger logger.Logger) *AnomalyHandler {
	return &AnomalyHandler{anomalyUsecase: anomalyUsecase, limits: limits, logger: logger}
}

// CompareResponse — результат сравнения двух изображений товара.
type CompareResponse struct {
	SimilarityScore float64 `json:"similarity_score"`
	SSIMSimilarity  float64 `json:"ssim_similarity"`
	FinalSimilarity float64 `json:"final_similarity"`
	Decision        string  `json:"decision"`
}

func NewCompareResponse(c *domain.Comparison) *CompareResponse {
	return &CompareResponse{
		SimilarityScore: c.Cosine,
		SSIMSimilarity:  c.Structural,
		FinalSimilarity: c.Blended,
		Decision:        c.Decision.String(),
	}
}

// upload
//
//	@Summary		Проверка товара на аномалию
//	@Description	Сравнивает два изображения товара: косинусное сходство признаков CNN и SSIM
//	@Tags			anomaly
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image1	formData	file			true	"Эталонное изображение"
//	@Param			image2	formData	file			true	"Проверяемое изображение"
//	@Success		200		{object}	CompareResponse
//	@Failure		400		{object}	ErrorResponse	"Нет изображений"
//	@Failure		500		{object}	ErrorResponse	"Ошибка извлечения признаков"
//	@Router			/upload [post]
func (a *AnomalyHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.limits.MaxRequestBytes)
	if err := parseMultipart(r, a.limits.MaxMemory); err != nil {
		a.logger.Warnf("%d %v", http.StatusBadRequest, err)
		WriteError(w, err)
		return
	}

	first, second := formFile(r, "image1"), formFile(r, "image2")
	if first == nil || second == nil {
		a.logger.Warnf("%d %s", http.StatusBadRequest, e.ErrNoImages.Error())
		WriteError(w, e.ErrNoImages)
		return
	}

	img1, err := readUpload("image1", first, a.limits.MaxFileBytes)
	if err != nil {
		a.logger.Warnf("read image1: %v", err)
		WriteError(w, err)
		return
	}
	img2, err := readUpload("image2", second, a.limits.MaxFileBytes)
	if err != nil {
		a.logger.Warnf("read image2: %v", err)
		WriteError(w, err)
		return
	}

	res, err := a.anomalyUsecase.Compare(r.Context(), usecase.NewCompareImagesReq(*img1, *img2))
	if err != nil {
		a.logger.Errorf(err, "anomaly comparison failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewCompareResponse(res))
}
