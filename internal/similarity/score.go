package similarity

import (
	"image"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
)

const (
	CosineWeight = 0.7
	SSIMWeight   = 0.3

	// Пороги строгие: ровно 0.85 — ещё не подтверждение, ровно 0.60 — ещё аномалия.
	MatchThreshold  = 0.85
	ReviewThreshold = 0.60
)

// Blend — взвешенная сумма 0.7·cosine + 0.3·ssim.
func Blend(cosine, ssim float64) float64 {
	return CosineWeight*cosine + SSIMWeight*ssim
}

// Decide переводит итоговую оценку в решение.
func Decide(blended float64) domain.Decision {
	switch {
	case blended > MatchThreshold:
		return domain.DecisionMatchConfirmed
	case blended > ReviewThreshold:
		return domain.DecisionReviewNeeded
	default:
		return domain.DecisionPossibleAnomaly
	}
}

// Compare собирает полное сравнение пары изображений по признакам и полутоновым копиям.
func Compare(fa, fb domain.FeatureVector, ga, gb *image.Gray) (domain.Comparison, error) {
	const op = "similarity.Compare"

	cos, err := Cosine(fa, fb)
	if err != nil {
		return domain.Comparison{}, e.Wrap(op, err)
	}

	ssim, err := SSIM(ga, gb)
	if err != nil {
		return domain.Comparison{}, e.Wrap(op, err)
	}

	blended := Blend(cos, ssim)
	return domain.Comparison{
		Cosine:     cos,
		Structural: ssim,
		Blended:    blended,
		Decision:   Decide(blended),
	}, nil
}
