package domain

// Decision — итог сравнения двух изображений.
type Decision int

const (
	DecisionPossibleAnomaly Decision = iota
	DecisionReviewNeeded
	DecisionMatchConfirmed
)

func (d Decision) String() string {
	switch d {
	case DecisionMatchConfirmed:
		return "✅ Match Confirmed"
	case DecisionReviewNeeded:
		return "⚠️ Review Needed"
	default:
		return "❌ Possible Anomaly - Reupload Required"
	}
}

// Label возвращает короткую метку решения для метрик и логов.
func (d Decision) Label() string {
	switch d {
	case DecisionMatchConfirmed:
		return "match_confirmed"
	case DecisionReviewNeeded:
		return "review_needed"
	default:
		return "possible_anomaly"
	}
}

// Comparison — результат сравнения пары изображений.
type Comparison struct {
	Cosine     float64
	Structural float64
	Blended    float64
	Decision   Decision
}
