package usecase

import (
	"context"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
)

type AnomalyUC interface {
	Compare(ctx context.Context, req *CompareImagesReq) (*domain.Comparison, error)
}

type RecommendUC interface {
	Recommend(ctx context.Context, req *RecommendReq) (*RecommendRes, error)
}

type CatalogUC interface {
	Search(ctx context.Context, req *SearchCatalogReq) ([]domain.CatalogRecord, error)
}

type AuthUC interface {
	Register(ctx context.Context, req *CredentialsReq) (*AuthRes, error)
	Login(ctx context.Context, req *CredentialsReq) (*AuthRes, error)
}

type ChatUC interface {
	Send(ctx context.Context, req *ChatReq) (*ChatRes, error)
}
