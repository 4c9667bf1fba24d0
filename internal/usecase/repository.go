package usecase

import (
	"context"
	"io"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
)

// GalleryRepository ищет ближайшие к запросу векторы предрассчитанной галереи.
type GalleryRepository interface {
	Dim() int
	Nearest(ctx context.Context, query domain.FeatureVector, k int) ([]GalleryHit, error)
}

// CatalogRepository отдаёт записи каталога в исходном порядке.
type CatalogRepository interface {
	All(ctx context.Context) ([]domain.CatalogRecord, error)
}

// LinkRepository находит ссылку на товар по числовому id.
type LinkRepository interface {
	LinkByID(ctx context.Context, id int64) (string, bool, error)
}

type CredentialRepository interface {
	Create(ctx context.Context, cred *domain.Credential) error
	Get(ctx context.Context, role domain.Role, id string) (*domain.Credential, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	// Release возвращает событие в очередь после неудачной публикации.
	// После maxAttempts неудач событие помечается как failed.
	Release(ctx context.Context, id int64, maxAttempts int) error
	// RequeueStale возвращает в очередь события, зависшие в processing дольше olderThan.
	RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ChatHistoryRepository хранит историю диалога по идентификатору сессии.
// Get возвращает пустую историю для неизвестной сессии и продлевает время жизни существующей.
type ChatHistoryRepository interface {
	Get(ctx context.Context, sessionID string) ([]domain.ChatTurn, error)
	Append(ctx context.Context, sessionID string, turns ...domain.ChatTurn) error
}

// ImageRepository — хранилище байтов изображений.
type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Transactor выполняет fn в одной транзакции БД.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
