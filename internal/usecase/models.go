package usecase

import (
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/google/uuid"
)

// ANOMALY USECASE

// UploadImage представляет изображение, загруженное через multipart/form-data.
type UploadImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // имя поля формы (image1, image2, file)
}

// CompareImagesReq — запрос на сравнение двух изображений товара.
type CompareImagesReq struct {
	First  UploadImage
	Second UploadImage
}

// RECOMMEND USECASE

// RecommendReq — запрос на поиск визуально похожих товаров.
type RecommendReq struct {
	Image UploadImage
}

// RecommendRes — номера ближайших записей галереи и ссылки на них.
// Links[i] равен nil, если для Numbers[i] ссылка не найдена.
type RecommendRes struct {
	Numbers []int64
	Links   []*string
}

// CATALOG USECASE

// SearchCatalogReq — запрос поиска по articleType. Nil означает, что поле не передано.
type SearchCatalogReq struct {
	ArticleType *string
}

// AUTH USECASE

// CredentialsReq — данные для регистрации или входа.
type CredentialsReq struct {
	ID       string
	Password string
	Role     string
}

// AuthRes — результат успешной регистрации или входа.
type AuthRes struct {
	Message string
	Role    domain.Role
}

// CHAT USECASE

// ChatReq — сообщение пользователя в рамках сессии. Пустой SessionID открывает новую сессию.
type ChatReq struct {
	SessionID string
	Message   string
}

// ChatRes — ответ модели и идентификатор сессии, к которой он относится.
type ChatRes struct {
	Reply     string
	SessionID string
}

// INFRASTUCTURE

// StageImagesReq — запрос на размещение изображений во временном хранилище.
type StageImagesReq struct {
	Prefix string
	Images []UploadImage
}

// StageImagesRes — ключи размещённых изображений в порядке запроса.
type StageImagesRes struct {
	ImagesKeys []string
}

// WriteRawMessageReq — готовое к отправке сообщение брокера.
type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// REPOSITORIES

// GalleryHit — запись галереи, найденная поиском ближайших соседей.
type GalleryHit struct {
	Position int
	Number   int64
	Score    float64
}

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
	Failed     OutboxStatus = "failed" // исчерпаны попытки публикации
)

type OutboxEventType string

const (
	UserRegistered OutboxEventType = "user_registered"
)

// OutboxEvent — доменное событие, ожидающее публикации в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     uuid.UUID
	EventType   OutboxEventType
	AggregateID string
	Payload     []byte
	Status      OutboxStatus
	Attempts    int
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// MAPPERS
func NewUploadImage(data []byte, mimeType string, size int64, name string) *UploadImage {
	return &UploadImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewCompareImagesReq(first, second UploadImage) *CompareImagesReq {
	return &CompareImagesReq{
		First:  first,
		Second: second,
	}
}

func NewRecommendReq(image UploadImage) *RecommendReq {
	return &RecommendReq{Image: image}
}

func NewRecommendRes(numbers []int64, links []*string) *RecommendRes {
	return &RecommendRes{
		Numbers: numbers,
		Links:   links,
	}
}

func NewSearchCatalogReq(articleType *string) *SearchCatalogReq {
	return &SearchCatalogReq{ArticleType: articleType}
}

func NewCredentialsReq(id, password, role string) *CredentialsReq {
	return &CredentialsReq{
		ID:       id,
		Password: password,
		Role:     role,
	}
}

func NewAuthRes(message string, role domain.Role) *AuthRes {
	return &AuthRes{
		Message: message,
		Role:    role,
	}
}

func NewChatReq(sessionID, message string) *ChatReq {
	return &ChatReq{
		SessionID: sessionID,
		Message:   message,
	}
}

func NewChatRes(reply, sessionID string) *ChatRes {
	return &ChatRes{
		Reply:     reply,
		SessionID: sessionID,
	}
}

func NewStageImagesReq(prefix string, images []UploadImage) *StageImagesReq {
	return &StageImagesReq{
		Prefix: prefix,
		Images: images,
	}
}

func NewStageImagesRes(imagesKeys []string) *StageImagesRes {
	return &StageImagesRes{ImagesKeys: imagesKeys}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

func NewGalleryHit(position int, number int64, score float64) GalleryHit {
	return GalleryHit{
		Position: position,
		Number:   number,
		Score:    score,
	}
}

func NewOutboxEvent(eventType OutboxEventType, aggregateID string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:     uuid.New(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   time.Now().UTC(),
	}
}
