package converter

import (
	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/usecase"
)

// CredentialConverter преобразует учётные записи между domain и моделью PostgreSQL.
// Роль не хранится в строке: она определяется таблицей.
type CredentialConverter interface {
	ToModel(entity *domain.Credential) *CredentialModel
	ToEntity(model *CredentialModel, role domain.Role) *domain.Credential
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type CredentialConverterImpl struct{}

func NewCredentialConverter() *CredentialConverterImpl {
	return &CredentialConverterImpl{}
}

func (c *CredentialConverterImpl) ToModel(entity *domain.Credential) *CredentialModel {
	if entity == nil {
		return nil
	}
	return &CredentialModel{
		ID:           entity.ID,
		PasswordHash: entity.PasswordHash,
		CreatedAt:    entity.CreatedAt,
	}
}

func (c *CredentialConverterImpl) ToEntity(model *CredentialModel, role domain.Role) *domain.Credential {
	if model == nil {
		return nil
	}
	cred := domain.NewCredential(model.ID, model.PasswordHash, role)
	cred.CreatedAt = model.CreatedAt
	return cred
}

type OutboxEventConverterImpl struct{}

func NewOutboxEventConverter() *OutboxEventConverterImpl {
	return &OutboxEventConverterImpl{}
}

func (c *OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	if entity == nil {
		return nil
	}
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		Attempts:    entity.Attempts,
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (c *OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	if model == nil {
		return nil
	}
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		Attempts:    model.Attempts,
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c *OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	if models == nil {
		return nil
	}
	out := make([]*usecase.OutboxEvent, len(models))
	for i, m := range models {
		out[i] = c.ToEntity(m)
	}
	return out
}
