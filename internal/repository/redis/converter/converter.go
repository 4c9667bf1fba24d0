package converter

import (
	"github.com/DRSN-tech/cartify-backend/internal/domain"
)

// ChatTurnConverter переводит реплики между доменной моделью и моделью хранения.
type ChatTurnConverter interface {
	ToRedisModel(turn domain.ChatTurn) ChatTurnRedisModel
	ToDomain(model ChatTurnRedisModel) domain.ChatTurn
	ToArrDomain(models []ChatTurnRedisModel) []domain.ChatTurn
}

type ChatTurnConverterImpl struct{}

func NewChatTurnConverter() *ChatTurnConverterImpl {
	return &ChatTurnConverterImpl{}
}

func (c *ChatTurnConverterImpl) ToRedisModel(turn domain.ChatTurn) ChatTurnRedisModel {
	return ChatTurnRedisModel{
		Role: string(turn.Role),
		Text: turn.Text,
	}
}

func (c *ChatTurnConverterImpl) ToDomain(model ChatTurnRedisModel) domain.ChatTurn {
	return domain.NewChatTurn(domain.ChatRole(model.Role), model.Text)
}

func (c *ChatTurnConverterImpl) ToArrDomain(models []ChatTurnRedisModel) []domain.ChatTurn {
	if models == nil {
		return nil
	}
	turns := make([]domain.ChatTurn, len(models))
	for i, m := range models {
		turns[i] = c.ToDomain(m)
	}
	return turns
}
