// Package gemini — клиент генеративной модели Google Gemini для чата.
package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
	"github.com/google/generative-ai-go/genai"
	"github.com/jimlawless/whereami"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ChatModel отправляет сообщение вместе с историей сессии и собирает потоковый ответ.
type ChatModel struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger logger.Logger
}

func NewChatModel(ctx context.Context, apiKey, modelName string, logger logger.Logger) (*ChatModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &ChatModel{
		client: client,
		model:  client.GenerativeModel(modelName),
		logger: logger,
	}, nil
}

// Generate возвращает ответ модели. Тексты фрагментов потока склеиваются через "\n".
func (c *ChatModel) Generate(ctx context.Context, history []domain.ChatTurn, message string) (string, error) {
	const op = "ChatModel.Generate"

	session := c.model.StartChat()
	session.History = toContents(history)

	stream := session.SendMessageStream(ctx, genai.Text(message))
	reply, err := collectChunks(stream.Next)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	c.logger.Debugf("gemini reply received, history_len: %d, reply_len: %d", len(history), len(reply))
	return reply, nil
}

func (c *ChatModel) Close() error {
	return c.client.Close()
}

// collectChunks читает поток до iterator.Done.
func collectChunks(next func() (*genai.GenerateContentResponse, error)) (string, error) {
	var chunks []string
	for {
		resp, err := next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", err
		}
		chunks = append(chunks, chunkText(resp))
	}

	return strings.Join(chunks, "\n"), nil
}

// chunkText — текст первого кандидата фрагмента.
func chunkText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func toContents(history []domain.ChatTurn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		contents = append(contents, &genai.Content{
			Role:  string(turn.Role),
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}
	return contents
}
