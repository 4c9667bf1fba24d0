package http

import (
	"net/http"

	"github.com/DRSN-tech/cartify-backend/internal/usecase"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
)

const sessionHeader = "X-Session-ID"

type ChatHandler struct {
	chatUsecase usecase.ChatUC
	logger      logger.Logger
}

func NewChatHandler(chatUsecase usecase.ChatUC, logger logger.Logger) *ChatHandler {
	return &ChatHandler{chatUsecase: chatUsecase, logger: logger}
}

// ChatRequest — сообщение пользователя. session_id можно передать и заголовком X-Session-ID.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse — ответ модели и идентификатор сессии для следующих сообщений.
type ChatResponse struct {
	Bot       string `json:"bot"`
	SessionID string `json:"session_id"`
}

// chat
//
//	@Summary		Чат-бот
//	@Description	Отправляет сообщение модели с учётом истории сессии
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			request			body		ChatRequest	true	"Сообщение"
//	@Param			X-Session-ID	header		string		false	"Идентификатор сессии"
//	@Success		200				{object}	ChatResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		503				{object}	ErrorResponse	"Чат не настроен"
//	@Router			/chat [post]
func (c *ChatHandler) chat(w http.ResponseWriter, r *http.Request) {
	obj, err := decodeJSONBody(r, maxJSONBody)
	if err != nil {
		WriteError(w, err)
		return
	}

	message, _ := stringField(obj, "message")
	sessionID, ok := stringField(obj, "session_id")
	if !ok || sessionID == "" {
		sessionID = r.Header.Get(sessionHeader)
	}

	res, err := c.chatUsecase.Send(r.Context(), usecase.NewChatReq(sessionID, message))
	if err != nil {
		c.logger.Errorf(err, "chat failed, session_id: %s", sessionID)
		WriteError(w, err)
		return
	}

	w.Header().Set(sessionHeader, res.SessionID)
	WriteSuccess(w, http.StatusOK, &ChatResponse{Bot: res.Reply, SessionID: res.SessionID})
}
