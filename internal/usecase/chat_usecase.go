package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/metrics"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
	"github.com/google/uuid"
)

// EmptyMessageReply — ответ на пустое сообщение, модель при этом не вызывается.
const EmptyMessageReply = "Please send a valid message."

// ChatUseCase пересылает сообщения генеративной модели, сохраняя историю каждой сессии отдельно.
type ChatUseCase struct {
	model   ChatModelInfra
	history ChatHistoryRepository
	timeout time.Duration
	locks   *sessionLocks
	logger  logger.Logger
}

func NewChatUC(model ChatModelInfra, history ChatHistoryRepository, timeout time.Duration, logger logger.Logger) *ChatUseCase {
	return &ChatUseCase{
		model:   model,
		history: history,
		timeout: timeout,
		locks:   newSessionLocks(),
		logger:  logger,
	}
}

// Send отправляет сообщение в рамках сессии и возвращает ответ модели.
// Если сессия не указана, создаётся новая; её идентификатор возвращается в ответе.
func (c *ChatUseCase) Send(ctx context.Context, req *ChatReq) (*ChatRes, error) {
	const op = "ChatUseCase.Send"

	var sessionID, message string
	if req != nil {
		sessionID = strings.TrimSpace(req.SessionID)
		message = req.Message
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if strings.TrimSpace(message) == "" {
		metrics.RecordChat("empty")
		return NewChatRes(EmptyMessageReply, sessionID), nil
	}

	if c.model == nil {
		metrics.RecordChat("error")
		return nil, e.Wrap(op, e.ErrChatServiceDisabled)
	}

	// Сообщения одной сессии обрабатываются строго по очереди
	unlock := c.locks.lock(sessionID)
	defer unlock()

	history, err := c.history.Get(ctx, sessionID)
	if err != nil {
		metrics.RecordChat("error")
		return nil, e.Wrap(op, err)
	}

	genCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reply, err := c.model.Generate(genCtx, history, message)
	if err != nil {
		metrics.RecordChat("error")
		return nil, e.Wrap(op, err)
	}

	if err := c.history.Append(ctx, sessionID,
		domain.NewChatTurn(domain.ChatRoleUser, message),
		domain.NewChatTurn(domain.ChatRoleModel, reply),
	); err != nil {
		c.logger.Warnf("%s: failed to save history for session %s: %v", op, sessionID, err)
	}

	metrics.RecordChat("replied")
	return NewChatRes(reply, sessionID), nil
}

// sessionLocks — мьютексы по ключу сессии, запись удаляется, когда её никто не держит.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (s *sessionLocks) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sessionLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}
