package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/metrics"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
	"github.com/DRSN-tech/cartify-backend/pkg/validation"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ConflictError — логин уже занят в разделе указанной роли.
type ConflictError struct {
	Role string // роль в том виде, в каком её передал клиент
}

func (c *ConflictError) Error() string {
	return fmt.Sprintf("Username already exists in %s collection. Try with another username.", c.Role)
}

func (c *ConflictError) Unwrap() error {
	return e.ErrUserAlreadyExists
}

type registerInput struct {
	ID       string `validate:"required,cartify_email"`
	Password string `validate:"required"`
	Role     string `validate:"required"`
}

type loginInput struct {
	ID       string `validate:"required"`
	Password string `validate:"required"`
	Role     string `validate:"required"`
}

// AuthUseCase регистрирует пользователей и проверяет их учётные данные внутри раздела роли.
type AuthUseCase struct {
	credRepo   CredentialRepository
	outboxRepo OutboxRepository // nil, если публикация событий отключена
	tx         Transactor
	hashCost   int
	logger     logger.Logger
}

func NewAuthUC(credRepo CredentialRepository, outboxRepo OutboxRepository, tx Transactor, hashCost int, logger logger.Logger) *AuthUseCase {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &AuthUseCase{
		credRepo:   credRepo,
		outboxRepo: outboxRepo,
		tx:         tx,
		hashCost:   hashCost,
		logger:     logger,
	}
}

// Register создаёт учётную запись в разделе роли. Пароль сохраняется только в виде bcrypt-хэша.
// Вместе с записью в той же транзакции сохраняется событие user_registered.
func (a *AuthUseCase) Register(ctx context.Context, req *CredentialsReq) (res *AuthRes, err error) {
	const op = "AuthUseCase.Register"

	if req == nil {
		return nil, e.Wrap(op, e.ErrInvalidInput)
	}
	defer func() { metrics.RecordAuth("register", roleLabel(req.Role), err) }()

	tags, err := validation.FailedTags(registerInput{ID: req.ID, Password: req.Password, Role: req.Role})
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if tags["required"] {
		return nil, e.ErrMissingCredentials
	}
	if tags[validation.EmailTag] {
		return nil, e.ErrInvalidEmail
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return nil, e.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.hashCost)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	cred := domain.NewCredential(req.ID, string(hash), role)

	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := a.credRepo.Create(ctx, cred); err != nil {
			return err
		}

		if a.outboxRepo == nil {
			return nil
		}

		payload, err := userRegisteredPayload(cred)
		if err != nil {
			return err
		}
		_, err = a.outboxRepo.Create(ctx, NewOutboxEvent(UserRegistered, cred.ID, payload))
		return err
	})
	if err != nil {
		if errors.Is(err, e.ErrUserAlreadyExists) {
			return nil, &ConflictError{Role: req.Role}
		}
		return nil, e.Wrap(op, err)
	}

	a.logger.Infof("user registered in %s partition", role)
	return NewAuthRes(fmt.Sprintf("User added successfully to %s collection", req.Role), role), nil
}

// Login проверяет учётные данные. Неизвестный логин, неверный пароль и чужая роль
// неразличимы для клиента.
func (a *AuthUseCase) Login(ctx context.Context, req *CredentialsReq) (res *AuthRes, err error) {
	const op = "AuthUseCase.Login"

	if req == nil {
		return nil, e.Wrap(op, e.ErrInvalidInput)
	}
	defer func() { metrics.RecordAuth("login", roleLabel(req.Role), err) }()

	tags, err := validation.FailedTags(loginInput{ID: req.ID, Password: req.Password, Role: req.Role})
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if tags["required"] {
		return nil, e.ErrMissingCredentials
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return nil, e.ErrInvalidRole
	}

	cred, err := a.credRepo.Get(ctx, role, req.ID)
	if err != nil {
		if errors.Is(err, e.ErrCredentialNotFound) {
			return nil, e.ErrInvalidCredentials
		}
		return nil, e.Wrap(op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		return nil, e.ErrInvalidCredentials
	}

	return NewAuthRes(fmt.Sprintf("Login successful as %s", req.Role), role), nil
}

// userRegisteredPayload сериализует событие регистрации в protobuf Struct.
func userRegisteredPayload(cred *domain.Credential) ([]byte, error) {
	st, err := structpb.NewStruct(map[string]any{
		"event_type":    string(UserRegistered),
		"user_id":       cred.ID,
		"role":          cred.Role.String(),
		"registered_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

func roleLabel(raw string) string {
	if role, ok := domain.ParseRole(raw); ok {
		return role.String()
	}
	return "unknown"
}
