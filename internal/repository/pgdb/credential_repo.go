package pgdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CredentialRepo хранит учётные записи в отдельной таблице на каждую роль.
type CredentialRepo struct {
	pool *pgxpool.Pool
	conv converter.CredentialConverter
}

func NewCredentialRepo(pool *pgxpool.Pool, conv converter.CredentialConverter) *CredentialRepo {
	return &CredentialRepo{
		pool: pool,
		conv: conv,
	}
}

// partitionFor возвращает таблицу раздела роли. Имя таблицы никогда не берётся из запроса.
func partitionFor(role domain.Role) (string, error) {
	switch role {
	case domain.RoleCustomer:
		return "customers", nil
	case domain.RoleSeller:
		return "sellers", nil
	default:
		return "", e.ErrInvalidRole
	}
}

// Create добавляет учётную запись. Занятый id в разделе роли даёт ErrUserAlreadyExists.
// Использует транзакцию из контекста, если она есть.
func (c *CredentialRepo) Create(ctx context.Context, cred *domain.Credential) error {
	const op = "CredentialRepo.Create"

	table, err := partitionFor(cred.Role)
	if err != nil {
		return e.Wrap(op, err)
	}

	model := c.conv.ToModel(cred)
	query := fmt.Sprintf(`
		INSERT INTO %s (id, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at;
	`, table)

	q := tr.QuerierFromCtx(ctx, c.pool)
	if err := q.QueryRow(ctx, query, model.ID, model.PasswordHash).Scan(&model.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e.Wrap(op, e.ErrUserAlreadyExists)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	cred.CreatedAt = model.CreatedAt
	return nil
}

// Get ищет учётную запись только в разделе указанной роли.
func (c *CredentialRepo) Get(ctx context.Context, role domain.Role, id string) (*domain.Credential, error) {
	const op = "CredentialRepo.Get"

	table, err := partitionFor(role)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	query := fmt.Sprintf(`SELECT id, password_hash, created_at FROM %s WHERE id = $1`, table)

	var model converter.CredentialModel
	q := tr.QuerierFromCtx(ctx, c.pool)
	if err := q.QueryRow(ctx, query, id).Scan(&model.ID, &model.PasswordHash, &model.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(op, e.ErrCredentialNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model, role), nil
}
