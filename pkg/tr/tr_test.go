package tr

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubQuerier struct{}

func (stubQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (stubQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (stubQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestTxFromCtx(t *testing.T) {
	if _, err := TxFromCtx(context.Background()); !errors.Is(err, e.ErrTransactionNotFound) {
		t.Errorf("err = %v", err)
	}

	// значение не типа pgx.Tx не считается транзакцией
	ctx := WithTx(context.Background(), "not a tx")
	if _, err := TxFromCtx(ctx); !errors.Is(err, e.ErrTransactionNotFound) {
		t.Errorf("err = %v", err)
	}

	// строковый ключ "tx" не пересекается с ключом пакета
	ctx = context.WithValue(context.Background(), "tx", "legacy") //nolint:staticcheck
	if _, err := TxFromCtx(ctx); err == nil {
		t.Error("foreign context key accepted")
	}
}

func TestQuerierFromCtxFallback(t *testing.T) {
	fallback := stubQuerier{}
	if got := QuerierFromCtx(context.Background(), fallback); got != fallback {
		t.Errorf("QuerierFromCtx = %v", got)
	}
}
