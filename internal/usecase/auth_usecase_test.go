package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

func newAuthUC(repo *fakeCredRepo, outbox *fakeOutbox) (*AuthUseCase, *fakeTx) {
	tx := &fakeTx{}
	var ob OutboxRepository
	if outbox != nil {
		ob = outbox
	}
	return NewAuthUC(repo, ob, tx, bcrypt.MinCost, logger.NewNopLogger()), tx
}

func TestAuthUseCase_RegisterValidation(t *testing.T) {
	uc, _ := newAuthUC(newFakeCredRepo(), nil)

	tests := []struct {
		name    string
		req     *CredentialsReq
		wantErr error
	}{
		{name: "missing id", req: NewCredentialsReq("", "pw", "customer"), wantErr: e.ErrMissingCredentials},
		{name: "missing password", req: NewCredentialsReq("a@b.com", "", "customer"), wantErr: e.ErrMissingCredentials},
		{name: "missing role", req: NewCredentialsReq("a@b.com", "pw", ""), wantErr: e.ErrMissingCredentials},
		{name: "missing wins over bad email", req: NewCredentialsReq("nope", "", "customer"), wantErr: e.ErrMissingCredentials},
		{name: "bad email", req: NewCredentialsReq("not-an-email", "pw", "customer"), wantErr: e.ErrInvalidEmail},
		{name: "bad role", req: NewCredentialsReq("a@b.com", "pw", "admin"), wantErr: e.ErrInvalidRole},
		{name: "nil request", req: nil, wantErr: e.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Register(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthUseCase_RegisterPartitions(t *testing.T) {
	repo := newFakeCredRepo()
	outbox := &fakeOutbox{}
	uc, tx := newAuthUC(repo, outbox)
	ctx := context.Background()

	res, err := uc.Register(ctx, NewCredentialsReq("a@b.com", "secret", "Customer"))
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	if res.Message != "User added successfully to Customer collection" {
		t.Errorf("Message = %q", res.Message)
	}
	if res.Role != domain.RoleCustomer {
		t.Errorf("Role = %v", res.Role)
	}

	stored := repo.parts[domain.RoleCustomer]["a@b.com"]
	if stored == nil || stored.PasswordHash == "secret" || !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Errorf("password stored without bcrypt: %+v", stored)
	}

	_, err = uc.Register(ctx, NewCredentialsReq("a@b.com", "other", "customer"))
	var conflict *ConflictError
	if !errors.As(err, &conflict) || !errors.Is(err, e.ErrUserAlreadyExists) {
		t.Fatalf("second register err = %v, want conflict", err)
	}
	if conflict.Error() != "Username already exists in customer collection. Try with another username." {
		t.Errorf("conflict message = %q", conflict.Error())
	}

	if _, err := uc.Register(ctx, NewCredentialsReq("a@b.com", "secret", "seller")); err != nil {
		t.Fatalf("same id as seller: %v", err)
	}

	if tx.calls != 3 {
		t.Errorf("transactions = %d, want 3", tx.calls)
	}
	if len(outbox.events) != 2 {
		t.Fatalf("outbox events = %d, want 2", len(outbox.events))
	}
	if outbox.events[0].EventType != UserRegistered || outbox.events[0].AggregateID != "a@b.com" || len(outbox.events[0].Payload) == 0 {
		t.Errorf("unexpected event %+v", outbox.events[0])
	}
}

func TestAuthUseCase_Login(t *testing.T) {
	repo := newFakeCredRepo()
	uc, _ := newAuthUC(repo, nil)
	ctx := context.Background()

	if _, err := uc.Register(ctx, NewCredentialsReq("shop@b.com", "pw1", "seller")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		req     *CredentialsReq
		wantMsg string
		wantErr error
	}{
		{name: "success", req: NewCredentialsReq("shop@b.com", "pw1", "seller"), wantMsg: "Login successful as seller"},
		{name: "role case insensitive", req: NewCredentialsReq("shop@b.com", "pw1", "SELLER"), wantMsg: "Login successful as SELLER"},
		{name: "wrong role", req: NewCredentialsReq("shop@b.com", "pw1", "customer"), wantErr: e.ErrInvalidCredentials},
		{name: "wrong password", req: NewCredentialsReq("shop@b.com", "pw2", "seller"), wantErr: e.ErrInvalidCredentials},
		{name: "unknown user", req: NewCredentialsReq("x@b.com", "pw1", "seller"), wantErr: e.ErrInvalidCredentials},
		{name: "no email check on login", req: NewCredentialsReq("plain", "pw1", "seller"), wantErr: e.ErrInvalidCredentials},
		{name: "invalid role", req: NewCredentialsReq("shop@b.com", "pw1", "root"), wantErr: e.ErrInvalidRole},
		{name: "missing field", req: NewCredentialsReq("shop@b.com", "", "seller"), wantErr: e.ErrMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := uc.Login(ctx, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", res.Message, tt.wantMsg)
			}
		})
	}
}

func TestAuthUseCase_StoreFailure(t *testing.T) {
	repo := newFakeCredRepo()
	repo.err = errors.New("connection refused")
	uc, _ := newAuthUC(repo, nil)

	_, err := uc.Login(context.Background(), NewCredentialsReq("a@b.com", "pw", "customer"))
	if err == nil || errors.Is(err, e.ErrInvalidCredentials) {
		t.Errorf("store failure must not look like bad credentials: %v", err)
	}
}
