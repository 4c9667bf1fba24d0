package pgdb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPartitionFor(t *testing.T) {
	tests := []struct {
		role    domain.Role
		want    string
		wantErr bool
	}{
		{domain.RoleCustomer, "customers", false},
		{domain.RoleSeller, "sellers", false},
		{domain.Role("admin"), "", true},
		{domain.Role("customers; DROP TABLE sellers"), "", true},
	}

	for _, tt := range tests {
		got, err := partitionFor(tt.role)
		if (err != nil) != tt.wantErr {
			t.Errorf("partitionFor(%q) err = %v", tt.role, err)
			continue
		}
		if tt.wantErr && !errors.Is(err, e.ErrInvalidRole) {
			t.Errorf("partitionFor(%q) err = %v, want ErrInvalidRole", tt.role, err)
		}
		if got != tt.want {
			t.Errorf("partitionFor(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestPostgresDuplicate(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolation})
	if !postgresDuplicate(dup) {
		t.Error("wrapped unique violation not detected")
	}
	if postgresDuplicate(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation treated as duplicate")
	}
	if postgresDuplicate(errors.New("boom")) {
		t.Error("plain error treated as duplicate")
	}
}
