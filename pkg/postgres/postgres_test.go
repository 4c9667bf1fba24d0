package postgres

import (
	"strings"
	"testing"

	"github.com/DRSN-tech/cartify-backend/internal/cfg"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestDSN(t *testing.T) {
	c := &cfg.PGDBCfg{
		Host:     "db",
		Port:     "5432",
		User:     "cartify",
		Password: `p a'ss\`,
		DBName:   "cartify",
		SSLMode:  "disable",
	}

	dsn := DSN(c)
	if !strings.Contains(dsn, `password='p a\'ss\\'`) {
		t.Errorf("password not quoted: %s", dsn)
	}

	parsed, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if parsed.ConnConfig.Password != c.Password || parsed.ConnConfig.Host != "db" {
		t.Errorf("parsed = %+v", parsed.ConnConfig)
	}
}

func TestMigrationsSource(t *testing.T) {
	got, err := MigrationsSource("db/migrations")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "file:///") || !strings.HasSuffix(got, "/db/migrations") {
		t.Errorf("source = %q", got)
	}
}
