//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Projet-EDP-Iris/irisBackend/internal/auth"
	"github.com/Projet-EDP-Iris/irisBackend/internal/auth/postgres"
)

func TestPostgresAccounts_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	migrator, err := NewMigrator(dsn)
	if err != nil {
		t.Fatalf("failed to create migrator: %v", err)
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	pool, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewAccountRepository(pool)

	account, err := auth.NewAccount("integration@example.com", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA", "regular")
	if err != nil {
		t.Fatalf("failed to build account: %v", err)
	}

	if err := repo.Create(ctx, account); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	defer func() { _ = repo.Delete(ctx, account.ID) }()

	got, err := repo.GetByEmail(ctx, "integration@example.com")
	if err != nil {
		t.Fatalf("get by email failed: %v", err)
	}
	if got.ID != account.ID {
		t.Errorf("expected %v, got %v", account.ID, got.ID)
	}
}
