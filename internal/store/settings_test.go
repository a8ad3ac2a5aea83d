package store

import (
	"context"
	"testing"

	"github.com/erazemk/solskiinventar/internal/db"
)

func TestEnsureSetting(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	v, err := EnsureSetting(ctx, database, "k", "first")
	if err != nil {
		t.Fatalf("EnsureSetting: %v", err)
	}
	if v != "first" {
		t.Errorf("expected first, got %s", v)
	}

	v, _ = EnsureSetting(ctx, database, "k", "second")
	if v != "first" {
		t.Errorf("expected stored value to win, got %s", v)
	}

	v, _ = GetSetting(ctx, database, "missing")
	if v != "" {
		t.Errorf("expected empty value, got %s", v)
	}
}

func TestJWTSecretIsStable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := JWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("JWTSecret: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(first))
	}

	second, _ := JWTSecret(ctx, database)
	if first != second {
		t.Error("expected the same secret on every call")
	}
}
