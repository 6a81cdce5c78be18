// Package storetest opens throwaway sqlite stores for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/proporco/internal/config"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/store"
)

// New opens a migrated sqlite store in a temporary directory.
func New(t testing.TB) *store.Store {
	t.Helper()
	cfg := config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "proporco.db")}
	s, err := store.Open(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate store: %v", err)
	}
	return s
}

// Account inserts an account and returns it.
func Account(t testing.TB, s *store.Store, name string) models.Account {
	t.Helper()
	acc := models.Account{ID: uuid.NewString(), Name: name, Email: name + "@example.com", DigestEnabled: true}
	if err := s.Read(context.Background()).Insert(&acc); err != nil {
		t.Fatalf("insert account: %v", err)
	}
	return acc
}
