package testsupport

import (
	"context"
	"testing"

	"dubstudio/internal/config"
	"dubstudio/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewProject registers a project for tests using the provided store.
func NewProject(t testing.TB, st *store.Store, sourcePath string) *store.Project {
	t.Helper()

	project, err := st.CreateProject(context.Background(), "", sourcePath)
	if err != nil {
		t.Fatalf("store.CreateProject: %v", err)
	}
	return project
}
