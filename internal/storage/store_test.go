package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/logger"
)

// Both stores must behave identically.
func eachStore(t *testing.T, fn func(t *testing.T, store domain.SessionStore)) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)

	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore(log))
	})
	t.Run("sqlite", func(t *testing.T) {
		store, err := OpenSQLite(filepath.Join(t.TempDir(), "history", "proctor.db"), log)
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		fn(t, store)
	})
}

func testSession(id string, created time.Time) *domain.Session {
	return &domain.Session{
		ID:         id,
		Course:     "Linear Algebra",
		Instructor: "Dr. Noor",
		Duration:   90 * time.Minute,
		Remaining:  90 * time.Minute,
		RulesRead:  3,
		Status:     domain.SessionPrepared,
		CreatedAt:  created,
	}
}

func TestStoreCRUD(t *testing.T) {
	eachStore(t, func(t *testing.T, store domain.SessionStore) {
		ctx := context.Background()
		created := time.UnixMilli(time.Now().UnixMilli())
		session := testSession("exam-1", created)

		if err := store.Save(ctx, session); err != nil {
			t.Fatalf("save: %v", err)
		}

		loaded, err := store.Load(ctx, "exam-1")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if loaded.Course != session.Course || loaded.Duration != session.Duration || loaded.RulesRead != 3 {
			t.Fatalf("unexpected session: %+v", loaded)
		}
		if !loaded.CreatedAt.Equal(created) {
			t.Fatalf("created_at: expected %v, got %v", created, loaded.CreatedAt)
		}
		if !loaded.StartedAt.IsZero() || !loaded.EndedAt.IsZero() {
			t.Fatalf("zero times should round-trip, got %+v", loaded)
		}

		// Update in place.
		session.Status = domain.SessionFinished
		session.Remaining = 0
		session.EndedAt = created.Add(90 * time.Minute)
		if err := store.Save(ctx, session); err != nil {
			t.Fatalf("update: %v", err)
		}
		loaded, err = store.Load(ctx, "exam-1")
		if err != nil {
			t.Fatalf("load after update: %v", err)
		}
		if loaded.Status != domain.SessionFinished || loaded.Remaining != 0 || loaded.EndedAt.IsZero() {
			t.Fatalf("update not persisted: %+v", loaded)
		}

		if _, err := store.Load(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		if err := store.Delete(ctx, "exam-1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := store.Delete(ctx, "exam-1"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestStoreListNewestFirst(t *testing.T) {
	eachStore(t, func(t *testing.T, store domain.SessionStore) {
		ctx := context.Background()
		base := time.UnixMilli(1_700_000_000_000)
		for i, id := range []string{"a", "b", "c"} {
			if err := store.Save(ctx, testSession(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
				t.Fatalf("save %s: %v", id, err)
			}
		}

		all, err := store.List(ctx, 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
			t.Fatalf("expected c,b,a got %v", ids(all))
		}

		two, err := store.List(ctx, 2)
		if err != nil {
			t.Fatalf("list limit: %v", err)
		}
		if len(two) != 2 || two[0].ID != "c" || two[1].ID != "b" {
			t.Fatalf("expected c,b got %v", ids(two))
		}
	})
}

func TestMemoryStoreCopies(t *testing.T) {
	store := NewMemoryStore(logger.New(logger.LevelOff, nil))
	ctx := context.Background()
	session := testSession("x", time.Now())
	_ = store.Save(ctx, session)

	session.Course = "changed"
	loaded, _ := store.Load(ctx, "x")
	if loaded.Course != "Linear Algebra" {
		t.Fatalf("store aliased caller's session: %q", loaded.Course)
	}
}

func ids(ss []*domain.Session) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.ID
	}
	return out
}
