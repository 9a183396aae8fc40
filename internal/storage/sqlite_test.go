package storage

import (
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsApply(t *testing.T) {
	s := openTestStore(t)

	versions, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(versions) == 0 || versions[0] != 1 {
		t.Fatalf("versions = %v, want [1 ...]", versions)
	}
}

func TestInteractionRoundTrip(t *testing.T) {
	s := openTestStore(t)

	in := Interaction{
		ID:              "ix-1",
		CreatedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		UserID:          "u1",
		SessionID:       "s1",
		UserQuery:       "我想申请美国的硕士",
		Status:          "success",
		MatchType:       "guessed_parallel",
		ResponseMessage: "已为您匹配到项目",
	}
	if err := s.SaveInteraction(in); err != nil {
		t.Fatalf("SaveInteraction: %v", err)
	}

	out, err := s.GetInteraction("ix-1")
	if err != nil {
		t.Fatalf("GetInteraction: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestGetInteractionNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetInteraction("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecentInteractionsScopedToSession(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, sess := range []string{"s1", "s1", "s2"} {
		s.SaveInteraction(Interaction{
			ID:        "ix-" + sess + "-" + string(rune('a'+i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UserID:    "u1",
			SessionID: sess,
			UserQuery: "q",
			Status:    "success",
		})
	}

	got, err := s.GetRecentInteractions("u1", "s1", 10)
	if err != nil {
		t.Fatalf("GetRecentInteractions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Newest first.
	if !got[0].CreatedAt.After(got[1].CreatedAt) {
		t.Fatalf("order: %v then %v", got[0].CreatedAt, got[1].CreatedAt)
	}
}

func TestProfileSnapshotUpsert(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveProfileSnapshot(ProfileSnapshot{
		UserID: "u1", SessionID: "s1", ProfileJSON: `{"degree":"本科"}`,
	}); err != nil {
		t.Fatalf("SaveProfileSnapshot: %v", err)
	}
	if err := s.SaveProfileSnapshot(ProfileSnapshot{
		UserID: "u1", SessionID: "s1", ProfileJSON: `{"degree":"硕士"}`,
	}); err != nil {
		t.Fatalf("SaveProfileSnapshot (update): %v", err)
	}

	snap, err := s.GetProfileSnapshot("u1", "s1")
	if err != nil {
		t.Fatalf("GetProfileSnapshot: %v", err)
	}
	if snap.ProfileJSON != `{"degree":"硕士"}` {
		t.Fatalf("profile_json = %s", snap.ProfileJSON)
	}

	_, err = s.GetProfileSnapshot("u1", "other")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
