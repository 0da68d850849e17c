package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// fakeClock advances one minute per call so ordering is deterministic.
func fakeClock(store *Store) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	store.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
}

func TestStore_RecordAndGetVisit(t *testing.T) {
	store := setupTestStore(t)

	saved, err := store.RecordVisit(&Visit{
		Title:   "Alan Turing",
		PageID:  1208,
		URL:     "https://en.wikipedia.org/wiki/Alan_Turing",
		Excerpt: "Alan Turing was an English mathematician.",
	})
	if err != nil {
		t.Fatalf("failed to record visit: %v", err)
	}
	if saved.Count != 1 {
		t.Errorf("expected count 1, got %d", saved.Count)
	}

	got, err := store.GetVisit("Alan Turing")
	if err != nil {
		t.Fatalf("failed to get visit: %v", err)
	}
	if got.PageID != 1208 {
		t.Errorf("expected page id 1208, got %d", got.PageID)
	}
	if got.URL != "https://en.wikipedia.org/wiki/Alan_Turing" {
		t.Errorf("unexpected URL %s", got.URL)
	}
	if got.FirstVisited.IsZero() || got.LastVisited.IsZero() {
		t.Error("expected visit timestamps to be set")
	}
}

func TestStore_RecordVisitTwice(t *testing.T) {
	store := setupTestStore(t)
	fakeClock(store)

	first, err := store.RecordVisit(&Visit{Title: "Alan Turing", Excerpt: "lead"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.SetTLDR("Alan Turing", "Founder of computer science."); err != nil {
		t.Fatal(err)
	}

	second, err := store.RecordVisit(&Visit{Title: "Alan Turing"})
	if err != nil {
		t.Fatal(err)
	}

	if second.Count != 2 {
		t.Errorf("expected count 2, got %d", second.Count)
	}
	if !second.FirstVisited.Equal(first.FirstVisited) {
		t.Errorf("first visit changed: %v != %v", second.FirstVisited, first.FirstVisited)
	}
	if !second.LastVisited.After(first.LastVisited) {
		t.Error("expected last visit to move forward")
	}
	if second.TLDR != "Founder of computer science." {
		t.Errorf("tldr lost on revisit: %q", second.TLDR)
	}
	if second.Excerpt != "lead" {
		t.Errorf("excerpt lost on revisit: %q", second.Excerpt)
	}
}

func TestStore_RecordVisitWithoutTitle(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.RecordVisit(&Visit{Title: "  "}); err == nil {
		t.Error("expected error for visit without title")
	}
}

func TestStore_GetVisit_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetVisit("non-existent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SetTLDR_BeforeVisit(t *testing.T) {
	store := setupTestStore(t)
	fakeClock(store)

	pending, err := store.SetTLDR("Alan Turing", "Founder of computer science.")
	if err != nil {
		t.Fatalf("SetTLDR before the visit: %v", err)
	}
	if pending.Count != 0 {
		t.Errorf("expected a pending visit with count 0, got %d", pending.Count)
	}
	if visits, _ := store.RecentVisits(0); len(visits) != 0 {
		t.Errorf("pending visit listed in history: %+v", visits)
	}

	saved, err := store.RecordVisit(&Visit{Title: "Alan Turing", PageID: 1208, Excerpt: "English mathematician"})
	if err != nil {
		t.Fatal(err)
	}
	if saved.Count != 1 {
		t.Errorf("expected count 1, got %d", saved.Count)
	}
	if saved.TLDR != "Founder of computer science." {
		t.Errorf("tl;dr lost when the visit landed second: %q", saved.TLDR)
	}
	if saved.PageID != 1208 || saved.Excerpt != "English mathematician" {
		t.Errorf("visit fields not filled in: %+v", saved)
	}
	if saved.FirstVisited.IsZero() {
		t.Error("expected first visit time to be set")
	}

	if _, err := store.SetTLDR("", "x"); err == nil {
		t.Error("expected error for empty title")
	}
}

func TestStore_RecentVisits(t *testing.T) {
	store := setupTestStore(t)
	fakeClock(store)

	for _, title := range []string{"A", "B", "C", "A"} {
		if _, err := store.RecordVisit(&Visit{Title: title}); err != nil {
			t.Fatal(err)
		}
	}

	visits, err := store.RecentVisits(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(visits) != 3 {
		t.Fatalf("expected 3 visits, got %d", len(visits))
	}
	want := []string{"A", "C", "B"}
	for i, v := range visits {
		if v.Title != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], v.Title)
		}
	}

	limited, err := store.RecentVisits(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 visits with limit, got %d", len(limited))
	}
}

func TestStore_DeleteVisit(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.RecordVisit(&Visit{Title: "Gone"}); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteVisit("Gone"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetVisit("Gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_Queries(t *testing.T) {
	store := setupTestStore(t)
	fakeClock(store)

	for _, q := range []string{"turing", "enigma", " Turing ", ""} {
		if err := store.RecordQuery(q); err != nil {
			t.Fatal(err)
		}
	}

	queries, err := store.RecentQueries(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(queries))
	}
	if queries[0].Text != "Turing" || queries[0].Count != 2 {
		t.Errorf("expected latest query Turing x2, got %s x%d", queries[0].Text, queries[0].Count)
	}
	if queries[1].Text != "enigma" {
		t.Errorf("expected enigma second, got %s", queries[1].Text)
	}
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")

	store, err := NewStore(path, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.RecordVisit(&Visit{Title: "Persisted"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := NewStore(path, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if _, err := reopened.GetVisit("Persisted"); err != nil {
		t.Errorf("visit not persisted: %v", err)
	}
}
