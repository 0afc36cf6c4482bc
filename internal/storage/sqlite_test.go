package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/pocket-arcade/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	for _, s := range []int{100, 50, 200} {
		if _, err := store.SaveScore("balloon", s); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SavePlayerScore("rocket", "alice", 5); err != nil {
		t.Fatalf("SavePlayerScore() failed: %v", err)
	}

	scores, err := store.TopScores("balloon", session.HigherIsBetter, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}
	// Should be sorted descending
	if scores[0].Score != 200 || scores[1].Score != 100 || scores[2].Score != 50 {
		t.Errorf("Scores not in expected order: %v", scores)
	}

	rocket, err := store.TopScores("rocket", session.HigherIsBetter, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(rocket) != 1 || rocket[0].Player != "alice" {
		t.Errorf("rocket scores = %v", rocket)
	}
	if rocket[0].CreatedAt.IsZero() {
		t.Error("CreatedAt was not parsed")
	}
}

func TestStoreTopScoresOrder(t *testing.T) {
	store := openTestStore(t)

	// Maze stores milliseconds, lower is better.
	for _, ms := range []int{42100, 18300, 27000, 18300, 61000} {
		store.SaveScore("maze", ms)
	}

	tests := []struct {
		name  string
		order session.Order
		limit int
		want  []int
	}{
		{"ascending", session.LowerIsBetter, 3, []int{18300, 18300, 27000}},
		{"descending", session.HigherIsBetter, 2, []int{61000, 42100}},
		{"default limit", session.LowerIsBetter, 0, []int{18300, 18300, 27000, 42100, 61000}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.TopScores("maze", tc.order, tc.limit)
			if err != nil {
				t.Fatalf("TopScores() failed: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d scores, expected %d", len(got), len(tc.want))
			}
			for i, w := range tc.want {
				if got[i].Score != w {
					t.Errorf("score[%d] = %d, expected %d", i, got[i].Score, w)
				}
			}
		})
	}
}

func TestStoreBestScore(t *testing.T) {
	store := openTestStore(t)

	// No scores yet
	if _, ok, err := store.BestScore("egg", session.HigherIsBetter); err != nil || ok {
		t.Fatalf("BestScore() on empty game = %v, %v", ok, err)
	}

	store.SaveScore("egg", 100)
	store.SaveScore("egg", 300)
	store.SaveScore("egg", 200)

	tests := []struct {
		order session.Order
		want  int
	}{
		{session.HigherIsBetter, 300},
		{session.LowerIsBetter, 100},
	}
	for _, tc := range tests {
		best, ok, err := store.BestScore("egg", tc.order)
		if err != nil || !ok || best != tc.want {
			t.Errorf("BestScore(%v) = %d, %v, %v; expected %d", tc.order, best, ok, err, tc.want)
		}
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("balloon", 100)
	store.SaveScore("balloon", 200)
	store.SaveScore("snack", 300)

	// Clear only balloon scores
	if err := store.ClearScores("balloon"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	balloon, _ := store.TopScores("balloon", session.HigherIsBetter, 10)
	if len(balloon) != 0 {
		t.Errorf("Expected 0 balloon scores after clear, got %d", len(balloon))
	}

	snack, _ := store.TopScores("snack", session.HigherIsBetter, 10)
	if len(snack) != 1 {
		t.Errorf("Snack scores should not be affected by clearing balloon")
	}
}

func TestStoreAllScores(t *testing.T) {
	store := openTestStore(t)

	for i := range 20 {
		store.SaveScore("rhythm", i*10)
	}

	scores, err := store.AllScores("rhythm")
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}
	if len(scores) != 20 {
		t.Fatalf("Expected 20 scores, got %d", len(scores))
	}
	// Newest first
	if scores[0].Score != 190 {
		t.Errorf("first score = %d, expected the newest (190)", scores[0].Score)
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("maze", 20000)
	store.SaveScore("maze", 10000)
	store.SaveScore("rocket", 3)

	stats, err := store.GameStats("maze", session.LowerIsBetter)
	if err != nil {
		t.Fatalf("GameStats() failed: %v", err)
	}
	if stats.GamesCount != 2 || stats.Best != 10000 || stats.AvgScore != 15000 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed was not parsed")
	}

	empty, err := store.GameStats("zen", session.HigherIsBetter)
	if err != nil || empty.GamesCount != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("empty stats = %+v, %v", empty, err)
	}

	games, err := store.PlayedGames()
	if err != nil {
		t.Fatalf("PlayedGames() failed: %v", err)
	}
	if len(games) != 2 || games[0] != "maze" || games[1] != "rocket" {
		t.Errorf("PlayedGames() = %v", games)
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
