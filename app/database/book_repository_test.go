package database

import (
	"path/filepath"
	"testing"

	"github.com/abhi-jithb/storyshelf/app/catalog"
)

func newTestRepo(t *testing.T) BookRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewBookRepository(db)
}

func TestBookRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	rating := 4.0
	books := []catalog.Book{
		{
			ID:            "b1",
			Title:         "The Brave Fox",
			Author:        "Asha Rao",
			Summary:       "A fox learns to be brave.",
			Language:      "English",
			Level:         "Level 2",
			Categories:    []string{"Animals"},
			Tags:          []string{"Animals"},
			Publisher:     "Pratham Books",
			PublishedDate: "2023-05-10",
			Rating:        &rating,
		},
		{
			ID:       "b2",
			Title:    "Sans Titre",
			Author:   "Unknown",
			Language: "French",
		},
	}

	if err := repo.SaveBooks(books); err != nil {
		t.Fatalf("Expected no error on save, got: %v", err)
	}

	got, err := repo.GetAll()
	if err != nil {
		t.Fatalf("Expected no error on load, got: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 books, got %d", len(got))
	}

	first := got[0]
	if first.ID != "b1" || first.Title != "The Brave Fox" {
		t.Errorf("Unexpected first book: %+v", first)
	}
	if len(first.Categories) != 1 || first.Categories[0] != "Animals" {
		t.Errorf("Expected categories [Animals], got %v", first.Categories)
	}
	if first.Rating == nil || *first.Rating != 4.0 {
		t.Errorf("Expected rating 4.0, got %v", first.Rating)
	}
	if got[1].Rating != nil {
		t.Errorf("Expected absent rating, got %v", *got[1].Rating)
	}
}

func TestBookRepositoryUpsertByID(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.SaveBooks([]catalog.Book{{ID: "b1", Title: "Old Title", Author: "A", Language: "English"}}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := repo.SaveBooks([]catalog.Book{{ID: "b1", Title: "New Title", Author: "A", Language: "English"}}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	got, err := repo.GetAll()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 book after upsert, got %d", len(got))
	}
	if got[0].Title != "New Title" {
		t.Errorf("Expected updated title 'New Title', got '%s'", got[0].Title)
	}
}

func TestBookRepositoryClear(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.SaveBooks([]catalog.Book{{ID: "b1", Title: "T", Author: "A", Language: "English"}}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := repo.Clear(); err != nil {
		t.Fatalf("Expected no error on clear, got: %v", err)
	}

	count, err := repo.GetBookCount()
	if err != nil {
		t.Fatalf("Expected no error on count, got: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty store after clear, got %d", count)
	}
}

func TestBookRepositoryEmptyStore(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetAll()
	if err != nil {
		t.Fatalf("Expected no error on empty store, got: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no books, got %d", len(got))
	}
}
