package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/abhi-jithb/storyshelf/app/catalog"
	"github.com/abhi-jithb/storyshelf/app/query"
)

type fakePipeline struct {
	books    []catalog.Book
	complete bool
	err      error
	refreshn int32
}

func (f *fakePipeline) Snapshot() []catalog.Book  { return f.books }
func (f *fakePipeline) Size() int                 { return len(f.books) }
func (f *fakePipeline) IsComplete() bool          { return f.complete }
func (f *fakePipeline) Err() error                { return f.err }
func (f *fakePipeline) Refresh(_ context.Context) { atomic.AddInt32(&f.refreshn, 1) }

type fakeRepo struct {
	count int
}

func (f *fakeRepo) GetAll() ([]catalog.Book, error)     { return nil, nil }
func (f *fakeRepo) SaveBooks([]catalog.Book) error      { return nil }
func (f *fakeRepo) Clear() error                        { return nil }
func (f *fakeRepo) GetBookCount() (int, error)          { return f.count, nil }

func testServer(p *fakePipeline, apiAccessKey string) http.Handler {
	engine := query.NewEngine(nil)
	handler := NewHandler(p, engine, query.NewSearcher(), &fakeRepo{count: len(p.books)}, "test")
	return NewServer(handler, apiAccessKey)
}

func testBooks() []catalog.Book {
	return []catalog.Book{
		{ID: "b1", Title: "The Brave Fox", Language: "English", Level: "Level 2", Categories: []string{"Animals"}},
		{ID: "b2", Title: "La Graine", Language: "French", Level: "Level 1", Categories: []string{"Environment"}},
		{ID: "b3", Title: "Fox Facts", Language: "English", Level: "Level 3", Categories: []string{"Non-fiction"}},
	}
}

func doRequest(t *testing.T, server http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return body
}

func TestGetBooksReturnsCorpus(t *testing.T) {
	server := testServer(&fakePipeline{books: testBooks(), complete: true}, "")

	w := doRequest(t, server, "GET", "/books", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["total"].(float64) != 3 {
		t.Errorf("Expected 3 books, got %v", body["total"])
	}
	if body["is_complete"] != true {
		t.Errorf("Expected is_complete true, got %v", body["is_complete"])
	}
}

func TestGetBooksAppliesFilters(t *testing.T) {
	server := testServer(&fakePipeline{books: testBooks()}, "")

	w := doRequest(t, server, "GET", "/books?language=English&level=Level+2", nil)
	body := decodeBody(t, w)
	if body["total"].(float64) != 1 {
		t.Errorf("Expected 1 book for English AND Level 2, got %v", body["total"])
	}
}

func TestGetBooksSearchAfterFilter(t *testing.T) {
	server := testServer(&fakePipeline{books: testBooks()}, "")

	w := doRequest(t, server, "GET", "/books?language=English&q=fox", nil)
	body := decodeBody(t, w)
	if body["total"].(float64) != 2 {
		t.Errorf("Expected 2 English fox books, got %v", body["total"])
	}
}

func TestGetBooksRejectsInvalidParams(t *testing.T) {
	server := testServer(&fakePipeline{books: testBooks()}, "")

	if w := doRequest(t, server, "GET", "/books?date=sometime", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid date filter, got %d", w.Code)
	}
	if w := doRequest(t, server, "GET", "/books?limit=-1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative limit, got %d", w.Code)
	}
}

func TestGetBooksLimit(t *testing.T) {
	server := testServer(&fakePipeline{books: testBooks()}, "")

	w := doRequest(t, server, "GET", "/books?limit=2", nil)
	body := decodeBody(t, w)
	if body["total"].(float64) != 2 {
		t.Errorf("Expected limit to truncate to 2, got %v", body["total"])
	}
}

func TestGetBookByID(t *testing.T) {
	server := testServer(&fakePipeline{books: testBooks()}, "")

	w := doRequest(t, server, "GET", "/books/b2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["title"] != "La Graine" {
		t.Errorf("Expected La Graine, got %v", body["title"])
	}

	if w := doRequest(t, server, "GET", "/books/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown book, got %d", w.Code)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	server := testServer(&fakePipeline{books: testBooks()}, "")

	if w := doRequest(t, server, "GET", "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without q, got %d", w.Code)
	}

	w := doRequest(t, server, "GET", "/search?q=fox", nil)
	body := decodeBody(t, w)
	if body["total"].(float64) != 2 {
		t.Errorf("Expected 2 results for fox, got %v", body["total"])
	}
}

func TestGetFilterOptions(t *testing.T) {
	server := testServer(&fakePipeline{books: testBooks()}, "")

	w := doRequest(t, server, "GET", "/filters", nil)
	body := decodeBody(t, w)
	languages := body["languages"].([]interface{})
	if len(languages) != 2 {
		t.Errorf("Expected 2 languages, got %v", languages)
	}
}

func TestGetHealthIncludesLastError(t *testing.T) {
	p := &fakePipeline{books: testBooks(), err: context.DeadlineExceeded}
	server := testServer(p, "")

	w := doRequest(t, server, "GET", "/health", nil)
	body := decodeBody(t, w)
	if body["books"].(float64) != 3 {
		t.Errorf("Expected 3 books in health, got %v", body["books"])
	}
	if body["last_error"] == nil {
		t.Error("Expected last_error to be reported")
	}
}

func TestRefreshRequiresAPIKey(t *testing.T) {
	p := &fakePipeline{}
	server := testServer(p, "secret")

	if w := doRequest(t, server, "POST", "/api/refresh", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", w.Code)
	}
	if w := doRequest(t, server, "POST", "/api/refresh", map[string]string{"X-API-Key": "wrong"}); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong key, got %d", w.Code)
	}

	w := doRequest(t, server, "POST", "/api/refresh", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusAccepted {
		t.Errorf("Expected 202 with valid key, got %d", w.Code)
	}
	if atomic.LoadInt32(&p.refreshn) != 1 {
		t.Errorf("Expected 1 refresh call, got %d", p.refreshn)
	}
}

func TestRefreshAcceptsBearerToken(t *testing.T) {
	p := &fakePipeline{}
	server := testServer(p, "secret")

	w := doRequest(t, server, "POST", "/api/refresh", map[string]string{"Authorization": "Bearer secret"})
	if w.Code != http.StatusAccepted {
		t.Errorf("Expected 202 with bearer token, got %d", w.Code)
	}
}

func TestRefreshDisabledWithoutKey(t *testing.T) {
	server := testServer(&fakePipeline{}, "")

	if w := doRequest(t, server, "POST", "/api/refresh", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 when API is disabled, got %d", w.Code)
	}
}
