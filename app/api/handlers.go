package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/abhi-jithb/storyshelf/app/catalog"
	"github.com/abhi-jithb/storyshelf/app/database"
	"github.com/abhi-jithb/storyshelf/app/query"
	"github.com/gin-gonic/gin"
)

func NewHandler(p PipelineInterface, engine *query.Engine, searcher *query.Searcher,
	bookRepo database.BookRepository, version string) *Handler {
	return &Handler{
		pipeline: p,
		engine:   engine,
		searcher: searcher,
		bookRepo: bookRepo,
		version:  version,
	}
}

// GetBooks returns the current corpus, narrowed by any filter and search
// parameters. Filters apply before search so ranking only sees books the
// filters admit.
func (h *Handler) GetBooks(c *gin.Context) {
	state := query.NewState()
	for _, language := range c.QueryArray("language") {
		state.ToggleLanguage(language)
	}
	for _, level := range c.QueryArray("level") {
		state.ToggleLevel(level)
	}
	for _, category := range c.QueryArray("category") {
		state.ToggleCategory(category)
	}

	if raw := c.Query("date"); raw != "" {
		filter := query.DateFilter(raw)
		if !filter.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date filter: " + raw})
			return
		}
		state.SetDateFilter(filter)
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit: " + raw})
			return
		}
		limit = parsed
	}

	books := h.engine.FilterBooks(h.pipeline.Snapshot(), state)

	if q := c.Query("q"); q != "" {
		results := h.searcher.Search(books, q)
		books = make([]catalog.Book, 0, len(results))
		for _, result := range results {
			books = append(books, result.Book)
		}
	}

	if limit > 0 && len(books) > limit {
		books = books[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"books":       books,
		"total":       len(books),
		"is_complete": h.pipeline.IsComplete(),
	})
}

func (h *Handler) GetBook(c *gin.Context) {
	id := c.Param("id")

	for _, book := range h.pipeline.Snapshot() {
		if book.ID == id {
			c.JSON(http.StatusOK, book)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Book not found: " + id})
}

func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameter: q"})
		return
	}

	results := h.searcher.Search(h.pipeline.Snapshot(), q)

	c.JSON(http.StatusOK, gin.H{
		"results":     results,
		"total":       len(results),
		"is_complete": h.pipeline.IsComplete(),
	})
}

func (h *Handler) GetFilterOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Options(h.pipeline.Snapshot()))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"books":     h.pipeline.Size(),
		"complete":  h.pipeline.IsComplete(),
	}

	if err := h.pipeline.Err(); err != nil {
		health["last_error"] = err.Error()
	}

	if stored, err := h.bookRepo.GetBookCount(); err == nil {
		health["stored_books"] = stored
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	snapshot := h.pipeline.Snapshot()
	options := h.engine.Options(snapshot)

	languageCounts := make(map[string]int)
	for _, book := range snapshot {
		if book.Language != "" {
			languageCounts[book.Language]++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"books":      len(snapshot),
		"complete":   h.pipeline.IsComplete(),
		"languages":  languageCounts,
		"levels":     options.Levels,
		"categories": options.Categories,
	})
}

// Refresh restarts the crawl. The crawl outlives this request, so it runs on
// a background context rather than the request's.
func (h *Handler) Refresh(c *gin.Context) {
	h.pipeline.Refresh(context.Background())

	slog.Info("Refresh requested", "client", c.ClientIP())

	c.JSON(http.StatusAccepted, gin.H{"status": "refresh started"})
}
