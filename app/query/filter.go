package query

import (
	"sort"
	"sync"
	"time"

	"github.com/abhi-jithb/storyshelf/app/catalog"
)

// Engine applies filter states to book corpora. Level normalization results
// are cached per raw label because the same handful of labels repeats across
// thousands of books.
type Engine struct {
	taxonomy *Taxonomy

	mu         sync.RWMutex
	levelCache map[string]string
}

func NewEngine(taxonomy *Taxonomy) *Engine {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	return &Engine{
		taxonomy:   taxonomy,
		levelCache: make(map[string]string),
	}
}

// FilterBooks returns the books matching every active dimension of state,
// sorted per its date filter. Dimensions combine with AND, values within a
// dimension with OR. An empty state returns the corpus unchanged in order.
func (e *Engine) FilterBooks(books []catalog.Book, state State) []catalog.Book {
	hasLanguages := !state.Languages.Empty()
	hasLevels := !state.Levels.Empty()
	hasCategories := !state.Categories.Empty()
	hasDateWindow := state.DateFilter == DateLast30Days || state.DateFilter == DateLastYear

	filtered := make([]catalog.Book, 0, len(books))
	for _, book := range books {
		if hasLanguages && !e.matchLanguage(book, state.Languages) {
			continue
		}
		if hasLevels && !e.matchLevel(book, state.Levels) {
			continue
		}
		if hasCategories && !e.matchCategories(book, state.Categories) {
			continue
		}
		if hasDateWindow && !matchDateWindow(book, state.DateFilter) {
			continue
		}
		filtered = append(filtered, book)
	}

	sortBooks(filtered, state.DateFilter)
	return filtered
}

func (e *Engine) matchLanguage(book catalog.Book, selected Selection) bool {
	if selected.Has(book.Language) {
		return true
	}
	if canonical := e.taxonomy.CanonicalLanguage(book.Language); canonical != "" {
		return selected.Has(canonical)
	}
	return false
}

// matchLevel excludes books whose level label resolves to no canonical rung,
// even when the raw label happens to be selected elsewhere.
func (e *Engine) matchLevel(book catalog.Book, selected Selection) bool {
	if book.Level == "" {
		return false
	}
	if selected.Has(book.Level) {
		return true
	}
	if canonical := e.normalizeLevel(book.Level); canonical != "" {
		return selected.Has(canonical)
	}
	return false
}

func (e *Engine) matchCategories(book catalog.Book, selected Selection) bool {
	for _, category := range book.Categories {
		if selected.Has(category) {
			return true
		}
		if canonical := e.taxonomy.CanonicalCategory(category); canonical != "" && selected.Has(canonical) {
			return true
		}
	}
	return false
}

// matchDateWindow treats dateless books as passing every window. Dates that
// fail to parse never match.
func matchDateWindow(book catalog.Book, filter DateFilter) bool {
	if book.PublishedDate == "" {
		return true
	}
	published, err := time.Parse("2006-01-02", book.PublishedDate)
	if err != nil {
		return false
	}

	var cutoff time.Time
	switch filter {
	case DateLast30Days:
		cutoff = time.Now().AddDate(0, 0, -30)
	case DateLastYear:
		cutoff = time.Now().AddDate(-1, 0, 0)
	default:
		return true
	}
	return !published.Before(cutoff)
}

// sortBooks orders by the ISO date string lexicographically, which matches
// chronological order. Dateless books compare as the empty string. The sort
// is stable so equal keys keep corpus order.
func sortBooks(books []catalog.Book, filter DateFilter) {
	switch filter {
	case DateNewest:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].PublishedDate > books[j].PublishedDate
		})
	case DateOldest:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].PublishedDate < books[j].PublishedDate
		})
	}
}

func (e *Engine) normalizeLevel(raw string) string {
	e.mu.RLock()
	canonical, ok := e.levelCache[raw]
	e.mu.RUnlock()
	if ok {
		return canonical
	}

	canonical = e.taxonomy.CanonicalLevel(raw)
	e.mu.Lock()
	e.levelCache[raw] = canonical
	e.mu.Unlock()
	return canonical
}

// Options computes the facet values present in books in a single pass.
// Languages and categories fall back to the raw label when unmapped;
// categories surface only canonical facet names, levels only ladder rungs.
func (e *Engine) Options(books []catalog.Book) Options {
	languages := make(map[string]struct{})
	levels := make(map[string]struct{})
	categories := make(map[string]struct{})

	for _, book := range books {
		if book.Language != "" {
			if canonical := e.taxonomy.CanonicalLanguage(book.Language); canonical != "" {
				languages[canonical] = struct{}{}
			} else {
				languages[book.Language] = struct{}{}
			}
		}
		if book.Level != "" {
			if canonical := e.normalizeLevel(book.Level); canonical != "" {
				levels[canonical] = struct{}{}
			}
		}
		for _, category := range book.Categories {
			if canonical := e.taxonomy.CanonicalCategory(category); canonical != "" {
				categories[canonical] = struct{}{}
			} else if category != "" {
				categories[category] = struct{}{}
			}
		}
	}

	options := Options{
		Languages:  make([]string, 0, len(languages)),
		Levels:     make([]string, 0, len(levels)),
		Categories: make([]string, 0, len(categories)),
	}
	for lang := range languages {
		options.Languages = append(options.Languages, lang)
	}
	sort.Strings(options.Languages)

	for _, rung := range LevelOrder {
		if _, ok := levels[rung]; ok {
			options.Levels = append(options.Levels, rung)
		}
	}
	for _, canonical := range e.taxonomy.CategoryOrder() {
		if _, ok := categories[canonical]; ok {
			options.Categories = append(options.Categories, canonical)
		}
	}

	return options
}
