package query

import (
	"strings"

	"github.com/abhi-jithb/storyshelf/app/catalog"
)

type DateFilter string

const (
	DateAll        DateFilter = "all"
	DateNewest     DateFilter = "newest"
	DateOldest     DateFilter = "oldest"
	DateLast30Days DateFilter = "last30days"
	DateLastYear   DateFilter = "lastyear"
)

func (d DateFilter) Valid() bool {
	switch d {
	case DateAll, DateNewest, DateOldest, DateLast30Days, DateLastYear:
		return true
	}
	return false
}

// Selection is one filter dimension's chosen values. An empty selection means
// no restriction on that dimension.
type Selection map[string]struct{}

func NewSelection(values ...string) Selection {
	s := make(Selection, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s Selection) Has(value string) bool {
	_, ok := s[value]
	return ok
}

func (s Selection) Toggle(value string) {
	if s.Has(value) {
		delete(s, value)
	} else {
		s[value] = struct{}{}
	}
}

func (s Selection) Empty() bool {
	return len(s) == 0
}

// State is a snapshot of chosen filter dimensions. It is built with NewState
// and mutated only through discrete toggles; the engine never modifies it.
type State struct {
	Languages   Selection
	Levels      Selection
	Categories  Selection
	DateFilter  DateFilter
	SearchQuery string
}

func NewState() State {
	return State{
		Languages:  NewSelection(),
		Levels:     NewSelection(),
		Categories: NewSelection(),
		DateFilter: DateAll,
	}
}

func (s *State) ToggleLanguage(language string) { s.Languages.Toggle(language) }
func (s *State) ToggleLevel(level string)       { s.Levels.Toggle(level) }
func (s *State) ToggleCategory(category string) { s.Categories.Toggle(category) }

func (s *State) SetDateFilter(filter DateFilter) { s.DateFilter = filter }
func (s *State) SetSearchQuery(query string)     { s.SearchQuery = query }

func (s *State) HasActiveFilters() bool {
	return !s.Languages.Empty() ||
		!s.Levels.Empty() ||
		!s.Categories.Empty() ||
		s.DateFilter != DateAll ||
		strings.TrimSpace(s.SearchQuery) != ""
}

// Options lists the canonical taxonomy values present in the current corpus,
// recomputed per call and consumed by UI collaborators.
type Options struct {
	Languages  []string `json:"languages"`
	Levels     []string `json:"levels"`
	Categories []string `json:"categories"`
}

// SearchResult pairs a book with its query score, produced fresh per query.
type SearchResult struct {
	Book  catalog.Book `json:"book"`
	Score float64      `json:"score"`
}
