package query

import (
	"math"
	"sort"
	"strings"

	"github.com/abhi-jithb/storyshelf/app/catalog"
)

// Weights controls the contribution of each book field to the query score.
type Weights struct {
	Title     float64
	Publisher float64
	Tags      float64
	Authors   float64
	Synopsis  float64
}

var DefaultWeights = Weights{
	Title:     0.40,
	Publisher: 0.36,
	Tags:      0.12,
	Authors:   0.15,
	Synopsis:  0.05,
}

// maxResults caps the result list so a one-letter query against a large
// corpus stays cheap to serialize.
const maxResults = 1000

type Searcher struct {
	weights Weights
}

func NewSearcher() *Searcher {
	return &Searcher{weights: DefaultWeights}
}

// Search scores every book against query and returns positive-scoring books
// in descending score order, at most maxResults. Ties keep corpus order. A
// blank or whitespace-only query returns no results.
func (s *Searcher) Search(books []catalog.Book, query string) []SearchResult {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return []SearchResult{}
	}

	results := make([]SearchResult, 0, len(books)/4)
	for _, book := range books {
		if score := s.score(book, query); score > 0 {
			results = append(results, SearchResult{Book: book, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func (s *Searcher) score(book catalog.Book, query string) float64 {
	score := 0.0

	if strength := matchStrength(strings.ToLower(book.Title), query); strength > 0 {
		score += s.weights.Title * strength
	}

	matchingTags := 0
	for _, tag := range book.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			matchingTags++
		}
	}
	if matchingTags > 0 {
		score += s.weights.Tags * math.Min(1, float64(matchingTags)/3)
	}

	// Author names match people as often as books, so their strength is
	// discounted before weighting.
	if strength := matchStrength(strings.ToLower(book.Author), query); strength > 0 {
		score += s.weights.Authors * strength * 0.3
	}

	if book.Publisher != "" && strings.Contains(strings.ToLower(book.Publisher), query) {
		score += s.weights.Publisher * 0.5
	}

	if score > 0 {
		// Synopsis text is noisy enough that it only nudges books that
		// already matched on a stronger field.
		if strings.Contains(strings.ToLower(book.Summary), query) {
			score += s.weights.Synopsis * 0.1
		}
		if book.Rating != nil && *book.Rating > 3 {
			score *= 1 + (*book.Rating/5)*0.1
		}
	}

	return math.Min(score, 1)
}

// matchStrength grades how a field matches the query: exact 1.0, prefix 0.8,
// substring 0.5, otherwise 0.
func matchStrength(field, query string) float64 {
	switch {
	case field == query:
		return 1.0
	case strings.HasPrefix(field, query):
		return 0.8
	case strings.Contains(field, query):
		return 0.5
	}
	return 0
}
