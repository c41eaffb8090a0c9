package catalog

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"
)

const coverRel = "http://opds-spec.org/image"
const thumbnailRel = "http://opds-spec.org/image/thumbnail"

var numericLevelRe = regexp.MustCompile(`^\d+$`)

// extractBook maps one feed entry into a sanitized Book. Entries without a
// title are skipped.
func extractBook(entry *atom.Entry, language string) (Book, bool) {
	if entry == nil || strings.TrimSpace(entry.Title) == "" {
		return Book{}, false
	}

	book := Book{
		ID:            entry.ID,
		Title:         entry.Title,
		Author:        extractAuthor(entry.Authors),
		Summary:       extractSummary(entry),
		Cover:         findLinkHref(entry.Links, func(rel string) bool { return rel == coverRel }),
		Thumbnail:     findLinkHref(entry.Links, func(rel string) bool { return rel == thumbnailRel }),
		DownloadLink:  findLinkHref(entry.Links, func(rel string) bool { return strings.Contains(rel, "acquisition") }),
		Language:      language,
		Level:         extractLevel(entry),
		Categories:    extractCategories(entry.Categories),
		Publisher:     extensionValue(entry.Extensions, "dcterms", "publisher", "dc", "publisher"),
		PublishedDate: extractPublishedDate(entry),
		Rating:        extractRating(entry),
	}

	// Tags currently derive from the same category terms
	book.Tags = append([]string(nil), book.Categories...)

	if book.ID == "" {
		book.ID = generateBookID()
	}

	return Sanitize(book), true
}

func generateBookID() string {
	return fmt.Sprintf("book-%d-%d", time.Now().UnixNano(), rand.Intn(10000))
}

func extractAuthor(authors []*atom.Person) string {
	var names []string
	for _, author := range authors {
		if author == nil {
			continue
		}
		name := strings.TrimSpace(author.Name)
		if name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "Unknown"
	}
	return strings.Join(names, ", ")
}

func extractSummary(entry *atom.Entry) string {
	if entry.Summary != "" {
		return entry.Summary
	}
	if entry.Content != nil {
		return entry.Content.Value
	}
	return ""
}

func findLinkHref(links []*atom.Link, match func(rel string) bool) string {
	for _, link := range links {
		if link != nil && match(link.Rel) {
			return link.Href
		}
	}
	return ""
}

// extractPublishedDate derives a YYYY-MM-DD date from published, updated or
// the Dublin Core issued field, whichever parses first.
func extractPublishedDate(entry *atom.Entry) string {
	candidates := []string{
		entry.Published,
		entry.Updated,
		extensionValue(entry.Extensions, "dcterms", "issued", "dc", "issued"),
	}

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		parsed, err := dateparse.ParseAny(candidate)
		if err != nil {
			continue
		}
		return parsed.UTC().Format("2006-01-02")
	}

	return ""
}

// extractLevel checks an educational-alignment extension first, then any
// category whose scheme, label or term mentions "level". A purely numeric
// term is rewritten as "Level {n}".
func extractLevel(entry *atom.Entry) string {
	for _, prefix := range []string{"lrmi", "schema"} {
		elements, ok := entry.Extensions[prefix]["educationalAlignment"]
		if !ok || len(elements) == 0 {
			continue
		}
		term := elements[0].Attrs["targetName"]
		if term == "" {
			term = elements[0].Attrs["term"]
		}
		if term != "" {
			return expandNumericLevel(term)
		}
	}

	for _, category := range entry.Categories {
		if category == nil {
			continue
		}
		if containsFold(category.Scheme, "level") ||
			containsFold(category.Label, "level") ||
			containsFold(category.Term, "level") {
			term := category.Label
			if term == "" {
				term = category.Term
			}
			if term != "" {
				return expandNumericLevel(term)
			}
		}
	}

	return ""
}

func expandNumericLevel(term string) string {
	if numericLevelRe.MatchString(term) {
		return "Level " + term
	}
	return term
}

// extractCategories keeps every category term whose scheme does not mention
// "level"; level-bearing categories feed extractLevel instead.
func extractCategories(categories []*atom.Category) []string {
	terms := make([]string, 0, len(categories))
	for _, category := range categories {
		if category == nil || category.Term == "" {
			continue
		}
		if containsFold(category.Scheme, "level") {
			continue
		}
		if strings.TrimSpace(category.Term) == "" {
			continue
		}
		terms = append(terms, category.Term)
	}
	return terms
}

func extractRating(entry *atom.Entry) *float64 {
	raw := extensionValue(entry.Extensions, "opds", "rating", "schema", "rating")
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil
	}
	return &value
}

// extensionValue returns the first non-empty value among the given
// prefix/name pairs.
func extensionValue(extensions ext.Extensions, pairs ...string) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		elements, ok := extensions[pairs[i]][pairs[i+1]]
		if !ok || len(elements) == 0 {
			continue
		}
		if value := strings.TrimSpace(elements[0].Value); value != "" {
			return value
		}
	}
	return ""
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
