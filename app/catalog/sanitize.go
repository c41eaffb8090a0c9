package catalog

import "strings"

// Sanitize applies the field caps and defaults unconditionally, regardless of
// where the record came from, so the corpus has a single uniform shape.
func Sanitize(book Book) Book {
	book.Title = truncate(firstNonEmpty(book.Title, "Untitled"), TitleMaxLen)
	book.Author = truncate(firstNonEmpty(book.Author, "Unknown"), AuthorMaxLen)
	book.Summary = truncate(book.Summary, SummaryMaxLen)
	book.Cover = truncate(book.Cover, URLMaxLen)
	book.Thumbnail = truncate(book.Thumbnail, URLMaxLen)
	book.DownloadLink = truncate(book.DownloadLink, URLMaxLen)
	book.Language = truncate(firstNonEmpty(book.Language, "Unknown"), LanguageMaxLen)
	book.Level = truncate(book.Level, LevelMaxLen)
	book.Publisher = truncate(book.Publisher, PublisherMaxLen)
	book.PublishedDate = truncate(book.PublishedDate, DateLen)
	book.Categories = sanitizeTerms(book.Categories)
	book.Tags = sanitizeTerms(book.Tags)

	if book.Rating != nil {
		clamped := *book.Rating
		if clamped < 0 {
			clamped = 0
		}
		if clamped > 5 {
			clamped = 5
		}
		book.Rating = &clamped
	}

	return book
}

func sanitizeTerms(terms []string) []string {
	sanitized := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(truncate(term, TermMaxLen))
		if term == "" {
			continue
		}
		sanitized = append(sanitized, term)
	}
	return sanitized
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func firstNonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
