package database

import (
	"github.com/abhi-jithb/storyshelf/app/catalog"
)

// BookRepository is the durable mirror of the in-memory corpus, keyed by book
// id. It seeds an instant snapshot at startup and receives the corpus after
// each completed crawl. Callers treat every failure as non-fatal.
type BookRepository interface {
	GetAll() ([]catalog.Book, error)
	SaveBooks(books []catalog.Book) error
	Clear() error
	GetBookCount() (int, error)
}
