package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/abhi-jithb/storyshelf/app/catalog"
)

var _ BookRepository = (*bookRepository)(nil)

type bookRepository struct {
	db *DB
}

func NewBookRepository(db *DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) GetAll() ([]catalog.Book, error) {
	rows, err := r.db.Query(`
		SELECT id, COALESCE(title, ''), COALESCE(author, ''), COALESCE(summary, ''),
		       COALESCE(cover, ''), COALESCE(thumbnail, ''), COALESCE(download_link, ''),
		       COALESCE(language, ''), COALESCE(level, ''),
		       COALESCE(categories, '[]'), COALESCE(tags, '[]'),
		       COALESCE(publisher, ''), COALESCE(published_date, ''), rating
		FROM books
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get books: %w", err)
	}
	defer rows.Close()

	var books []catalog.Book
	for rows.Next() {
		var book catalog.Book
		var categoriesJSON, tagsJSON string
		var rating sql.NullFloat64

		err := rows.Scan(
			&book.ID, &book.Title, &book.Author, &book.Summary,
			&book.Cover, &book.Thumbnail, &book.DownloadLink,
			&book.Language, &book.Level,
			&categoriesJSON, &tagsJSON,
			&book.Publisher, &book.PublishedDate, &rating,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}

		if err := json.Unmarshal([]byte(categoriesJSON), &book.Categories); err != nil {
			book.Categories = nil
		}
		if err := json.Unmarshal([]byte(tagsJSON), &book.Tags); err != nil {
			book.Tags = nil
		}
		if rating.Valid {
			value := rating.Float64
			book.Rating = &value
		}

		// Stored records go through the same caps as network records so the
		// corpus has one uniform shape regardless of origin
		books = append(books, catalog.Sanitize(book))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}

func (r *bookRepository) SaveBooks(books []catalog.Book) error {
	if len(books) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO books (
			id, title, author, summary, cover, thumbnail, download_link,
			language, level, categories, tags, publisher, published_date, rating
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			summary = excluded.summary,
			cover = excluded.cover,
			thumbnail = excluded.thumbnail,
			download_link = excluded.download_link,
			language = excluded.language,
			level = excluded.level,
			categories = excluded.categories,
			tags = excluded.tags,
			publisher = excluded.publisher,
			published_date = excluded.published_date,
			rating = excluded.rating,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, book := range books {
		categoriesJSON, err := json.Marshal(book.Categories)
		if err != nil {
			return fmt.Errorf("failed to encode categories: %w", err)
		}
		tagsJSON, err := json.Marshal(book.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags: %w", err)
		}

		var rating sql.NullFloat64
		if book.Rating != nil {
			rating = sql.NullFloat64{Float64: *book.Rating, Valid: true}
		}

		_, err = stmt.Exec(
			book.ID, book.Title, book.Author, book.Summary,
			book.Cover, book.Thumbnail, book.DownloadLink,
			book.Language, book.Level,
			string(categoriesJSON), string(tagsJSON),
			book.Publisher, book.PublishedDate, rating,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert book %s: %w", book.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit books: %w", err)
	}

	return nil
}

func (r *bookRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM books`); err != nil {
		return fmt.Errorf("failed to clear books: %w", err)
	}
	return nil
}

func (r *bookRepository) GetBookCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}
