package catalog

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed/atom"
)

// ParseError reports a malformed feed page.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser turns raw OPDS XML into catalog links and normalized books. OPDS is
// Atom, so the Atom parser is used directly: unlike the universal parser it
// keeps rel/type/title on links and scheme/label on categories.
type Parser struct {
	atomParser *atom.Parser
}

func NewParser() *Parser {
	return &Parser{
		atomParser: &atom.Parser{},
	}
}

// ParsePage parses one feed page. The language label is the title of the
// catalog the page belongs to and is stamped onto every extracted book as-is;
// canonical mapping happens at query time.
func (p *Parser) ParsePage(data []byte, language string) (*Page, error) {
	feed, err := p.atomParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	page := &Page{
		CatalogLinks: discoverLinks(feed.Links),
	}

	for _, link := range feed.Links {
		if link != nil && link.Rel == "next" {
			page.NextHref = link.Href
			break
		}
	}

	for _, entry := range feed.Entries {
		book, ok := extractBook(entry, language)
		if !ok {
			continue
		}
		page.Books = append(page.Books, book)
	}

	return page, nil
}

// discoverLinks keeps every link that points at a crawlable sub-catalog.
// Duplicate hrefs are kept; they merge by book id downstream.
func discoverLinks(links []*atom.Link) []CatalogLink {
	var catalogs []CatalogLink
	for _, link := range links {
		if link == nil || link.Href == "" || link.Title == "" {
			continue
		}
		if strings.Contains(link.Type, "navigation") ||
			strings.Contains(link.Type, "acquisition") ||
			link.Rel == "subsection" ||
			strings.Contains(link.Rel, "navigation") {
			catalogs = append(catalogs, CatalogLink{Href: link.Href, Title: link.Title})
		}
	}
	return catalogs
}
