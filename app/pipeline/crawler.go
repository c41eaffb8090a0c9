package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/abhi-jithb/storyshelf/app/catalog"
	"github.com/abhi-jithb/storyshelf/app/fetch"
	"github.com/abhi-jithb/storyshelf/app/pool"
)

const DefaultMaxPages = 20

// Crawler walks one catalog's pagination chain. Every page fetch goes through
// the shared runner, so the concurrency bound holds across the whole crawl
// rather than per catalog.
type Crawler struct {
	client   *fetch.Client
	parser   *catalog.Parser
	runner   *pool.Runner
	maxPages int
}

func NewCrawler(client *fetch.Client, parser *catalog.Parser, runner *pool.Runner, maxPages int) *Crawler {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Crawler{
		client:   client,
		parser:   parser,
		runner:   runner,
		maxPages: maxPages,
	}
}

// Walk fetches pages in pagination order until the chain ends or the page cap
// is hit (feeds with pagination cycles must still terminate). Each page's
// books are passed to emit as they arrive. A fetch or parse failure aborts
// only this catalog's walk; sibling catalogs are unaffected.
func (c *Crawler) Walk(ctx context.Context, link catalog.CatalogLink, emit func([]catalog.Book)) {
	currentURL := link.Href

	for pageCount := 0; currentURL != "" && pageCount < c.maxPages; pageCount++ {
		var page *catalog.Page

		err := c.runner.Do(ctx, func() error {
			data, err := c.client.Get(ctx, currentURL)
			if err != nil {
				return err
			}
			page, err = c.parser.ParsePage(data, link.Title)
			return err
		})
		if err != nil {
			slog.Warn("Catalog walk aborted",
				"catalog", link.Title,
				"page", pageCount,
				"url", currentURL,
				"error", err)
			return
		}

		if len(page.Books) > 0 {
			emit(page.Books)
		}

		if page.NextHref == "" {
			return
		}

		next, err := resolveNextURL(link.Href, page.NextHref)
		if err != nil {
			slog.Warn("Invalid next link, stopping catalog walk",
				"catalog", link.Title,
				"next", page.NextHref,
				"error", err)
			return
		}
		currentURL = next
	}

	slog.Debug("Catalog walk hit page limit", "catalog", link.Title, "max_pages", c.maxPages)
}

// resolveNextURL resolves a relative next href against the origin of the
// catalog's initial href.
func resolveNextURL(initialHref, next string) (string, error) {
	if strings.HasPrefix(next, "http") {
		return next, nil
	}

	base, err := url.Parse(initialHref)
	if err != nil {
		return "", err
	}

	ref, err := url.Parse(next)
	if err != nil {
		return "", err
	}

	origin := &url.URL{Scheme: base.Scheme, Host: base.Host}
	return origin.ResolveReference(ref).String(), nil
}
