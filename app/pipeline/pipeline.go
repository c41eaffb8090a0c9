package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abhi-jithb/storyshelf/app/catalog"
	"github.com/abhi-jithb/storyshelf/app/database"
	"github.com/abhi-jithb/storyshelf/app/fetch"
	"github.com/abhi-jithb/storyshelf/app/pool"
)

type Config struct {
	RootURL         string
	PrimaryLanguage string
	WorkerCount     int
	MaxRetries      int
	RetryDelay      time.Duration
	FetchTimeout    time.Duration
	PageTimeout     time.Duration
	MaxPages        int
	BatchInterval   time.Duration
	UserAgent       string
}

// Pipeline drives one ingestion run: seed from the durable store, discover
// catalogs in the root feed, walk them concurrently, merge into the
// aggregator, persist on completion. Constructed once in main and injected
// into consumers; there is no package-level instance.
type Pipeline struct {
	config     Config
	rootClient *fetch.Client
	parser     *catalog.Parser
	crawler    *Crawler
	repo       database.BookRepository
	aggregator *Aggregator

	mu       sync.Mutex
	seeded   bool
	fetching bool
}

func New(config Config, repo database.BookRepository) *Pipeline {
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 10 * time.Second
	}
	if config.PageTimeout <= 0 {
		config.PageTimeout = 8 * time.Second
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}

	parser := catalog.NewParser()
	runner := pool.NewRunner(config.WorkerCount)
	pageClient := fetch.NewClient(config.PageTimeout, config.MaxRetries, config.RetryDelay, config.UserAgent)

	return &Pipeline{
		config:     config,
		rootClient: fetch.NewClient(config.FetchTimeout, config.MaxRetries, config.RetryDelay, config.UserAgent),
		parser:     parser,
		crawler:    NewCrawler(pageClient, parser, runner, config.MaxPages),
		repo:       repo,
		aggregator: NewAggregator(config.BatchInterval),
	}
}

// Init seeds the corpus from the durable store and starts the crawl in the
// background. Calling it again is a no-op while a crawl is running or after
// one has completed; re-ingestion goes through Refresh.
func (p *Pipeline) Init(ctx context.Context) {
	p.mu.Lock()
	seeded := p.seeded
	p.seeded = true
	p.mu.Unlock()

	if !seeded {
		books, err := p.repo.GetAll()
		if err != nil {
			// Durability is an optimization; the crawl alone must suffice
			slog.Warn("Failed to read persisted books, starting cold", "error", err)
		} else if len(books) > 0 {
			slog.Info("Seeded corpus from local store", "books", len(books))
			p.aggregator.Seed(books)
		}
	}

	p.startCrawl(ctx)
}

// Refresh clears the in-memory corpus and restarts the crawl.
func (p *Pipeline) Refresh(ctx context.Context) {
	p.mu.Lock()
	if p.fetching {
		p.mu.Unlock()
		slog.Debug("Refresh ignored, crawl already running")
		return
	}
	p.mu.Unlock()

	p.aggregator.Reset()
	p.startCrawl(ctx)
}

func (p *Pipeline) Subscribe(fn Subscriber) func() {
	return p.aggregator.Subscribe(fn)
}

func (p *Pipeline) Snapshot() []catalog.Book {
	return p.aggregator.Snapshot()
}

func (p *Pipeline) IsComplete() bool {
	return p.aggregator.IsComplete()
}

func (p *Pipeline) Err() error {
	return p.aggregator.Err()
}

func (p *Pipeline) Size() int {
	return p.aggregator.Size()
}

func (p *Pipeline) startCrawl(ctx context.Context) {
	// A completed aggregator swallows both progress and completion events,
	// so a crawl started now could never be observed. Refresh resets the
	// aggregator first and is the only path to re-ingestion.
	if p.aggregator.IsComplete() {
		slog.Debug("Crawl already completed, ignoring start")
		return
	}

	p.mu.Lock()
	if p.fetching {
		p.mu.Unlock()
		return
	}
	p.fetching = true
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			p.fetching = false
			p.mu.Unlock()
		}()
		p.crawl(ctx)
	}()
}

func (p *Pipeline) crawl(ctx context.Context) {
	started := time.Now()

	data, err := p.rootClient.Get(ctx, p.config.RootURL)
	if err != nil {
		slog.Error("Root catalog fetch failed", "url", p.config.RootURL, "error", err)
		p.aggregator.Fail(err)
		return
	}

	page, err := p.parser.ParsePage(data, "")
	if err != nil {
		slog.Error("Root catalog parse failed", "url", p.config.RootURL, "error", err)
		p.aggregator.Fail(err)
		return
	}

	links := p.sortCatalogLinks(page.CatalogLinks)
	slog.Info("Discovered catalogs", "count", len(links))

	var wg sync.WaitGroup
	for _, link := range links {
		wg.Add(1)
		go func(link catalog.CatalogLink) {
			defer wg.Done()
			p.crawler.Walk(ctx, link, p.aggregator.MergeBatch)
		}(link)
	}
	wg.Wait()

	p.aggregator.Complete()

	snapshot := p.aggregator.Snapshot()
	if err := p.repo.SaveBooks(snapshot); err != nil {
		slog.Warn("Failed to persist corpus", "books", len(snapshot), "error", err)
	}

	slog.Info("Crawl completed",
		"catalogs", len(links),
		"books", len(snapshot),
		"duration", time.Since(started))
}

// sortCatalogLinks moves primary-language catalogs to the front so first
// results show up sooner. Purely a perceived-latency optimization.
func (p *Pipeline) sortCatalogLinks(links []catalog.CatalogLink) []catalog.CatalogLink {
	if p.config.PrimaryLanguage == "" {
		return links
	}
	primary := strings.ToLower(p.config.PrimaryLanguage)
	sorted := append([]catalog.CatalogLink(nil), links...)
	sort.SliceStable(sorted, func(i, j int) bool {
		iPrimary := strings.Contains(strings.ToLower(sorted[i].Title), primary)
		jPrimary := strings.Contains(strings.ToLower(sorted[j].Title), primary)
		return iPrimary && !jPrimary
	})
	return sorted
}
