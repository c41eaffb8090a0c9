package pipeline

import (
	"sync"
	"time"

	"github.com/abhi-jithb/storyshelf/app/catalog"
)

// Event is one progress notification. Books is always a full snapshot of the
// corpus; snapshots only grow (by id) between Reset calls. Err is set instead
// of IsComplete when the crawl failed fatally, so subscribers can tell "not
// finished yet" from "failed".
type Event struct {
	Books      []catalog.Book
	IsComplete bool
	Err        error
}

type Subscriber func(Event)

const DefaultBatchInterval = 300 * time.Millisecond

// Aggregator owns the authoritative in-memory corpus, deduplicated by id
// across pages and catalogs. Merges are atomic per batch: subscribers never
// observe a partially applied batch.
type Aggregator struct {
	interval time.Duration

	mu          sync.Mutex
	corpus      map[string]catalog.Book
	order       []string
	subscribers map[int]Subscriber
	nextSubID   int
	complete    bool
	err         error
	lastEmit    time.Time

	// emitMu serializes notifications so a new subscriber's replay is
	// delivered before any later event reaches it
	emitMu sync.Mutex
}

func NewAggregator(interval time.Duration) *Aggregator {
	if interval <= 0 {
		interval = DefaultBatchInterval
	}
	return &Aggregator{
		interval:    interval,
		corpus:      make(map[string]catalog.Book),
		subscribers: make(map[int]Subscriber),
	}
}

// Subscribe registers fn, immediately replays the current snapshot and
// completion state to it, and returns an unsubscribe function.
func (a *Aggregator) Subscribe(fn Subscriber) func() {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	id := a.nextSubID
	a.nextSubID++
	a.subscribers[id] = fn
	event := a.eventLocked()
	a.mu.Unlock()

	fn(event)

	return func() {
		a.mu.Lock()
		delete(a.subscribers, id)
		a.mu.Unlock()
	}
}

// MergeBatch upserts every book by id; an incoming book always wins on id
// collision. A progress event is emitted at most once per interval.
func (a *Aggregator) MergeBatch(books []catalog.Book) {
	if len(books) == 0 {
		return
	}

	a.mu.Lock()
	a.mergeLocked(books)

	now := time.Now()
	emit := !a.complete && now.Sub(a.lastEmit) >= a.interval
	if emit {
		a.lastEmit = now
	}
	a.mu.Unlock()

	if emit {
		a.publish()
	}
}

// Seed merges previously persisted books and publishes immediately, so
// subscribers get an instant snapshot before any network activity completes.
func (a *Aggregator) Seed(books []catalog.Book) {
	a.mu.Lock()
	a.mergeLocked(books)
	a.lastEmit = time.Now()
	a.mu.Unlock()

	a.publish()
}

// Complete emits the single final notification. Later calls are no-ops.
func (a *Aggregator) Complete() {
	a.mu.Lock()
	if a.complete {
		a.mu.Unlock()
		return
	}
	a.complete = true
	a.err = nil
	a.mu.Unlock()

	a.publish()
}

// Fail emits a distinct error notification instead of a completion.
func (a *Aggregator) Fail(err error) {
	a.mu.Lock()
	a.err = err
	a.mu.Unlock()

	a.publish()
}

// Reset clears the corpus and completion state ahead of a fresh crawl.
// Subscribers stay registered.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.corpus = make(map[string]catalog.Book)
	a.order = nil
	a.complete = false
	a.err = nil
	a.lastEmit = time.Time{}
	a.mu.Unlock()
}

// Snapshot returns a copy of the corpus in insertion order.
func (a *Aggregator) Snapshot() []catalog.Book {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.corpus)
}

func (a *Aggregator) IsComplete() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.complete
}

func (a *Aggregator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *Aggregator) mergeLocked(books []catalog.Book) {
	for _, book := range books {
		if _, exists := a.corpus[book.ID]; !exists {
			a.order = append(a.order, book.ID)
		}
		a.corpus[book.ID] = book
	}
}

func (a *Aggregator) snapshotLocked() []catalog.Book {
	books := make([]catalog.Book, 0, len(a.order))
	for _, id := range a.order {
		books = append(books, a.corpus[id])
	}
	return books
}

func (a *Aggregator) eventLocked() Event {
	return Event{
		Books:      a.snapshotLocked(),
		IsComplete: a.complete,
		Err:        a.err,
	}
}

func (a *Aggregator) publish() {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	event := a.eventLocked()
	subscribers := make([]Subscriber, 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		subscribers = append(subscribers, fn)
	}
	a.mu.Unlock()

	for _, fn := range subscribers {
		fn(event)
	}
}
