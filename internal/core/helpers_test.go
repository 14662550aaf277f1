// ABOUTME: Test doubles shared by the core package tests
// ABOUTME: Scriptable fetcher, embedder, and notifier plus a tracker builder over in-memory SQLite
package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/harper/pricewatch/internal/fetcher"
	"github.com/harper/pricewatch/internal/logging"
	"github.com/harper/pricewatch/internal/models"
	"github.com/harper/pricewatch/internal/notify"
	"github.com/harper/pricewatch/internal/storage/sqlite"
)

// fakeFetcher serves scripted prices by URL. URLs in hang block until the
// fetch context ends. Every fetch takes at least delay.
type fakeFetcher struct {
	mu     sync.Mutex
	prices map[string]float64
	fail   map[string]error
	hang   map[string]bool
	calls  map[string]int
	delay  time.Duration

	inFlight    int
	maxInFlight int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		prices: make(map[string]float64),
		fail:   make(map[string]error),
		hang:   make(map[string]bool),
		calls:  make(map[string]int),
	}
}

func (f *fakeFetcher) setPrice(url string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[url] = price
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (models.Product, error) {
	f.mu.Lock()
	f.calls[url]++
	price, hasPrice := f.prices[url]
	failure := f.fail[url]
	hang := f.hang[url]
	delay := f.delay
	f.inFlight++
	f.maxInFlight = max(f.maxInFlight, f.inFlight)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}
	if hang {
		<-ctx.Done()
		return models.Product{}, &fetcher.FetchError{URL: url, Reason: fetcher.ReasonNetwork, Err: ctx.Err()}
	}
	if failure != nil {
		return models.Product{}, failure
	}
	if !hasPrice {
		return models.Product{Title: "Untitled"}, nil
	}
	return models.Product{Price: models.Float(price), Title: "Fetched " + url}, nil
}

// fakeEmbedder maps embedding text to fixed vectors; unknown text is unavailable
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float64
	calls   int
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) models.EmbeddingResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	v, ok := e.vectors[text]
	if !ok {
		return models.EmbeddingUnavailable("no vector for " + text)
	}
	return models.EmbeddingOK(v)
}

type sentAlert struct {
	alert *models.Alert
	item  *models.Item
}

// recordingNotifier remembers sends and optionally fails them
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentAlert
	err  error
}

func (n *recordingNotifier) Send(ctx context.Context, alert *models.Alert, item *models.Item) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentAlert{alert: alert, item: item})
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// batchingNotifier also accepts digests
type batchingNotifier struct {
	recordingNotifier
	batches [][]notify.Delivery
}

func (n *batchingNotifier) SendBatch(ctx context.Context, deliveries []notify.Delivery) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batches = append(n.batches, deliveries)
	return n.err
}

type testEnv struct {
	store    *sqlite.Storage
	fetcher  *fakeFetcher
	embedder *fakeEmbedder
	notifier *recordingNotifier
	tracker  *Tracker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlite.NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	env := &testEnv{
		store:    store,
		fetcher:  newFakeFetcher(),
		embedder: &fakeEmbedder{vectors: make(map[string][]float64)},
		notifier: &recordingNotifier{},
	}
	env.tracker = NewTracker(store, Options{
		Fetcher:             env.fetcher,
		Embedder:            env.embedder,
		Notifier:            env.notifier,
		Logger:              logging.Discard(),
		MaxConcurrentChecks: 3,
		FetchTimeout:        100 * time.Millisecond,
		SimilarityThreshold: 0.75,
		SavingsThreshold:    0.10,
	})
	return env
}

func (env *testEnv) addItem(t *testing.T, name string, current, target *float64) *models.Item {
	t.Helper()
	item, err := env.tracker.CreateItem(context.Background(), models.ItemInput{
		Name:         name,
		URL:          "https://shop.example.com/" + name,
		CurrentPrice: current,
		TargetPrice:  target,
	})
	if err != nil {
		t.Fatalf("CreateItem(%q) error = %v", name, err)
	}
	return item
}

var errFetchBroken = errors.New("connection refused")
