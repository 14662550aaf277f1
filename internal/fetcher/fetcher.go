// ABOUTME: HTTP fetcher that downloads a product page and extracts its price
// ABOUTME: Side-effect free; every failure is returned as a *FetchError
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/harper/pricewatch/internal/models"
)

// DefaultUserAgent mimics a desktop browser; many shops reject bot agents
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const defaultMaxBody = 5 << 20

// HTTPFetcher scrapes product pages over HTTP
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	maxBody   int64
}

// Option configures an HTTPFetcher
type Option func(*HTTPFetcher)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTimeout bounds a single fetch
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBodyBytes caps how much of a page is read
func WithMaxBodyBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// New creates a fetcher with sensible defaults
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{},
		userAgent: DefaultUserAgent,
		timeout:   20 * time.Second,
		maxBody:   defaultMaxBody,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads pageURL and extracts the product details
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	doc, err := f.fetchDocument(ctx, pageURL)
	if err != nil {
		return models.Product{}, err
	}

	product := Extract(doc, pageURL)
	if product.Price == nil {
		reason := ReasonParse
		if looksBlocked(doc) {
			reason = ReasonBlocked
		}
		return product, &FetchError{URL: pageURL, Reason: reason, Err: errors.New("no price found")}
	}
	return product, nil
}

func (f *HTTPFetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Reason: ReasonNetwork, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Reason: ReasonNetwork, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return nil, &FetchError{URL: pageURL, Reason: ReasonBlocked, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: pageURL, Reason: ReasonNetwork, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		if ctx.Err() != nil {
			return nil, &FetchError{URL: pageURL, Reason: ReasonNetwork, Err: ctx.Err()}
		}
		return nil, &FetchError{URL: pageURL, Reason: ReasonParse, Err: fmt.Errorf("parse document: %w", err)}
	}
	return doc, nil
}

// Extract runs every strategy list over doc. Relative image URLs are
// resolved against pageURL.
func Extract(doc *goquery.Document, pageURL string) models.Product {
	var product models.Product
	if price, _, ok := extractPrice(doc); ok {
		product.Price = &price
	}
	product.Title, _ = runStrategies(doc, TitleStrategies)
	product.Description, _ = runStrategies(doc, DescriptionStrategies)
	if img, _ := runStrategies(doc, ImageStrategies); img != "" {
		product.ImageURL = resolveURL(pageURL, img)
	}
	return product
}

var blockMarkers = []string{"captcha", "robot check", "are you a robot", "access denied", "unusual traffic"}

func looksBlocked(doc *goquery.Document) bool {
	if doc.Find(`.g-recaptcha, #captcha, form[action*="captcha"], #challenge-form, .h-captcha`).Length() > 0 {
		return true
	}
	title := strings.ToLower(doc.Find("title").First().Text())
	for _, marker := range blockMarkers {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}

func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
