package audit

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/google/mweb-analysis-tools/internal/model"
)

//go:embed js/third_party_summary.js
var thirdPartySummaryJS string

// ChromeEngine audits pages with a headless Chrome instance driven over the
// DevTools protocol. Each Run launches a fresh, isolated browser whose
// lifetime is scoped to that call: the deferred allocator cancel kills the
// process on every exit path, audit failures included.
type ChromeEngine struct {
	// execPath overrides the Chrome executable. Empty lets chromedp
	// locate an installed browser.
	execPath string

	// headless controls whether the browser runs without a window.
	headless bool

	// settle is how long to keep collecting after navigation completes.
	// Third-party tags keep injecting requests well past the load event.
	settle time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// ChromeOption configures a ChromeEngine.
type ChromeOption func(*ChromeEngine)

// WithExecPath sets the Chrome/Chromium executable to launch.
func WithExecPath(path string) ChromeOption {
	return func(e *ChromeEngine) {
		e.execPath = path
	}
}

// WithHeadless controls headless mode. Default is headless.
func WithHeadless(headless bool) ChromeOption {
	return func(e *ChromeEngine) {
		e.headless = headless
	}
}

// WithSettleDelay sets the post-navigation collection window.
func WithSettleDelay(d time.Duration) ChromeOption {
	return func(e *ChromeEngine) {
		e.settle = d
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) ChromeOption {
	return func(e *ChromeEngine) {
		e.logger = logger
	}
}

// NewChromeEngine creates a ChromeEngine with the given options.
func NewChromeEngine(opts ...ChromeOption) *ChromeEngine {
	e := &ChromeEngine{
		headless: true,
		settle:   10 * time.Second,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run audits the page at pageURL and returns per-entity samples.
// Callers bound the whole session by deadline on ctx; no other timeout is
// applied here.
func (e *ChromeEngine) Run(ctx context.Context, pageURL string) ([]model.EntitySample, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if e.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(e.execPath))
	}
	if !e.headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	// The allocator owns the browser process; cancelling it terminates
	// the process. Deferring both cancels guarantees release even when
	// the audit itself fails.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	collector := newRequestCollector()
	chromedp.ListenTarget(browserCtx, collector.listen)

	e.logger.Debug("starting audit", "url", pageURL, "settle", e.settle)

	var metrics pageMetrics
	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(pageURL),
		chromedp.Sleep(e.settle),
		chromedp.Evaluate(thirdPartySummaryJS, &metrics,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			}),
	)
	if err != nil {
		return nil, fmt.Errorf("audit of %s failed: %w", pageURL, err)
	}

	requests := collector.records()
	samples := aggregate(pageURL, requests, metrics.LongTasks)

	e.logger.Debug("audit complete",
		"url", pageURL,
		"requests", len(requests),
		"longTasks", len(metrics.LongTasks),
		"entities", len(samples),
	)

	return samples, nil
}

// pageMetrics is the JSON result of the embedded measurement script.
type pageMetrics struct {
	// Origin is the page's own origin, reported for debugging.
	Origin string `json:"origin"`

	// LongTasks are the buffered long-task timing entries.
	LongTasks []longTask `json:"longtasks"`
}

// longTask is one long-task timing entry with its attribution source.
type longTask struct {
	// Src is the attributed container source URL. Empty when the browser
	// could not attribute the task.
	Src string `json:"src"`

	// Duration is the task duration in milliseconds.
	Duration float64 `json:"duration"`
}

// requestRecord is one finished network request.
type requestRecord struct {
	// url is the request URL.
	url string

	// bytes is the encoded data length reported at loading-finished time.
	bytes float64
}

// requestCollector accumulates finished requests from CDP network events.
// Event callbacks arrive on the connection's message loop, so access is
// guarded by a mutex.
type requestCollector struct {
	mu   sync.Mutex
	urls map[network.RequestID]string
	recs []requestRecord
}

func newRequestCollector() *requestCollector {
	return &requestCollector{
		urls: make(map[network.RequestID]string),
	}
}

// listen handles a CDP event. Request URLs are recorded when the request is
// sent; byte counts only become reliable at loading-finished time.
func (c *requestCollector) listen(ev any) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		c.mu.Lock()
		c.urls[e.RequestID] = e.Request.URL
		c.mu.Unlock()
	case *network.EventLoadingFinished:
		c.mu.Lock()
		if u, ok := c.urls[e.RequestID]; ok {
			c.recs = append(c.recs, requestRecord{url: u, bytes: e.EncodedDataLength})
		}
		c.mu.Unlock()
	}
}

// records returns a copy of the finished requests collected so far.
func (c *requestCollector) records() []requestRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]requestRecord, len(c.recs))
	copy(out, c.recs)
	return out
}
