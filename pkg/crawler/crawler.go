package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/amosWeiskopf/sitescribe/internal/logger"
	"github.com/amosWeiskopf/sitescribe/internal/models"
	"github.com/amosWeiskopf/sitescribe/pkg/extractor"
	"github.com/amosWeiskopf/sitescribe/pkg/links"
)

const (
	defaultUserAgent = "Mozilla/5.0"
	defaultTimeout   = 30 * time.Second
	maxBodySize      = 10 << 20
)

var (
	// ErrUnexpectedStatus is returned when a page answers with anything but 200.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrDisallowed is returned when robots.txt forbids a URL.
	ErrDisallowed = errors.New("disallowed by robots.txt")
	// ErrNotHTML is returned for responses that are not web pages.
	ErrNotHTML = errors.New("not an HTML page")
)

// Crawler fetches pages for link discovery and rendering. It is not safe
// for concurrent use.
type Crawler struct {
	client       *http.Client
	userAgent    string
	limiter      *rate.Limiter
	followRobots bool
	robots       map[string]*robotstxt.RobotsData
	extractor    *extractor.Extractor
	logger       logger.Logger
}

// New creates a Crawler. A nil logger discards output.
func New(opts Options, log logger.Logger) (*Crawler, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("requests per second must not be negative: %v", opts.RequestsPerSecond)
	}
	if log == nil {
		log = logger.NewNop()
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Crawler{
		client:       &http.Client{Transport: transport, Timeout: opts.Timeout, Jar: jar},
		userAgent:    opts.UserAgent,
		limiter:      rate.NewLimiter(limit, 1),
		followRobots: opts.FollowRobotsTxt,
		robots:       make(map[string]*robotstxt.RobotsData),
		extractor:    extractor.New(),
		logger:       log,
	}, nil
}

// DiscoverLinks fetches seed once and returns every hyperlink on it, made
// absolute against seed, in document order. Failures are logged and yield
// an empty slice.
func (c *Crawler) DiscoverLinks(ctx context.Context, seed string) []string {
	log := c.logger.With(logger.String("url", seed))

	if !c.allowed(ctx, seed) {
		log.Warn("Seed disallowed by robots.txt")
		return []string{}
	}

	resp, err := c.get(ctx, seed)
	if err != nil {
		log.Error("Failed to fetch the webpage", logger.Error(err))
		return []string{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error("Failed to fetch the webpage", logger.Int("status", resp.StatusCode))
		return []string{}
	}

	found, err := c.extractor.ExtractLinks(io.LimitReader(resp.Body, maxBodySize), seed)
	if err != nil {
		log.Error("Failed to parse the webpage", logger.Error(err))
		return []string{}
	}
	log.Debug("Discovered links", logger.Int("count", len(found)))
	return found
}

// Render fetches pageURL and converts its main content to Markdown.
func (c *Crawler) Render(ctx context.Context, pageURL string) (*models.Page, error) {
	if !c.allowed(ctx, pageURL) {
		return nil, fmt.Errorf("%s: %w", pageURL, ErrDisallowed)
	}

	resp, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w %d for %s", ErrUnexpectedStatus, resp.StatusCode, pageURL)
	}
	if ct := resp.Header.Get("Content-Type"); !isWebpageMIME(ct) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotHTML, pageURL, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", pageURL, err)
	}

	title, markdown, err := c.extractor.ToMarkdown(body, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", pageURL, err)
	}

	return &models.Page{
		URL:        pageURL,
		Title:      title,
		Markdown:   markdown,
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now().UTC(),
	}, nil
}

// Close releases idle connections.
func (c *Crawler) Close() {
	c.client.CloseIdleConnections()
}

func (c *Crawler) get(ctx context.Context, pageURL string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		// Retry with bare '%' signs encoded.
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, links.EscapeStrayPercent(pageURL), nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	return resp, nil
}

// allowed reports whether robots.txt permits pageURL. Always true unless
// robots checking is enabled; unreachable robots files allow everything.
func (c *Crawler) allowed(ctx context.Context, pageURL string) bool {
	if !c.followRobots {
		return true
	}
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return true
	}

	key := u.Scheme + "://" + u.Host
	robots, ok := c.robots[key]
	if !ok {
		robots = c.fetchRobots(ctx, key)
		c.robots[key] = robots
	}
	if robots == nil {
		return true
	}
	return robots.TestAgent(u.RequestURI(), c.userAgent)
}

func (c *Crawler) fetchRobots(ctx context.Context, origin string) *robotstxt.RobotsData {
	resp, err := c.get(ctx, origin+"/robots.txt")
	if err != nil {
		c.logger.Debug("robots.txt unavailable", logger.String("origin", origin), logger.Error(err))
		return nil
	}
	defer resp.Body.Close()

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		c.logger.Debug("robots.txt unparsable", logger.String("origin", origin), logger.Error(err))
		return nil
	}
	return robots
}

func isWebpageMIME(contentType string) bool {
	if contentType == "" {
		return true
	}
	mimeType := strings.TrimSpace(strings.Split(strings.ToLower(contentType), ";")[0])
	switch mimeType {
	case "text/html", "application/xhtml+xml", "application/xhtml", "text/xml", "application/xml", "text/plain":
		return true
	}
	return false
}
