package crawler

import (
	"context"
	"time"
)

// LinkDiscoverer finds the hyperlinks on a single page.
type LinkDiscoverer interface {
	// DiscoverLinks returns absolute links in document order; never fails.
	DiscoverLinks(ctx context.Context, seed string) []string
}

// Options contains configuration for the crawler
type Options struct {
	UserAgent         string        // User agent string
	Timeout           time.Duration // Per-request timeout
	RequestsPerSecond float64       // Rate limit, 0 = unlimited
	FollowRobotsTxt   bool          // Respect robots.txt
}

var _ LinkDiscoverer = (*Crawler)(nil)
