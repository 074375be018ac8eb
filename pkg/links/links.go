// Package links turns the raw hyperlinks of a seed page into the ordered,
// de-duplicated set of same-site URLs to process, and names the output file.
package links

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a seed URL has no parsable host.
var ErrInvalidURL = errors.New("invalid URL")

// Resolve makes candidate absolute against base. Candidates that already
// start with "http" are returned untouched. A stray '%' in candidate does not
// stop resolution; only an unparsable base leaves candidate as-is.
func Resolve(candidate, base string) string {
	if strings.HasPrefix(candidate, "http") {
		return candidate
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return candidate
	}
	refURL, err := url.Parse(candidate)
	if err == nil {
		return baseURL.ResolveReference(refURL).String()
	}

	refURL, err = url.Parse(EscapeStrayPercent(candidate))
	if err != nil {
		return candidate
	}
	resolved := baseURL.ResolveReference(refURL).String()
	if strings.Contains(strings.ToLower(candidate+base), "%25") {
		return resolved
	}
	// Put the bare '%' back so the link reads as written.
	return strings.ReplaceAll(resolved, "%25", "%")
}

// EscapeStrayPercent encodes every '%' not followed by two hex digits.
func EscapeStrayPercent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && (i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// hostOf returns the lowercased host of rawURL without port. When the whole
// URL does not parse, the host is read from the authority alone, so a bad
// escape in the path or query does not hide it.
func hostOf(rawURL string) (string, bool) {
	if u, err := url.Parse(rawURL); err == nil {
		return strings.ToLower(u.Hostname()), true
	}

	_, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return "", false
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	u, err := url.Parse("http://" + rest)
	if err != nil {
		return "", false
	}
	return strings.ToLower(u.Hostname()), true
}

// MainKeyword returns the lowercased second-from-last label of the seed host.
// ok is false when the host has fewer than two labels.
func MainKeyword(seed string) (keyword string, ok bool) {
	host, ok := hostOf(seed)
	if !ok {
		return "", false
	}
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return "", false
	}
	return parts[len(parts)-2], true
}

// FilterByDomain keeps the links whose host has any label containing the
// seed's main keyword. Containment is a substring test, so "nadra" also
// matches "nadraonline". Links are skipped only when no host can be read.
// Order and duplicates are preserved.
func FilterByDomain(links []string, seed string) []string {
	keyword, ok := MainKeyword(seed)
	if !ok {
		return []string{}
	}

	filtered := make([]string, 0, len(links))
	for _, link := range links {
		host, ok := hostOf(link)
		if !ok {
			continue
		}
		for _, part := range strings.Split(host, ".") {
			if strings.Contains(part, keyword) {
				filtered = append(filtered, link)
				break
			}
		}
	}
	return filtered
}

// Dedupe drops repeated URLs, keeping the first occurrence of each.
func Dedupe(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	unique := make([]string, 0, len(links))
	for _, link := range links {
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		unique = append(unique, link)
	}
	return unique
}

// Filename derives the output file name from the seed host: the
// third-from-last label when there are at least three, otherwise the first.
func Filename(seed string) (string, error) {
	host, ok := hostOf(seed)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, seed)
	}
	if host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, seed)
	}

	parts := strings.Split(host, ".")
	label := parts[0]
	if len(parts) >= 3 {
		label = parts[len(parts)-3]
	}
	return label + ".txt", nil
}
