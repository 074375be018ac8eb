package extractor

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/amosWeiskopf/sitescribe/pkg/links"
)

// noiseSelectors are removed before the fallback conversion.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"nav", "footer", "header", "aside",
	"iframe", "svg", "canvas", "form", "button",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement", ".cookie-banner",
}

// Extractor handles content extraction from HTML
type Extractor struct {
	opts trafilatura.Options
}

// New creates a new Extractor instance
func New() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			IncludeLinks:    true,
			ExcludeComments: true,
		},
	}
}

// ExtractLinks returns the href of every <a> element that has one, resolved
// against baseURL, in document order. Duplicates are kept.
func (e *Extractor) ExtractLinks(r io.Reader, baseURL string) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Namespace == "" && attr.Key == "href" {
					out = append(out, links.Resolve(attr.Val, baseURL))
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return out, nil
}

// ToMarkdown converts a full HTML page into Markdown of its main content.
// trafilatura picks the content block; when it finds nothing the body is
// stripped of navigation and boilerplate and converted whole.
func (e *Extractor) ToMarkdown(htmlContent []byte, pageURL string) (title, markdown string, err error) {
	var domain string
	opts := e.opts
	if u, perr := url.Parse(pageURL); perr == nil && u.Host != "" {
		opts.OriginalURL = u
		domain = u.Scheme + "://" + u.Host
	}

	result, terr := trafilatura.Extract(bytes.NewReader(htmlContent), opts)
	if terr == nil && result != nil && result.ContentNode != nil && strings.TrimSpace(result.ContentText) != "" {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return "", "", fmt.Errorf("render content node: %w", err)
		}
		markdown, err = convert(buf.String(), domain)
		if err != nil {
			return "", "", err
		}
		title = strings.TrimSpace(result.Metadata.Title)
		if title == "" {
			title = documentTitle(htmlContent)
		}
		return title, markdown, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlContent))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())

	fragment, err := mainFragment(doc)
	if err != nil {
		return title, "", err
	}
	markdown, err = convert(fragment, domain)
	if err != nil {
		return title, "", err
	}
	return title, markdown, nil
}

// mainFragment strips noise and returns the outer HTML of the best
// content container.
func mainFragment(doc *goquery.Document) (string, error) {
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}
	for _, tag := range []string{"main", "article", "body"} {
		if sel := doc.Find(tag).First(); sel.Length() > 0 {
			out, err := goquery.OuterHtml(sel)
			if err != nil {
				return "", fmt.Errorf("serialize %s: %w", tag, err)
			}
			return out, nil
		}
	}
	return "", fmt.Errorf("no content container found")
}

func convert(fragment, domain string) (string, error) {
	var (
		md  string
		err error
	)
	if domain != "" {
		md, err = htmltomarkdown.ConvertString(fragment, converter.WithDomain(domain))
	} else {
		md, err = htmltomarkdown.ConvertString(fragment)
	}
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

func documentTitle(htmlContent []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
