package extractor

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	page := `
		<html><body>
			<a href="/one">One</a>
			<a name="anchor-only">No href</a>
			<p><a href="../two?x=1#frag">Two</a></p>
			<a href="https://other.example.org/three">Three</a>
			<a href="/one">One again</a>
			<a href="">Empty</a>
			<link href="/style.css" rel="stylesheet">
		</body></html>`

	e := New()
	got, err := e.ExtractLinks(strings.NewReader(page), "https://site.com/dir/page.html")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://site.com/one",
		"https://site.com/two?x=1#frag",
		"https://other.example.org/three",
		"https://site.com/one",
		"https://site.com/dir/page.html",
	}, got)
}

func TestExtractLinksNoAnchors(t *testing.T) {
	got, err := New().ExtractLinks(strings.NewReader("<p>nothing here</p>"), "https://site.com/")
	require.NoError(t, err)
	assert.Empty(t, got)
}

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Registration Guide</title></head>
<body>
	<nav><a href="/">Home</a> <a href="/menu">Menu entry that should vanish</a></nav>
	<script>var tracking = "noise";</script>
	<main>
		<article>
			<h1>Registration Guide</h1>
			<p>Citizens can register for a national identity card at any registration centre.
			Bring your birth certificate and a parent's identity card when you visit the centre.</p>
			<p>Processing usually takes fifteen working days, after which the card can be collected
			from the same centre or delivered to your home address for an additional fee.</p>
			<p>See the <a href="/fees">fee schedule</a> for the current charges.</p>
		</article>
	</main>
	<footer>Copyright footer text</footer>
</body>
</html>`

func TestToMarkdown(t *testing.T) {
	title, md, err := New().ToMarkdown([]byte(articlePage), "https://www.nadra.gov.pk/guide")
	require.NoError(t, err)

	assert.Equal(t, "Registration Guide", title)
	assert.Contains(t, md, "fifteen working days")
	assert.NotContains(t, md, "tracking")
	assert.NotContains(t, md, "Copyright footer text")
}

func TestMainFragmentStripsNoise(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(articlePage))
	require.NoError(t, err)

	fragment, err := mainFragment(doc)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(fragment, "<main>"))
	assert.Contains(t, fragment, "birth certificate")
	assert.NotContains(t, fragment, "Menu entry that should vanish")
	assert.NotContains(t, fragment, "tracking")
	assert.NotContains(t, fragment, "Copyright footer text")
}

func TestConvertMakesLinksAbsolute(t *testing.T) {
	md, err := convert(`<p>See <a href="/fees">fees</a></p>`, "https://site.com")
	require.NoError(t, err)
	assert.Equal(t, "See [fees](https://site.com/fees)", md)
}
