package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		base      string
		want      string
	}{
		{"parent dir", "../about", "https://site.com/dir/page.html", "https://site.com/about"},
		{"root relative", "/contact?x=1", "https://site.com/dir/page.html", "https://site.com/contact?x=1"},
		{"sibling", "other.html#top", "https://site.com/dir/page.html", "https://site.com/dir/other.html#top"},
		{"already absolute", "https://elsewhere.org/a/../b", "https://site.com/", "https://elsewhere.org/a/../b"},
		{"http prefix kept verbatim", "httpfoo", "https://site.com/dir/", "httpfoo"},
		{"protocol relative", "//cdn.site.com/x", "https://site.com/", "https://cdn.site.com/x"},
		{"empty resolves to base", "", "https://site.com/dir/page.html", "https://site.com/dir/page.html"},
		{"unparsable base", "a", "http://[::1", "a"},
		{"stray percent in path", "/offers/100%-off", "https://www.nadra.gov.pk/", "https://www.nadra.gov.pk/offers/100%-off"},
		{"stray percent relative", "sale%zz.html", "https://site.com/dir/page.html", "https://site.com/dir/sale%zz.html"},
		{"encoded percent kept", "/a%25b/100%", "https://site.com/", "https://site.com/a%25b/100%25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.candidate, tt.base))
		})
	}
}

func TestMainKeyword(t *testing.T) {
	kw, ok := MainKeyword("https://www.NADRA.gov.pk")
	require.True(t, ok)
	assert.Equal(t, "gov", kw)

	kw, ok = MainKeyword("https://www.example.co")
	require.True(t, ok)
	assert.Equal(t, "example", kw)

	_, ok = MainKeyword("http://localhost:8080/")
	assert.False(t, ok)
}

func TestFilterByDomain(t *testing.T) {
	t.Run("keyword from seed", func(t *testing.T) {
		seed := "https://www.nadra.com"
		in := []string{
			"https://portal.nadra.com/login",
			"https://unrelated.org",
			"https://www.nadra.com/about",
			"https://portal.nadra.com/login",
			"mailto:info@nadra.com",
		}
		got := FilterByDomain(in, seed)
		assert.Equal(t, []string{
			"https://portal.nadra.com/login",
			"https://www.nadra.com/about",
			"https://portal.nadra.com/login",
		}, got)
	})

	t.Run("nadra gov pk", func(t *testing.T) {
		// Second-from-last label of www.nadra.gov.pk is "gov".
		seed := "https://www.nadra.gov.pk"
		kw, ok := MainKeyword(seed)
		require.True(t, ok)
		assert.Equal(t, "gov", kw)

		got := FilterByDomain([]string{"https://portal.nadra.gov.pk/login", "https://unrelated.com"}, seed)
		assert.Equal(t, []string{"https://portal.nadra.gov.pk/login"}, got)
	})

	t.Run("substring over-match is preserved", func(t *testing.T) {
		got := FilterByDomain([]string{"https://nadraonline.net/", "https://NADRA.example.org/"}, "https://nadra.com")
		assert.Equal(t, []string{"https://nadraonline.net/", "https://NADRA.example.org/"}, got)
	})

	t.Run("unreadable host skipped", func(t *testing.T) {
		got := FilterByDomain([]string{"http://[::1", "https://a.nadra.com/%zz", "https://b.nadra.com/"}, "https://nadra.com")
		assert.Equal(t, []string{"https://a.nadra.com/%zz", "https://b.nadra.com/"}, got)
	})

	t.Run("bad escape in path keeps link", func(t *testing.T) {
		seed := "https://www.nadra.gov.pk/"
		in := []string{
			"https://portal.nadra.gov.pk/offers/100%-off",
			Resolve("/offers/100%-off", seed),
			"https://user@portal.nadra.gov.pk:8443/x%?y",
		}
		assert.Equal(t, in, FilterByDomain(in, seed))
	})

	t.Run("single label seed yields empty", func(t *testing.T) {
		for _, seed := range []string{"http://localhost/", "not a url", ""} {
			got := FilterByDomain([]string{"http://localhost/a"}, seed)
			assert.NotNil(t, got)
			assert.Empty(t, got, seed)
		}
	})
}

func TestDedupe(t *testing.T) {
	in := []string{"A", "B", "A", "C", "B"}
	got := Dedupe(in)
	assert.Equal(t, []string{"A", "B", "C"}, got)

	// Idempotent.
	assert.Equal(t, got, Dedupe(got))

	// Strict equality: no trailing-slash or case folding.
	assert.Equal(t,
		[]string{"https://x.com", "https://x.com/", "HTTPS://x.com"},
		Dedupe([]string{"https://x.com", "https://x.com/", "HTTPS://x.com", "https://x.com"}))

	assert.Empty(t, Dedupe(nil))
}

func TestDedupeIsSubsequence(t *testing.T) {
	in := []string{"d", "a", "d", "b", "a", "c", "c", "e"}
	out := Dedupe(in)

	seen := map[string]bool{}
	for _, v := range out {
		assert.False(t, seen[v], "duplicate %q", v)
		seen[v] = true
	}

	i := 0
	for _, v := range in {
		if i < len(out) && out[i] == v {
			i++
		}
	}
	assert.Equal(t, len(out), i, "output is not a subsequence of input")
}

func TestFilename(t *testing.T) {
	tests := []struct {
		seed string
		want string
	}{
		{"https://www.nadra.gov.pk/page", "nadra.txt"},
		{"https://dgip.gov.pk/page", "dgip.txt"},
		{"https://example.com/x", "example.txt"},
		{"https://WWW.Example.co.uk:8443/", "example.txt"},
		{"http://localhost:8080/", "localhost.txt"},
		{"https://www.nadra.gov.pk/100%-off", "nadra.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.seed, func(t *testing.T) {
			got, err := Filename(tt.seed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilenameInvalid(t *testing.T) {
	for _, seed := range []string{"", "example.com", "not-a-url", "http://[::1"} {
		_, err := Filename(seed)
		assert.ErrorIs(t, err, ErrInvalidURL, seed)
	}
}
