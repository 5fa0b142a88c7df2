package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmails_DedupesCaseFoldsAndSorts(t *testing.T) {
	got := Emails("contact a@b.com or A@B.COM or z@y.org")
	assert.Equal(t, []string{"a@b.com", "z@y.org"}, got)
}

func TestEmails_NoMatches(t *testing.T) {
	assert.Empty(t, Emails("no addresses here, not even at example dot com"))
}

func TestPhones_FormatsAndDedupes(t *testing.T) {
	got := Phones("+1 (555) 123-4567")
	assert.Equal(t, []string{"+15551234567"}, got)
}

func TestPhones_RejectsOutOfRangeDigitCounts(t *testing.T) {
	// 9 digits: too short.
	assert.Empty(t, Phones("123-456-789"))
	// 16 digits: too long.
	assert.Empty(t, Phones("1234 5678 9012 3456"))
}

func TestPhones_PreservesFirstOccurrenceOrder(t *testing.T) {
	got := Phones("call 555-123-4567 or 555-999-8888 or 555-123-4567")
	assert.Equal(t, []string{"5551234567", "5559998888"}, got)
}

func TestPhones_PlusOnlyWhenOriginalHadIt(t *testing.T) {
	got := Phones("local 555-123-4567 intl +44 20 7946 0958")
	assert.Equal(t, []string{"5551234567", "+442079460958"}, got)
}

func TestNameFromHTML_PrefersH1(t *testing.T) {
	html := "<html><head><title>Title Co</title></head><body><h2>Sub</h2><h1>Acme Plumbing</h1></body></html>"
	assert.Equal(t, "Acme Plumbing", NameFromHTML(html, "http://acme.example"))
}

func TestNameFromHTML_FallsBackThroughH2AndTitle(t *testing.T) {
	assert.Equal(t, "Second Best", NameFromHTML("<h2>Second Best</h2>", ""))
	assert.Equal(t, "Title Co", NameFromHTML("<title>Title Co</title>", ""))
}

func TestNameFromHTML_HostFallbackStripsWWW(t *testing.T) {
	assert.Equal(t, "acme.example", NameFromHTML("<p>nothing</p>", "http://www.acme.example/about"))
}

func TestNameFromHTML_TruncatesLongCandidates(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := NameFromHTML("<h1>"+long+"</h1>", "")
	assert.Len(t, got, 200)
}

func TestNormalizeWebsite(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"acme.example", "http://acme.example"},
		{"http://acme.example/", "http://acme.example"},
		{"https://acme.example///", "https://acme.example"},
		{"  https://acme.example/contact/ ", "https://acme.example/contact"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeWebsite(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeWebsite_Idempotent(t *testing.T) {
	inputs := []string{"", "acme.example", "http://acme.example/", "https://a.b/c/", " x.y "}
	for _, in := range inputs {
		once := NormalizeWebsite(in)
		assert.Equal(t, once, NormalizeWebsite(once), "input %q", in)
		if once != "" {
			assert.True(t, strings.HasPrefix(once, "http://") || strings.HasPrefix(once, "https://"))
			assert.False(t, strings.HasSuffix(once, "/"))
		}
	}
}
