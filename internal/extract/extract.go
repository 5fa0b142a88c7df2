// Package extract provides pure text/HTML extraction helpers: emails, phone
// numbers, display names, and website URL normalization. Every function is
// deterministic and side-effect free.
package extract

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe    = regexp.MustCompile(`\+?\d[\d\-\s()]{7,}\d`)
	nonDigitRe = regexp.MustCompile(`\D`)
)

const maxNameLen = 200

// Emails returns the distinct emails found in text, lowercased and sorted
// lexicographically.
func Emails(text string) []string {
	seen := make(map[string]struct{})
	for _, m := range emailRe.FindAllString(text, -1) {
		seen[strings.ToLower(m)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Phones returns the distinct phone numbers found in text, stripped to digits,
// in first-occurrence order. Candidates keep a leading "+" only when the raw
// match started with one, and are dropped unless they contain 10-15 digits.
func Phones(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range phoneRe.FindAllString(text, -1) {
		digits := nonDigitRe.ReplaceAllString(m, "")
		if len(digits) < 10 || len(digits) > 15 {
			continue
		}
		p := digits
		if strings.HasPrefix(strings.TrimSpace(m), "+") {
			p = "+" + digits
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// NameFromHTML derives a display name from a page: first <h1>, then first
// <h2>, then <title>, then the URL host with a leading "www." stripped.
// Textual candidates are truncated to 200 characters.
func NameFromHTML(html, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		for _, sel := range []string{"h1", "h2", "title"} {
			if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
				return truncate(text, maxNameLen)
			}
		}
	}
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
			return strings.TrimPrefix(u.Host, "www.")
		}
	}
	return ""
}

// NormalizeWebsite canonicalizes a website URL: trims whitespace, prepends
// "http://" when no scheme is present, and strips any trailing slashes.
// Empty input stays empty. Idempotent.
func NormalizeWebsite(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "http://" + u
	}
	return strings.TrimRight(u, "/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
