package source

import (
	"context"
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/extract"
	"github.com/sells-group/leadfinder/internal/fetcher"
	"github.com/sells-group/leadfinder/internal/model"
)

// DirectorySource crawls business directory listings: each seed page either
// links to business pages (via a CSS selector) or is itself the business page.
type DirectorySource struct {
	cfg   config.DirectoriesConfig
	fetch *fetcher.HTML
}

// NewDirectories creates the directory crawler adapter.
func NewDirectories(cfg config.DirectoriesConfig, fetch *fetcher.HTML) *DirectorySource {
	return &DirectorySource{cfg: cfg, fetch: fetch}
}

// Name implements Source.
func (s *DirectorySource) Name() string { return "directory" }

// Leads implements Source. Pages from which no name can be derived are
// skipped; unreachable seeds or pages just reduce the output.
func (s *DirectorySource) Leads(ctx context.Context) iter.Seq[model.Lead] {
	return func(yield func(model.Lead) bool) {
		maxPages := s.cfg.MaxBusinessPages
		if maxPages <= 0 {
			maxPages = 50
		}

		for _, seed := range s.cfg.SeedURLs {
			html := s.fetch.Fetch(ctx, seed)
			if html == "" {
				zap.L().Warn("directory: seed unreachable", zap.String("seed", seed))
				continue
			}

			links := []string{seed}
			if s.cfg.ListingLinkSelector != "" {
				links = listingLinks(html, seed, s.cfg.ListingLinkSelector, maxPages)
			}

			for _, link := range links {
				pageHTML := html
				if link != seed {
					pageHTML = s.fetch.Fetch(ctx, link)
				}
				if pageHTML == "" {
					continue
				}
				lead, ok := s.leadFromPage(link, pageHTML)
				if !ok {
					continue
				}
				if !yield(lead) {
					return
				}
			}
		}
	}
}

// listingLinks extracts candidate business page URLs matching selector,
// resolved against the seed URL and capped at maxPages.
func listingLinks(html, seed, selector string, maxPages int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	base, err := url.Parse(seed)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		links = append(links, base.ResolveReference(ref).String())
		return len(links) < maxPages
	})
	return links
}

// leadFromPage assembles a lead from one business page.
func (s *DirectorySource) leadFromPage(pageURL, html string) (model.Lead, bool) {
	name := extract.NameFromHTML(html, pageURL)
	if name == "" {
		return model.Lead{}, false
	}

	lead := model.NewLead(name)
	lead.Source = s.Name()
	if emails := extract.Emails(html); len(emails) > 0 {
		lead.Email = emails[0]
	}
	if phones := extract.Phones(html); len(phones) > 0 {
		lead.Phone = phones[0]
	}

	website := externalWebsite(html, pageURL)
	if website == "" {
		website = pageURL
	}
	lead.Website = extract.NormalizeWebsite(website)
	return lead, true
}

// externalWebsite finds the first outbound link whose anchor text suggests
// the business's own site ("website"/"visit") and whose domain differs from
// the directory page's domain.
func externalWebsite(html, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	found := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		resolved := base.ResolveReference(ref)
		if resolved.Host == "" || resolved.Host == base.Host {
			return true
		}
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		if strings.Contains(text, "website") || strings.Contains(text, "visit") {
			found = resolved.String()
			return false
		}
		return true
	})
	return found
}
