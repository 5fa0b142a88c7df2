package source

import (
	"context"
	"iter"

	"go.uber.org/zap"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/extract"
	"github.com/sells-group/leadfinder/internal/fetcher"
	"github.com/sells-group/leadfinder/internal/model"
)

// WebsiteSource turns each seed URL into one lead extracted from that page.
type WebsiteSource struct {
	cfg   config.WebsitesConfig
	fetch *fetcher.HTML
}

// NewWebsites creates the website crawler adapter.
func NewWebsites(cfg config.WebsitesConfig, fetch *fetcher.HTML) *WebsiteSource {
	return &WebsiteSource{cfg: cfg, fetch: fetch}
}

// Name implements Source.
func (s *WebsiteSource) Name() string { return "website" }

// Leads implements Source.
func (s *WebsiteSource) Leads(ctx context.Context) iter.Seq[model.Lead] {
	return func(yield func(model.Lead) bool) {
		for _, seed := range s.cfg.SeedURLs {
			html := s.fetch.Fetch(ctx, seed)
			if html == "" {
				zap.L().Warn("website: seed unreachable", zap.String("seed", seed))
				continue
			}

			site := extract.NormalizeWebsite(seed)
			name := extract.NameFromHTML(html, seed)
			if name == "" {
				name = site
			}

			lead := model.NewLead(name)
			lead.Source = s.Name()
			lead.Website = site
			if emails := extract.Emails(html); len(emails) > 0 {
				lead.Email = emails[0]
			}
			if phones := extract.Phones(html); len(phones) > 0 {
				lead.Phone = phones[0]
			}

			if !yield(lead) {
				return
			}
		}
	}
}
