// Package enrich augments partial leads by fetching their website and filling
// in contact fields that are still empty. Enrichment never overwrites a value
// that is already present.
package enrich

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/extract"
	"github.com/sells-group/leadfinder/internal/fetcher"
	"github.com/sells-group/leadfinder/internal/model"
)

// Enricher fills missing lead fields from the lead's own website.
type Enricher struct {
	fetch *fetcher.HTML
	cfg   config.EnrichmentConfig
}

// New creates an Enricher using the given fetcher and enrichment config.
func New(fetch *fetcher.HTML, cfg config.EnrichmentConfig) *Enricher {
	return &Enricher{fetch: fetch, cfg: cfg}
}

// Lead returns the lead with empty email/phone/name filled from the website,
// when the site is reachable. A lead without a website, or a site yielding no
// HTML, comes back unchanged.
func (e *Enricher) Lead(ctx context.Context, lead model.Lead) model.Lead {
	site := extract.NormalizeWebsite(lead.Website)
	if site == "" {
		return lead
	}
	html := e.fetch.Fetch(ctx, site)
	if html == "" {
		return lead
	}

	if lead.Email == "" {
		if email := pickEmail(extract.Emails(html), e.cfg.AllowedEmailDomains); email != "" {
			lead.Email = email
		}
	}
	if lead.Phone == "" {
		if phones := extract.Phones(html); len(phones) > 0 {
			lead.Phone = phones[0]
		}
	}
	if lead.Name == "" {
		lead.Name = extract.NameFromHTML(html, site)
	}

	zap.L().Debug("enriched lead",
		zap.String("name", lead.Name),
		zap.String("website", site),
		zap.Bool("has_email", lead.Email != ""),
		zap.Bool("has_phone", lead.Phone != ""),
	)
	return lead
}

// pickEmail chooses from emails (already sorted): the first whose domain is in
// the allow-list when one is configured, else the first overall.
func pickEmail(emails []string, allowed []string) string {
	if len(emails) == 0 {
		return ""
	}
	if len(allowed) > 0 {
		allowedLC := make(map[string]struct{}, len(allowed))
		for _, d := range allowed {
			allowedLC[strings.ToLower(d)] = struct{}{}
		}
		for _, e := range emails {
			at := strings.LastIndex(e, "@")
			if at < 0 {
				continue
			}
			if _, ok := allowedLC[strings.ToLower(e[at+1:])]; ok {
				return e
			}
		}
	}
	return emails[0]
}
