package source

import (
	"context"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/extract"
	"github.com/sells-group/leadfinder/internal/model"
)

// Detail field names readable from an opened result item.
const (
	FieldAddress = "address"
	FieldPhone   = "phone"
	FieldWebsite = "website"
)

// Item is a handle to one rendered result in the map's result list.
type Item interface {
	// Name returns the item's display name, or "" when it cannot be read.
	Name() string
}

// Driver abstracts the browser automation layer driving the map UI. The
// adapter owns the scraping logic (dedup, scrolling, field assembly); the
// driver only navigates and reads.
type Driver interface {
	// Search navigates to the map search results for query.
	Search(ctx context.Context, query string) error
	// Items returns handles for the currently rendered result items.
	Items(ctx context.Context) ([]Item, error)
	// ScrollFeed scrolls the result feed to load more items. It returns
	// false when there is no scrollable feed.
	ScrollFeed(ctx context.Context) bool
	// Open selects an item so its detail panel renders.
	Open(ctx context.Context, item Item) error
	// ReadField reads a named detail field from the open panel; ok is false
	// when the field is missing or times out.
	ReadField(ctx context.Context, field string) (value string, ok bool)
}

// MapsBrowserSource scrapes a map UI through an injected browser Driver.
type MapsBrowserSource struct {
	cfg    config.MapsBrowserConfig
	driver Driver
}

// NewMapsBrowser creates the browser-driven map adapter.
func NewMapsBrowser(cfg config.MapsBrowserConfig, driver Driver) *MapsBrowserSource {
	return &MapsBrowserSource{cfg: cfg, driver: driver}
}

// Name implements Source.
func (s *MapsBrowserSource) Name() string { return "google_maps_browser" }

// Leads implements Source. Per city: search, then walk the result list,
// deduplicating by name, opening each new item, and reading its detail
// fields; the feed is scrolled when the rendered list runs out, and the city
// stops when scrolling loads nothing new or the cap is reached.
func (s *MapsBrowserSource) Leads(ctx context.Context) iter.Seq[model.Lead] {
	return func(yield func(model.Lead) bool) {
		query := strings.TrimSpace(s.cfg.Query)
		if query == "" {
			zap.L().Warn("google_maps_browser: query is empty")
			return
		}
		if s.driver == nil {
			zap.L().Warn("google_maps_browser: no browser driver configured")
			return
		}

		maxResults := s.cfg.MaxResults
		if maxResults <= 0 {
			maxResults = 40
		}

		targets := s.cfg.Cities
		if len(targets) == 0 {
			targets = []string{""}
		}

		for _, city := range targets {
			q := strings.TrimSpace(query + " " + city)
			if err := s.driver.Search(ctx, q); err != nil {
				zap.L().Warn("google_maps_browser: search failed", zap.String("query", q), zap.Error(err))
				continue
			}
			if s.cfg.WaitAfterSearchMs > 0 {
				sleep(ctx, time.Duration(s.cfg.WaitAfterSearchMs)*time.Millisecond)
			}

			if !s.scrapeCity(ctx, q, city, maxResults, yield) {
				return
			}
		}
	}
}

// scrapeCity walks one city's result list. It returns false when the consumer
// stopped the iteration.
func (s *MapsBrowserSource) scrapeCity(ctx context.Context, query, city string, maxResults int, yield func(model.Lead) bool) bool {
	clickDelay := time.Duration(s.cfg.ResultClickDelayS * float64(time.Second))
	seen := make(map[string]struct{})
	idx := 0

	for idx < maxResults {
		items, err := s.driver.Items(ctx)
		if err != nil {
			zap.L().Warn("google_maps_browser: listing items failed", zap.Error(err))
			return true
		}

		if idx >= len(items) {
			// Rendered list exhausted: scroll the feed and see whether
			// anything new loads.
			if !s.driver.ScrollFeed(ctx) {
				return true
			}
			sleep(ctx, time.Second)
			refreshed, err := s.driver.Items(ctx)
			if err != nil || len(refreshed) == len(items) {
				return true
			}
			continue
		}

		item := items[idx]
		name := item.Name()
		if name == "" {
			idx++
			continue
		}
		if _, dup := seen[name]; dup {
			idx++
			continue
		}
		seen[name] = struct{}{}

		if err := s.driver.Open(ctx, item); err != nil {
			idx++
			continue
		}
		if clickDelay > 0 {
			sleep(ctx, clickDelay)
		}

		address, _ := s.driver.ReadField(ctx, FieldAddress)
		phone, _ := s.driver.ReadField(ctx, FieldPhone)
		website, _ := s.driver.ReadField(ctx, FieldWebsite)

		leadCity := city
		if leadCity == "" {
			leadCity = cityFromMapAddress(address)
		}

		lead := model.NewLead(name)
		lead.Source = s.Name()
		lead.Phone = phone
		lead.Website = extract.NormalizeWebsite(website)
		lead.City = leadCity
		lead.Raw = map[string]any{"query": query, "address": address}

		if !yield(lead) {
			return false
		}
		idx++
	}
	return true
}

// cityFromMapAddress takes the second-to-last comma segment of a map address.
func cityFromMapAddress(address string) string {
	var parts []string
	for _, p := range strings.Split(address, ",") {
		if t := strings.TrimSpace(p); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return ""
}
