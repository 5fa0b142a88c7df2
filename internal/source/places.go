package source

import (
	"context"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/model"
	"github.com/sells-group/leadfinder/pkg/places"
)

// pageTokenDelay is the fixed wait before following a pagination token; the
// API needs a moment before a fresh token becomes valid.
const pageTokenDelay = 2 * time.Second

// PlacesSource queries the commercial places API via text search, optionally
// fetching a detail record per result.
type PlacesSource struct {
	cfg    config.PlacesConfig
	app    config.AppConfig
	client places.Client
}

// NewPlaces creates the places API adapter.
func NewPlaces(cfg config.PlacesConfig, app config.AppConfig, client places.Client) *PlacesSource {
	return &PlacesSource{cfg: cfg, app: app, client: client}
}

// Name implements Source.
func (s *PlacesSource) Name() string { return "google_places" }

// Leads implements Source. Each configured city gets its own search with its
// own result cap; pagination stops early once the cap is reached.
func (s *PlacesSource) Leads(ctx context.Context) iter.Seq[model.Lead] {
	return func(yield func(model.Lead) bool) {
		if s.cfg.APIKey == "" {
			zap.L().Warn("google_places: api key missing; set sources.google_places.api_key or GOOGLE_PLACES_API_KEY")
			return
		}

		maxResults := s.cfg.MaxResults
		if maxResults <= 0 {
			maxResults = 60
		}

		targets := s.cfg.Cities
		if len(targets) == 0 {
			targets = []string{""}
		}

		for _, city := range targets {
			q := s.cfg.Query
			if city != "" {
				q = s.cfg.Query + " in " + city
			}

			fetched := 0
			pageToken := ""
			for {
				if delay := s.app.RequestDelay(); delay > 0 {
					sleep(ctx, delay)
				}
				page, err := s.client.TextSearch(ctx, q, pageToken)
				if err != nil {
					zap.L().Warn("google_places: text search failed", zap.String("query", q), zap.Error(err))
					break
				}

				for _, item := range page.Results {
					if fetched >= maxResults {
						break
					}
					lead := s.leadFromResult(ctx, item)
					if !yield(lead) {
						return
					}
					fetched++
				}

				if fetched >= maxResults || page.NextPageToken == "" {
					break
				}
				pageToken = page.NextPageToken
				sleep(ctx, pageTokenDelay)
			}
		}
	}
}

// leadFromResult merges the optional detail record over the text-search
// result (detail values win) and assembles a lead.
func (s *PlacesSource) leadFromResult(ctx context.Context, item places.Place) model.Lead {
	var details places.Place
	if s.cfg.FetchDetails && item.PlaceID != "" {
		if delay := s.app.RequestDelay(); delay > 0 {
			sleep(ctx, delay)
		}
		if d, err := s.client.Details(ctx, item.PlaceID); err != nil {
			zap.L().Debug("google_places: details failed", zap.String("place_id", item.PlaceID), zap.Error(err))
		} else {
			details = *d
		}
	}

	name := details.Name
	if name == "" {
		name = item.Name
	}
	types := details.Types
	if len(types) == 0 {
		types = item.Types
	}
	address := details.FormattedAddress
	if address == "" {
		address = item.FormattedAddress
	}

	lead := model.NewLead(name)
	lead.Source = s.Name()
	lead.Phone = details.FormattedPhoneNumber
	lead.Website = details.Website
	lead.Category = strings.Join(types, ",")
	lead.City = cityFromComponents(details.AddressComponents)
	if lead.City == "" {
		lead.City = cityFromAddress(address)
	}
	lead.Raw = map[string]any{"text_search": item, "details": details}
	return lead
}

// cityFromComponents prefers a locality component, then administrative area
// level 2.
func cityFromComponents(components []places.AddressComponent) string {
	for _, comp := range components {
		for _, t := range comp.Types {
			if t == "locality" {
				return comp.LongName
			}
		}
	}
	for _, comp := range components {
		for _, t := range comp.Types {
			if t == "administrative_area_level_2" {
				return comp.LongName
			}
		}
	}
	return ""
}

// cityFromAddress guesses the city from the trailing comma-separated segments
// of a formatted address.
func cityFromAddress(address string) string {
	var parts []string
	for _, p := range strings.Split(address, ",") {
		if t := strings.TrimSpace(p); t != "" {
			parts = append(parts, t)
		}
	}
	switch {
	case len(parts) >= 3:
		return parts[len(parts)-3]
	case len(parts) == 2:
		return parts[len(parts)-2]
	default:
		return ""
	}
}
