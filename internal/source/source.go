// Package source contains the lead source adapters. Each adapter translates
// one external data provider into the common Lead shape, yielding records
// lazily. Adapters absorb their own upstream failures: a broken city, page,
// or item is logged and skipped, never surfaced as a pipeline error.
package source

import (
	"context"
	"iter"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/fetcher"
	"github.com/sells-group/leadfinder/internal/model"
	"github.com/sells-group/leadfinder/pkg/nominatim"
	"github.com/sells-group/leadfinder/pkg/overpass"
	"github.com/sells-group/leadfinder/pkg/places"
)

// Source produces a finite, lazy sequence of leads. The sequence is
// restartable per invocation of Leads, not mid-iteration.
type Source interface {
	Name() string
	Leads(ctx context.Context) iter.Seq[model.Lead]
}

// Enabled builds the enabled adapters in their fixed pipeline order:
// overpass, places, maps browser, directories, websites. The maps driver may
// be nil; the maps adapter then reports the missing capability and yields
// nothing.
func Enabled(cfg *config.Config, fetch *fetcher.HTML, driver Driver) []Source {
	var sources []Source

	if cfg.Sources.Overpass.Enabled {
		oc := cfg.Sources.Overpass
		client := overpass.NewClient(
			overpass.WithBaseURL(oc.OverpassURL),
			overpass.WithUserAgent(cfg.App.UserAgent),
		)
		geocoder := nominatim.NewClient(
			nominatim.WithBaseURL(oc.NominatimURL),
			nominatim.WithUserAgent(cfg.App.UserAgent),
			nominatim.WithMinInterval(geocodeInterval(oc)),
		)
		sources = append(sources, NewOverpass(oc, cfg.App, client, geocoder))
	}
	if cfg.Sources.Places.Enabled {
		client := places.NewClient(cfg.Sources.Places.APIKey)
		sources = append(sources, NewPlaces(cfg.Sources.Places, cfg.App, client))
	}
	if cfg.Sources.MapsBrowser.Enabled {
		sources = append(sources, NewMapsBrowser(cfg.Sources.MapsBrowser, driver))
	}
	if cfg.Sources.Directories.Enabled {
		sources = append(sources, NewDirectories(cfg.Sources.Directories, fetch))
	}
	if cfg.Sources.Websites.Enabled {
		sources = append(sources, NewWebsites(cfg.Sources.Websites, fetch))
	}
	return sources
}
