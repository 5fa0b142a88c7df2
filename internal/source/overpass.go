package source

import (
	"context"
	"fmt"
	"iter"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/extract"
	"github.com/sells-group/leadfinder/internal/model"
	"github.com/sells-group/leadfinder/pkg/nominatim"
	"github.com/sells-group/leadfinder/pkg/overpass"
)

// Tag key priority lists for field extraction; first present key wins.
var (
	categoryKeys = []string{
		"amenity", "shop", "office", "craft", "tourism", "leisure",
		"healthcare", "emergency", "club", "service", "industrial",
	}
	emailKeys   = []string{"contact:email", "email"}
	phoneKeys   = []string{"contact:phone", "phone", "contact:mobile", "mobile"}
	websiteKeys = []string{"contact:website", "website", "contact:url", "url"}
	cityKeys    = []string{"addr:city", "addr:town", "addr:village", "addr:municipality", "addr:county", "addr:place"}
)

// tagFilter is one parsed tag filter; Value "*" matches any value.
type tagFilter struct {
	Key   string
	Value string
}

// location is one query target: a bounding box, plus the geocoded city name
// when the box came from a city query.
type location struct {
	BBox [4]float64
	City string
}

// OverpassSource queries the OSM Overpass API for tagged entities inside the
// configured cities/bounding boxes.
type OverpassSource struct {
	cfg      config.OverpassConfig
	app      config.AppConfig
	client   overpass.Client
	geocoder nominatim.Client
}

// NewOverpass creates the open-geodata adapter.
func NewOverpass(cfg config.OverpassConfig, app config.AppConfig, client overpass.Client, geocoder nominatim.Client) *OverpassSource {
	return &OverpassSource{cfg: cfg, app: app, client: client, geocoder: geocoder}
}

// Name implements Source.
func (s *OverpassSource) Name() string { return "osm_overpass" }

// geocodeInterval returns the configured minimum spacing between geocoding
// calls.
func geocodeInterval(cfg config.OverpassConfig) time.Duration {
	if cfg.GeocodeDelayS <= 0 {
		return 1100 * time.Millisecond
	}
	return time.Duration(cfg.GeocodeDelayS * float64(time.Second))
}

// Leads implements Source. One structured query is issued per location; each
// qualifying element yields a lead, capped at max_results per location.
func (s *OverpassSource) Leads(ctx context.Context) iter.Seq[model.Lead] {
	return func(yield func(model.Lead) bool) {
		filters := parseTagFilters(s.cfg.TagFilters)
		if len(filters) == 0 {
			zap.L().Warn("osm_overpass: tag_filters is empty")
			return
		}

		var tokens []string
		for _, t := range s.cfg.NameContains {
			if t != "" {
				tokens = append(tokens, strings.ToLower(t))
			}
		}

		locations := s.resolveLocations(ctx)
		if len(locations) == 0 {
			zap.L().Warn("osm_overpass: no locations configured (cities or bboxes)")
			return
		}

		for _, loc := range locations {
			query := buildOverpassQuery(filters, loc.BBox, s.cfg.OverpassTimeoutS)

			if delay := s.app.RequestDelay(); delay > 0 {
				sleep(ctx, delay)
			}
			resp, err := s.client.Query(ctx, query)
			if err != nil {
				zap.L().Warn("osm_overpass: query failed",
					zap.Float64s("bbox", loc.BBox[:]),
					zap.Error(err),
				)
				continue
			}
			if len(resp.Elements) == 0 && s.cfg.Debug {
				zap.L().Debug("osm_overpass: 0 elements",
					zap.Float64s("bbox", loc.BBox[:]),
					zap.Strings("tag_filters", s.cfg.TagFilters),
				)
			}

			fetched := 0
			for _, el := range resp.Elements {
				if s.cfg.MaxResults > 0 && fetched >= s.cfg.MaxResults {
					break
				}
				lead, ok := s.leadFromElement(el, filters, tokens, loc)
				if !ok {
					continue
				}
				if !yield(lead) {
					return
				}
				fetched++
			}
		}
	}
}

// resolveLocations turns explicit bboxes and geocoded cities into query
// targets. The geocode cache is read once up front and rewritten once after
// every city has been resolved.
func (s *OverpassSource) resolveLocations(ctx context.Context) []location {
	var locations []location

	for _, raw := range s.cfg.BBoxes {
		bbox, ok := parseBBox(raw)
		if !ok {
			zap.L().Warn("osm_overpass: malformed bbox", zap.String("bbox", raw))
			continue
		}
		locations = append(locations, location{BBox: bbox})
	}

	if len(s.cfg.Cities) == 0 {
		return locations
	}

	cache := nominatim.LoadCache(filepath.Join(s.app.CacheDir, "nominatim.json"))
	for _, city := range s.cfg.Cities {
		if city == "" {
			continue
		}
		place, ok := cache.Get(city)
		if !ok {
			resolved, err := s.geocoder.Geocode(ctx, city)
			if err != nil {
				zap.L().Warn("osm_overpass: geocode failed", zap.String("city", city), zap.Error(err))
				continue
			}
			place = *resolved
			cache.Put(city, place)
		}
		locations = append(locations, location{BBox: place.BBox, City: place.City})
	}
	if err := cache.Save(); err != nil {
		zap.L().Warn("osm_overpass: save geocode cache failed", zap.Error(err))
	}

	return locations
}

// leadFromElement converts one returned element into a lead. Elements without
// a usable name, or failing the name-token match, are skipped.
func (s *OverpassSource) leadFromElement(el overpass.Element, filters []tagFilter, tokens []string, loc location) (model.Lead, bool) {
	tags := el.Tags
	name := firstTag(tags, []string{"name", "operator", "brand"})
	if name == "" {
		return model.Lead{}, false
	}
	if !matchesName(name, tags, tokens) {
		return model.Lead{}, false
	}

	lead := model.NewLead(name)
	lead.Source = s.Name()

	if raw := firstTag(tags, emailKeys); raw != "" {
		if emails := extract.Emails(raw); len(emails) > 0 {
			lead.Email = emails[0]
		}
	}
	if raw := firstTag(tags, phoneKeys); raw != "" {
		if phones := extract.Phones(raw); len(phones) > 0 {
			lead.Phone = phones[0]
		}
	}
	if raw := firstTag(tags, websiteKeys); raw != "" {
		lead.Website = extract.NormalizeWebsite(raw)
	}

	lead.City = firstTag(tags, cityKeys)
	if lead.City == "" {
		lead.City = loc.City
	}
	lead.Category = deriveCategory(tags, filters)
	lead.Raw = map[string]any{"osm_id": el.ID, "osm_type": el.Type, "tags": tags}

	return lead, true
}

// parseTagFilters parses raw filter strings: "key=value", or a bare "key"
// meaning any value.
func parseTagFilters(raw []string) []tagFilter {
	var filters []tagFilter
	for _, item := range raw {
		text := strings.TrimSpace(item)
		if text == "" {
			continue
		}
		if key, value, found := strings.Cut(text, "="); found {
			filters = append(filters, tagFilter{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
		} else {
			filters = append(filters, tagFilter{Key: text, Value: "*"})
		}
	}
	return filters
}

// buildOverpassQuery renders one Overpass QL query covering all filters
// (OR-ed), each applied to nodes, ways, and relations inside bbox.
func buildOverpassQuery(filters []tagFilter, bbox [4]float64, timeoutS float64) string {
	bboxStr := fmt.Sprintf("%v,%v,%v,%v", bbox[0], bbox[1], bbox[2], bbox[3])
	var parts []string
	for _, f := range filters {
		clause := fmt.Sprintf("[%q]", f.Key)
		if f.Value != "" && f.Value != "*" {
			clause = fmt.Sprintf("[%q=%q]", f.Key, f.Value)
		}
		for _, kind := range []string{"node", "way", "relation"} {
			parts = append(parts, fmt.Sprintf("%s%s(%s);", kind, clause, bboxStr))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("[out:json][timeout:%d];(%s);out center tags;", int(timeoutS), strings.Join(parts, "\n"))
}

// parseBBox parses a "south,west,north,east" string.
func parseBBox(raw string) ([4]float64, bool) {
	var bbox [4]float64
	var fields []string
	for _, p := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(p); t != "" {
			fields = append(fields, t)
		}
	}
	if len(fields) != 4 {
		return bbox, false
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return bbox, false
		}
		bbox[i] = v
	}
	return bbox, true
}

// matchesName reports whether any token occurs in the concatenation of name,
// operator, brand, and description (case-insensitive). No tokens means match.
func matchesName(name string, tags map[string]string, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	hay := strings.ToLower(strings.Join([]string{
		name, tags["operator"], tags["brand"], tags["description"],
	}, " "))
	for _, tok := range tokens {
		if strings.Contains(hay, tok) {
			return true
		}
	}
	return false
}

// deriveCategory concatenates present category-like tags as key=value pairs;
// when none are present it falls back to the matched filter keys.
func deriveCategory(tags map[string]string, filters []tagFilter) string {
	var parts []string
	for _, key := range categoryKeys {
		if val := tags[key]; val != "" {
			parts = append(parts, key+"="+val)
		}
	}
	if len(parts) == 0 {
		for _, f := range filters {
			if val := tags[f.Key]; val != "" {
				parts = append(parts, f.Key+"="+val)
			}
		}
	}
	return strings.Join(parts, ",")
}

// firstTag returns the first non-empty tag value among keys, in order.
func firstTag(tags map[string]string, keys []string) string {
	for _, key := range keys {
		if val := tags[key]; val != "" {
			return val
		}
	}
	return ""
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
