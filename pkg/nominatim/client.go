// Package nominatim provides a minimal Nominatim search client used to
// resolve city names into bounding boxes. Calls are gated by a rate limiter
// owned by the client, so every caller sharing one client shares one budget.
package nominatim

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org/search"

// Place is a resolved location: a bounding box in (south, west, north, east)
// order and the canonical city name reported by the geocoder.
type Place struct {
	BBox [4]float64 `json:"bbox"`
	City string     `json:"city"`
}

// Client resolves free-form city queries.
type Client interface {
	Geocode(ctx context.Context, query string) (*Place, error)
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the search endpoint.
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.http = hc }
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy requires
// an identifying agent.
func WithUserAgent(ua string) Option {
	return func(c *client) { c.userAgent = ua }
}

// WithMinInterval spaces successive calls at least d apart, client-wide.
func WithMinInterval(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

type client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:   defaultBaseURL,
		userAgent: "leadfinder/1.0",
		http:      &http.Client{Timeout: 20 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(1100*time.Millisecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchResult mirrors the subset of the Nominatim response we consume.
type searchResult struct {
	BoundingBox []string `json:"boundingbox"` // south, north, west, east
	Address     struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
		County       string `json:"county"`
	} `json:"address"`
}

// Geocode resolves query to a bounding box and canonical city name. A query
// the service cannot resolve is an error, not an empty Place.
func (c *client) Geocode(ctx context.Context, query string) (*Place, error) {
	if query == "" {
		return nil, eris.New("nominatim: empty query")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "nominatim: rate limiter wait")
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", "1")
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("nominatim: status %d for %q", resp.StatusCode, query)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, eris.Wrap(err, "nominatim: decode response")
	}
	if len(results) == 0 {
		return nil, eris.Errorf("nominatim: no result for %q", query)
	}

	item := results[0]
	if len(item.BoundingBox) != 4 {
		return nil, eris.Errorf("nominatim: malformed bounding box for %q", query)
	}
	var vals [4]float64
	for i, s := range item.BoundingBox {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "nominatim: parse bounding box %q", s)
		}
		vals[i] = v
	}

	city := firstNonEmpty(
		item.Address.City,
		item.Address.Town,
		item.Address.Village,
		item.Address.Municipality,
		item.Address.County,
		query,
	)

	// The API reports south, north, west, east; callers want S, W, N, E.
	return &Place{
		BBox: [4]float64{vals[0], vals[2], vals[1], vals[3]},
		City: city,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
