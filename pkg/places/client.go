// Package places provides a client for the classic Google Places web-service
// endpoints: Text Search with page-token pagination, and per-place Details.
package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultTextSearchURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	defaultDetailsURL    = "https://maps.googleapis.com/maps/api/place/details/json"

	// detailsFields is the fixed field mask requested from the Details endpoint.
	detailsFields = "name,formatted_phone_number,website,types,formatted_address,address_components"
)

// AddressComponent is one structured piece of a place's address.
type AddressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

// Place holds the fields the pipeline consumes from either endpoint.
type Place struct {
	PlaceID              string             `json:"place_id"`
	Name                 string             `json:"name"`
	FormattedPhoneNumber string             `json:"formatted_phone_number"`
	Website              string             `json:"website"`
	Types                []string           `json:"types"`
	FormattedAddress     string             `json:"formatted_address"`
	AddressComponents    []AddressComponent `json:"address_components"`
}

// TextSearchResponse is one page of text-search results.
type TextSearchResponse struct {
	Results       []Place `json:"results"`
	NextPageToken string  `json:"next_page_token"`
	Status        string  `json:"status"`
}

type detailsResponse struct {
	Result Place  `json:"result"`
	Status string `json:"status"`
}

// Client performs Places API operations.
type Client interface {
	TextSearch(ctx context.Context, query, pageToken string) (*TextSearchResponse, error)
	Details(ctx context.Context, placeID string) (*Place, error)
}

// Option configures the client.
type Option func(*client)

// WithTextSearchURL overrides the text-search endpoint.
func WithTextSearchURL(u string) Option {
	return func(c *client) { c.textSearchURL = u }
}

// WithDetailsURL overrides the details endpoint.
func WithDetailsURL(u string) Option {
	return func(c *client) { c.detailsURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.http = hc }
}

type client struct {
	apiKey        string
	textSearchURL string
	detailsURL    string
	http          *http.Client
}

// NewClient creates a Client using the given API key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		apiKey:        apiKey,
		textSearchURL: defaultTextSearchURL,
		detailsURL:    defaultDetailsURL,
		http:          &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TextSearch runs a text search, optionally continuing from pageToken.
func (c *client) TextSearch(ctx context.Context, query, pageToken string) (*TextSearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	}

	var out TextSearchResponse
	if err := c.get(ctx, c.textSearchURL, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Details fetches the detail record for a single place.
func (c *client) Details(ctx context.Context, placeID string) (*Place, error) {
	if placeID == "" {
		return nil, eris.New("places: empty place id")
	}
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("key", c.apiKey)
	params.Set("fields", detailsFields)

	var out detailsResponse
	if err := c.get(ctx, c.detailsURL, params, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

func (c *client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "places: request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("places: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrap(err, "places: decode response")
	}
	return nil
}
