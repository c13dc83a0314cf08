// Package geocode implements the Mapbox forward-geocoding client consumed by
// the location agent.
package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/opendisaster/simflow/pkg/agents"
	"github.com/opendisaster/simflow/pkg/pipeline"
)

const (
	defaultBaseURL = "https://api.mapbox.com"
	forwardPath    = "/search/geocode/v6/forward"
	defaultTimeout = 10 * time.Second
)

// Client queries the Mapbox geocoding v6 API. It implements agents.Geocoder.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests)
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each forward-geocoding request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func New(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// forwardResponse covers the slice of the v6 response we consume:
// features[0].geometry.coordinates is [lng, lat].
type forwardResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			FullAddress string `json:"full_address"`
			Name        string `json:"name"`
		} `json:"properties"`
	} `json:"features"`
}

// Forward resolves query to the single best-match place, or (nil, nil) when
// Mapbox returns no features. Transport errors, non-2xx statuses and
// undecodable bodies wrap pipeline.ErrExternalDependency.
func (c *Client) Forward(ctx context.Context, query string) (*agents.Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("access_token", c.token)
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+forwardPath+"?"+params.Encode(), nil,
	)
	if err != nil {
		return nil, errors.Wrapf(pipeline.ErrExternalDependency, "geocode %q: build request: %v", query, err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(pipeline.ErrExternalDependency, "geocode %q: %v", query, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, errors.Wrapf(
			pipeline.ErrExternalDependency,
			"geocode %q: status %d: %s", query, res.StatusCode, string(body),
		)
	}

	var fr forwardResponse
	if err := json.NewDecoder(res.Body).Decode(&fr); err != nil {
		return nil, errors.Wrapf(pipeline.ErrExternalDependency, "geocode %q: decode response: %v", query, err)
	}

	if len(fr.Features) == 0 {
		return nil, nil
	}

	feature := fr.Features[0]
	if len(feature.Geometry.Coordinates) < 2 {
		return nil, errors.Wrapf(pipeline.ErrExternalDependency, "geocode %q: malformed coordinates", query)
	}

	name := feature.Properties.FullAddress
	if name == "" {
		name = feature.Properties.Name
	}
	if name == "" {
		name = query
	}

	return &agents.Place{
		Name: name,
		Lat:  feature.Geometry.Coordinates[1],
		Lng:  feature.Geometry.Coordinates[0],
	}, nil
}
