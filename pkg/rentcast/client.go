// Package rentcast provides a client for the Rentcast property records API.
package rentcast

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.rentcast.io/v1"

// Client fetches property records near a location.
type Client interface {
	Properties(ctx context.Context, req PropertiesRequest) (*PropertiesResponse, error)
}

// PropertiesRequest holds query parameters for GET /properties.
type PropertiesRequest struct {
	Latitude     float64
	Longitude    float64
	RadiusMiles  float64
	PropertyType string
	Limit        int
}

// PropertiesResponse is the parsed GET /properties response.
type PropertiesResponse struct {
	Properties []Property `json:"properties"`
}

// Property is a single property record. Pointer fields are absent from the
// record when nil.
type Property struct {
	ID               string   `json:"id"`
	AddressLine1     string   `json:"addressLine1"`
	FormattedAddress string   `json:"formattedAddress"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	PropertyType     string   `json:"propertyType"`
	YearBuilt        *int     `json:"yearBuilt"`
	UnitCount        *int     `json:"unitCount"`
	SquareFootage    *float64 `json:"squareFootage"`
	LastSalePrice    *float64 `json:"lastSalePrice"`
	CapRate          *float64 `json:"capRate"`
	RentEstimate     *float64 `json:"rentEstimate"`
	OccupancyRate    *float64 `json:"occupancyRate"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Rentcast API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Properties(ctx context.Context, req PropertiesRequest) (*PropertiesResponse, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(req.RadiusMiles, 'f', -1, 64))
	if req.PropertyType != "" {
		q.Set("propertyType", req.PropertyType)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/properties?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "rentcast: create request")
	}
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "rentcast: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "rentcast: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("rentcast: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result PropertiesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "rentcast: unmarshal response")
	}

	return &result, nil
}
