package rentcast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperties(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/properties", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		q := r.URL.Query()
		assert.Equal(t, "30.2672", q.Get("latitude"))
		assert.Equal(t, "-97.7431", q.Get("longitude"))
		assert.Equal(t, "2", q.Get("radius"))
		assert.Equal(t, "Multi-Family", q.Get("propertyType"))
		assert.Equal(t, "10", q.Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"properties": [
				{
					"id": "prop-1",
					"addressLine1": "500 Congress Ave",
					"city": "Austin",
					"state": "TX",
					"propertyType": "Multi-Family",
					"yearBuilt": 1998,
					"unitCount": 48,
					"squareFootage": 42000,
					"lastSalePrice": 9600000,
					"rentEstimate": 1850
				},
				{
					"id": "prop-2",
					"formattedAddress": "1200 Lamar Blvd, Austin, TX 78704",
					"city": "Austin",
					"state": "TX",
					"propertyType": "Multi-Family"
				}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.Properties(context.Background(), PropertiesRequest{
		Latitude:     30.2672,
		Longitude:    -97.7431,
		RadiusMiles:  2,
		PropertyType: "Multi-Family",
		Limit:        10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Properties, 2)

	p := resp.Properties[0]
	assert.Equal(t, "500 Congress Ave", p.AddressLine1)
	require.NotNil(t, p.UnitCount)
	assert.Equal(t, 48, *p.UnitCount)
	require.NotNil(t, p.LastSalePrice)
	assert.InDelta(t, 9_600_000, *p.LastSalePrice, 0.01)

	// Sparse records keep nil pointers rather than zero values.
	assert.Nil(t, resp.Properties[1].YearBuilt)
	assert.Nil(t, resp.Properties[1].LastSalePrice)
}

func TestProperties_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "invalid key"}`))
	}))
	defer srv.Close()

	c := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := c.Properties(context.Background(), PropertiesRequest{Latitude: 1, Longitude: 2, RadiusMiles: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")
}
