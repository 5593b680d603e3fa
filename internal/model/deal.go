package model

import (
	"time"

	"github.com/google/uuid"
)

// Deal is a commercial real-estate acquisition under evaluation.
type Deal struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	PropertyType PropertyType `json:"property_type"`
	Latitude     *float64     `json:"latitude,omitempty"`
	Longitude    *float64     `json:"longitude,omitempty"`
	SquareFeet   *float64     `json:"square_feet,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Location is the deal's geographic identity passed to market providers.
type Location struct {
	Address   string
	City      string
	State     string
	Latitude  *float64
	Longitude *float64
}

// Location builds the provider-facing location from the deal.
func (d *Deal) Location() Location {
	return Location{
		Address:   d.Address,
		City:      d.City,
		State:     d.State,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
	}
}

// DealFilter specifies criteria for listing deals.
type DealFilter struct {
	PropertyType PropertyType `json:"property_type,omitempty"`
	City         string       `json:"city,omitempty"`
	Limit        int          `json:"limit,omitempty"`
	Offset       int          `json:"offset,omitempty"`
}

// QuickExtract is the basic deal information pulled from the first pages of
// an Offering Memorandum. All fields are optional; the parser uses nil for
// anything it could not determine.
type QuickExtract struct {
	Name         *string  `json:"name"`
	Address      *string  `json:"address"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	PropertyType *string  `json:"property_type"`
	SquareFeet   *float64 `json:"square_feet"`
}
