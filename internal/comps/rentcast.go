package comps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/pkg/rentcast"
)

// Only Rentcast types with a canonical equivalent are mapped. Anything else
// falls back to the deal's own property type.
var rentcastTypeMap = map[string]model.PropertyType{
	"Multi-Family": model.PropertyMultifamily,
	"Office":       model.PropertyOffice,
	"Retail":       model.PropertyRetail,
	"Industrial":   model.PropertyIndustrial,
}

var canonicalToRentcast = map[model.PropertyType]string{
	model.PropertyMultifamily: "Multi-Family",
	model.PropertyOffice:      "Office",
	model.PropertyRetail:      "Retail",
	model.PropertyIndustrial:  "Industrial",
}

// RentcastProvider pulls structured comps from the Rentcast records API.
type RentcastProvider struct {
	client      rentcast.Client
	hasKey      bool
	radiusMiles float64
	limit       int
}

// NewRentcastProvider wires the provider. An empty API key disables it
// rather than failing calls.
func NewRentcastProvider(client rentcast.Client, apiKey string, radiusMiles float64, limit int) *RentcastProvider {
	return &RentcastProvider{
		client:      client,
		hasKey:      apiKey != "",
		radiusMiles: radiusMiles,
		limit:       limit,
	}
}

func (p *RentcastProvider) Name() string { return "rentcast" }

// SearchComps queries properties around the deal's coordinates. Deals
// without coordinates, or a missing API key, contribute nothing.
func (p *RentcastProvider) SearchComps(ctx context.Context, deal *model.Deal, _ []model.ExtractedField) ([]model.Comp, error) {
	if deal.Latitude == nil || deal.Longitude == nil {
		zap.L().Warn("deal has no coordinates, skipping rentcast search",
			zap.String("deal_id", deal.ID.String()))
		return nil, nil
	}
	if !p.hasKey {
		zap.L().Warn("rentcast api key not set, skipping rentcast search")
		return nil, nil
	}

	rcType, ok := canonicalToRentcast[deal.PropertyType]
	if !ok {
		rcType = "Multi-Family"
	}

	resp, err := p.client.Properties(ctx, rentcast.PropertiesRequest{
		Latitude:     *deal.Latitude,
		Longitude:    *deal.Longitude,
		RadiusMiles:  p.radiusMiles,
		PropertyType: rcType,
		Limit:        p.limit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "comps: rentcast search")
	}

	fetchedAt := time.Now().UTC()
	out := make([]model.Comp, 0, len(resp.Properties))
	for _, prop := range resp.Properties {
		address := prop.AddressLine1
		if address == "" {
			address = strings.TrimSpace(strings.SplitN(prop.FormattedAddress, ",", 2)[0])
		}
		if address == "" {
			continue
		}

		city := prop.City
		if city == "" {
			city = deal.City
		}
		state := prop.State
		if state == "" {
			state = deal.State
		}

		propertyType := deal.PropertyType
		if mapped, ok := rentcastTypeMap[prop.PropertyType]; ok {
			propertyType = mapped
		}

		var pricePerUnit, pricePerSqft *float64
		if prop.LastSalePrice != nil {
			if prop.UnitCount != nil && *prop.UnitCount > 0 {
				ppu := *prop.LastSalePrice / float64(*prop.UnitCount)
				pricePerUnit = &ppu
			}
			if prop.SquareFootage != nil && *prop.SquareFootage > 0 {
				pps := *prop.LastSalePrice / *prop.SquareFootage
				pricePerSqft = &pps
			}
		}

		sourceURL := fmt.Sprintf("https://rentcast.io/property/%s", prop.ID)
		out = append(out, model.Comp{
			DealID:        deal.ID,
			Address:       address,
			City:          city,
			State:         state,
			PropertyType:  propertyType,
			Source:        model.CompSourceRentcast,
			SourceURL:     &sourceURL,
			YearBuilt:     prop.YearBuilt,
			UnitCount:     prop.UnitCount,
			SquareFeet:    prop.SquareFootage,
			SalePrice:     prop.LastSalePrice,
			PricePerUnit:  pricePerUnit,
			PricePerSqft:  pricePerSqft,
			CapRate:       prop.CapRate,
			RentPerUnit:   prop.RentEstimate,
			OccupancyRate: prop.OccupancyRate,
			FetchedAt:     fetchedAt,
		})
	}

	zap.L().Info("rentcast comps fetched",
		zap.String("deal_id", deal.ID.String()),
		zap.Int("count", len(out)))
	return out, nil
}
