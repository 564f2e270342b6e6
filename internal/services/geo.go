package services

import (
	"context"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"

	"favorites/internal/models"
)

const DefaultNearbyRadius = 1000.0

// NearbyFavorite is a favorite together with its distance in meters from a query point.
type NearbyFavorite struct {
	models.Favorite
	Distance float64 `json:"distance"`
}

func favoritePoint(fav models.Favorite) orb.Point {
	return orb.Point{*fav.Longitude, *fav.Latitude}
}

// FeatureCollection renders the located favorites as GeoJSON points. Favorites
// without both coordinates are skipped.
func FeatureCollection(items []models.Favorite) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, fav := range items {
		if !fav.HasLocation() {
			continue
		}

		feature := geojson.NewFeature(favoritePoint(fav))
		feature.ID = fav.ID.Hex()
		feature.Properties["placeId"] = fav.PlaceID
		if fav.Name != nil {
			feature.Properties["name"] = *fav.Name
		}
		if fav.Address != nil {
			feature.Properties["address"] = *fav.Address
		}
		if fav.Type != nil {
			feature.Properties["type"] = *fav.Type
		}
		fc.Append(feature)
	}
	return fc
}

// WithinRadius keeps the located favorites at most radius meters from
// center, closest first.
func WithinRadius(items []models.Favorite, center orb.Point, radius float64) []NearbyFavorite {
	nearby := make([]NearbyFavorite, 0)
	for _, fav := range items {
		if !fav.HasLocation() {
			continue
		}
		distance := geo.Distance(center, favoritePoint(fav))
		if distance <= radius {
			nearby = append(nearby, NearbyFavorite{Favorite: fav, Distance: distance})
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})
	return nearby
}

// Nearby lists the user's favorites within radius meters of center.
func (s *Favorites) Nearby(ctx context.Context, rawUserID string, center orb.Point, radius float64) ([]NearbyFavorite, error) {
	items, err := s.List(ctx, rawUserID)
	if err != nil {
		return nil, err
	}
	if radius <= 0 {
		radius = DefaultNearbyRadius
	}
	return WithinRadius(items, center, radius), nil
}
