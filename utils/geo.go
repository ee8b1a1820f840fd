package utils

import "math"

const (
	earthRadiusKm = 6371.0

	// DefaultRadiusKm is used when the caller supplies no radius or a
	// nonsense one; MaxRadiusKm caps the search area so a huge radius
	// cannot turn into a full-table scan.
	DefaultRadiusKm = 100.0
	MaxRadiusKm     = 2000.0
)

// BoundingBox is a rectangular lat/lng approximation of a circular search
// radius around a center point.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// NewBoundingBox computes the box containing all points within radiusKm of
// (lat, lng) under a great-circle approximation. Near the poles cos(lat)
// approaches zero and the longitude delta diverges; the bounds are clamped
// so callers can use them directly in range predicates. The box widens
// relative to the true circle at high latitude.
func NewBoundingBox(lat, lng, radiusKm float64) BoundingBox {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	if radiusKm >= MaxRadiusKm {
		radiusKm = MaxRadiusKm
	}

	latDelta := (radiusKm / earthRadiusKm) * (180 / math.Pi)

	lngDelta := 360.0
	if cosLat := math.Cos(lat * math.Pi / 180); cosLat > 1e-6 {
		lngDelta = latDelta / cosLat
	}

	return BoundingBox{
		MinLat: math.Max(lat-latDelta, -90),
		MaxLat: math.Min(lat+latDelta, 90),
		MinLng: math.Max(lng-lngDelta, -180),
		MaxLng: math.Min(lng+lngDelta, 180),
	}
}

// Contains reports whether a point falls inside the box.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lng >= b.MinLng && lng <= b.MaxLng
}
