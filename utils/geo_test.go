package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBoundingBoxContainsCenter(t *testing.T) {
	box := NewBoundingBox(43.65, -79.38, 100)

	assert.True(t, box.Contains(43.65, -79.38))
	assert.True(t, box.MinLat < 43.65)
	assert.True(t, box.MaxLat > 43.65)
	assert.True(t, box.MinLng < -79.38)
	assert.True(t, box.MaxLng > -79.38)
}

func TestNewBoundingBoxLatitudeDelta(t *testing.T) {
	// At any latitude, 100km north-south spans about 0.9 degrees.
	box := NewBoundingBox(0, 0, 100)

	wantDelta := (100.0 / 6371.0) * (180 / math.Pi)
	assert.InDelta(t, wantDelta, box.MaxLat, 1e-9)
	assert.InDelta(t, -wantDelta, box.MinLat, 1e-9)
	// On the equator the longitude delta equals the latitude delta.
	assert.InDelta(t, wantDelta, box.MaxLng, 1e-9)
}

func TestNewBoundingBoxWidensWithLatitude(t *testing.T) {
	equator := NewBoundingBox(0, 0, 100)
	northern := NewBoundingBox(60, 0, 100)

	// Meridians converge toward the poles, so the same radius covers more
	// degrees of longitude at 60N than at the equator.
	assert.Greater(t, northern.MaxLng-northern.MinLng, equator.MaxLng-equator.MinLng)

	// cos(60) is 0.5, so the span should be about double.
	assert.InDelta(t, 2*(equator.MaxLng-equator.MinLng),
		northern.MaxLng-northern.MinLng, 1e-6)
}

func TestNewBoundingBoxDefaultsBadRadius(t *testing.T) {
	fromZero := NewBoundingBox(10, 10, 0)
	fromNegative := NewBoundingBox(10, 10, -5)
	fromDefault := NewBoundingBox(10, 10, DefaultRadiusKm)

	assert.Equal(t, fromDefault, fromZero)
	assert.Equal(t, fromDefault, fromNegative)
}

func TestNewBoundingBoxCapsRadius(t *testing.T) {
	huge := NewBoundingBox(10, 10, 50000)
	capped := NewBoundingBox(10, 10, MaxRadiusKm)

	assert.Equal(t, capped, huge)
}

func TestNewBoundingBoxClampsAtPoles(t *testing.T) {
	box := NewBoundingBox(89.9, 0, 500)

	assert.LessOrEqual(t, box.MaxLat, 90.0)
	// Near the pole the longitude band covers the full circle.
	assert.Equal(t, -180.0, box.MinLng)
	assert.Equal(t, 180.0, box.MaxLng)
}

func TestNewBoundingBoxClampsAntimeridian(t *testing.T) {
	box := NewBoundingBox(0, 179.9, 500)

	assert.Equal(t, 180.0, box.MaxLng)
	assert.True(t, box.MinLng > 170)
}

func TestBoundingBoxContains(t *testing.T) {
	box := BoundingBox{MinLat: 40, MaxLat: 50, MinLng: -80, MaxLng: -70}

	assert.True(t, box.Contains(45, -75))
	assert.True(t, box.Contains(40, -80))
	assert.False(t, box.Contains(39.9, -75))
	assert.False(t, box.Contains(45, -69.9))
}
