package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKnownDistances(t *testing.T) {
	// Berlin Alexanderplatz to Brandenburg Gate, roughly 2.1km
	d := Haversine(52.5219, 13.4132, 52.5163, 13.3777)
	assert.InDelta(t, 2480, d, 100)

	// same point
	assert.Equal(t, 0.0, Haversine(52.52, 13.405, 52.52, 13.405))

	// symmetry
	assert.InDelta(t,
		Haversine(40.0, -74.0, 41.0, -73.0),
		Haversine(41.0, -73.0, 40.0, -74.0),
		1e-6)
}

func TestHaversineSmallOffsets(t *testing.T) {
	// ~111m per 0.001 degree of latitude
	d := Haversine(52.52, 13.405, 52.521, 13.405)
	assert.InDelta(t, 111, d, 1)
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	box := NewBoundingBox(52.52, 13.405, 500)

	assert.Less(t, box.MinLat, 52.52)
	assert.Greater(t, box.MaxLat, 52.52)
	assert.Less(t, box.MinLon, 13.405)
	assert.Greater(t, box.MaxLon, 13.405)

	// every point within the radius lies inside the box
	for _, p := range [][2]float64{
		{52.524, 13.405},
		{52.516, 13.405},
		{52.52, 13.412},
		{52.52, 13.398},
	} {
		if Haversine(52.52, 13.405, p[0], p[1]) <= 500 {
			assert.True(t, p[0] >= box.MinLat && p[0] <= box.MaxLat)
			assert.True(t, p[1] >= box.MinLon && p[1] <= box.MaxLon)
		}
	}
}

func TestBoundingBoxAtPole(t *testing.T) {
	box := NewBoundingBox(90, 0, 1000)
	assert.InDelta(t, -180, box.MinLon, 1e-6)
	assert.InDelta(t, 180, box.MaxLon, 1e-6)
}

func TestBoundingBoxLongitudeWidensWithLatitude(t *testing.T) {
	equator := NewBoundingBox(0, 0, 1000)
	north := NewBoundingBox(60, 0, 1000)
	assert.Greater(t, north.MaxLon-north.MinLon, equator.MaxLon-equator.MinLon)
}
