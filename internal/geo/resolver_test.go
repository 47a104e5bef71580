package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

type staticCenters []domain.Center

func (s staticCenters) ActiveCenters(context.Context) ([]domain.Center, error) {
	return s, nil
}

type failingCenters struct{}

func (failingCenters) ActiveCenters(context.Context) ([]domain.Center, error) {
	return nil, errors.New("db down")
}

func TestNearestActiveCenter(t *testing.T) {
	centers := staticCenters{
		{ID: "a", Latitude: 0, Longitude: 0},
		{ID: "b", Latitude: 1, Longitude: 1},
		{ID: "c", Latitude: 10, Longitude: 10},
	}
	r := NewResolver(centers)

	got, err := r.NearestActiveCenter(context.Background(), 0.1, 0.1)
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	got, err = r.NearestActiveCenter(context.Background(), 9, 9.5)
	require.NoError(t, err)
	assert.Equal(t, "c", got.ID)
}

func TestNearestActiveCenterTieBreaksByID(t *testing.T) {
	centers := staticCenters{
		{ID: "b", Latitude: 1, Longitude: 0},
		{ID: "a", Latitude: -1, Longitude: 0},
	}
	r := NewResolver(centers)

	got, err := r.NearestActiveCenter(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
}

func TestNearestActiveCenterEmpty(t *testing.T) {
	r := NewResolver(staticCenters{})
	_, err := r.NearestActiveCenter(context.Background(), 0, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNearestActiveCenterSourceError(t *testing.T) {
	r := NewResolver(failingCenters{})
	_, err := r.NearestActiveCenter(context.Background(), 0, 0)
	assert.Error(t, err)
}

func TestDistance(t *testing.T) {
	// Paris to London, roughly 344 km.
	d := Distance(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 344, d, 5)

	assert.Zero(t, Distance(36.8, 10.2, 36.8, 10.2))
}
