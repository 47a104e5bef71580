package geo

import (
	"context"
	"math"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

// CenterSource supplies the snapshot of active centers to resolve against.
type CenterSource interface {
	ActiveCenters(ctx context.Context) ([]domain.Center, error)
}

// Resolver finds the nearest active center to a coordinate. Side-effect-free;
// each call reads a fresh snapshot of active centers.
type Resolver struct {
	centers CenterSource
}

func NewResolver(centers CenterSource) *Resolver {
	return &Resolver{centers: centers}
}

// NearestActiveCenter returns the active center closest to the given point.
// Ties are broken by lowest center id for determinism. Returns ErrNotFound
// when no active center exists.
func (r *Resolver) NearestActiveCenter(ctx context.Context, lat, lng float64) (*domain.Center, error) {
	centers, err := r.centers.ActiveCenters(ctx)
	if err != nil {
		return nil, err
	}
	if len(centers) == 0 {
		return nil, domain.NotFoundf("no active centers")
	}

	best := centers[0]
	bestDist := Distance(lat, lng, best.Latitude, best.Longitude)
	for _, c := range centers[1:] {
		d := Distance(lat, lng, c.Latitude, c.Longitude)
		if d < bestDist || (d == bestDist && c.ID < best.ID) {
			best = c
			bestDist = d
		}
	}
	return &best, nil
}

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance between two points in
// kilometers, using the haversine formula.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
