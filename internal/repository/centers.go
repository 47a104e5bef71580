package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

const centerColumns = `id, name, ST_Y(location) AS lat, ST_X(location) AS lng, is_active, created_at`

func (r *Repos) ActiveCenters(ctx context.Context) ([]domain.Center, error) {
	var out []domain.Center
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+centerColumns+` FROM centers WHERE is_active = true ORDER BY id`)
	return out, err
}

func (r *Repos) CenterByID(ctx context.Context, id string) (*domain.Center, error) {
	var c domain.Center
	err := r.db.GetContext(ctx, &c,
		`SELECT `+centerColumns+` FROM centers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("center %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repos) LifeguardByID(ctx context.Context, id string) (*domain.Lifeguard, error) {
	var l domain.Lifeguard
	err := r.db.GetContext(ctx, &l,
		`SELECT id, user_id, center_id FROM lifeguards WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("lifeguard %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repos) LifeguardByUserID(ctx context.Context, userID string) (*domain.Lifeguard, error) {
	var l domain.Lifeguard
	err := r.db.GetContext(ctx, &l,
		`SELECT id, user_id, center_id FROM lifeguards WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("lifeguard profile for user %s", userID)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
