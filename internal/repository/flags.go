package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

const flagColumns = `sf.id, sf.center_id, sf.flag_status, sf.reason, sf.set_by,
	u.role AS set_by_role, sf.set_at, sf.expires_at`

// InsertFlag appends a new flag row. Flags are never updated in place;
// corrections are new rows.
func (r *Repos) InsertFlag(ctx context.Context, f *domain.SafetyFlag) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.SetAt.IsZero() {
		f.SetAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO safety_flags (id, center_id, flag_status, reason, set_by, set_at, expires_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		f.ID, f.CenterID, f.Status, f.Reason, f.SetBy, f.SetAt, f.ExpiresAt)
	return err
}

// EffectiveFlag returns the most recently set flag whose expiry is null or in
// the future. Effectiveness is derived here, not stored.
func (r *Repos) EffectiveFlag(ctx context.Context, centerID string) (*domain.SafetyFlag, error) {
	var f domain.SafetyFlag
	err := r.db.GetContext(ctx, &f,
		`SELECT `+flagColumns+`
		 FROM safety_flags sf
		 JOIN users u ON u.id = sf.set_by
		 WHERE sf.center_id = $1
		   AND (sf.expires_at IS NULL OR sf.expires_at > CURRENT_TIMESTAMP)
		 ORDER BY sf.set_at DESC
		 LIMIT 1`, centerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("no effective safety flag for center %s", centerID)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// LatestFlag returns the most recent flag row regardless of expiry. Used to
// derive the management mode from the setter's role.
func (r *Repos) LatestFlag(ctx context.Context, centerID string) (*domain.SafetyFlag, error) {
	var f domain.SafetyFlag
	err := r.db.GetContext(ctx, &f,
		`SELECT `+flagColumns+`
		 FROM safety_flags sf
		 JOIN users u ON u.id = sf.set_by
		 WHERE sf.center_id = $1
		 ORDER BY sf.set_at DESC
		 LIMIT 1`, centerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("no safety flag for center %s", centerID)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *Repos) FlagHistory(ctx context.Context, centerID string, limit int) ([]domain.SafetyFlag, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []domain.SafetyFlag
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+flagColumns+`
		 FROM safety_flags sf
		 JOIN users u ON u.id = sf.set_by
		 WHERE sf.center_id = $1
		 ORDER BY sf.set_at DESC
		 LIMIT $2`, centerID, limit)
	return out, err
}
