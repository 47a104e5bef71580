package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

const alertColumns = `id, center_id, alert_type, severity,
	ST_Y(location) AS lat, ST_X(location) AS lng, description, status,
	assigned_lifeguard_id, created_at, updated_at`

func (r *Repos) InsertAlert(ctx context.Context, a *domain.EmergencyAlert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO emergency_alerts (
			id, center_id, alert_type, severity, location, description,
			status, assigned_lifeguard_id, created_at, updated_at
		 ) VALUES ($1,$2,$3,$4, ST_SetSRID(ST_MakePoint($5,$6), 4326), $7,$8,$9,$10,$11)`,
		a.ID, a.CenterID, a.AlertType, a.Severity, a.Longitude, a.Latitude,
		a.Description, a.Status, a.AssignedLifeguardID, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *Repos) AlertByID(ctx context.Context, id string) (*domain.EmergencyAlert, error) {
	var a domain.EmergencyAlert
	err := r.db.GetContext(ctx, &a,
		`SELECT `+alertColumns+` FROM emergency_alerts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("alert %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAlertStatus sets the alert's status (and optionally the assigned
// lifeguard) and returns the updated row.
func (r *Repos) UpdateAlertStatus(ctx context.Context, id string, status domain.AlertStatus, assignedLifeguardID *string) (*domain.EmergencyAlert, error) {
	var a domain.EmergencyAlert
	err := r.db.GetContext(ctx, &a,
		`UPDATE emergency_alerts
		 SET status = $1,
		     assigned_lifeguard_id = COALESCE($2, assigned_lifeguard_id),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3
		 RETURNING `+alertColumns, status, assignedLifeguardID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("alert %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repos) AlertsByCenter(ctx context.Context, centerID string, status domain.AlertStatus, limit int) ([]domain.EmergencyAlert, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []domain.EmergencyAlert
	if status != "" {
		err := r.db.SelectContext(ctx, &out,
			`SELECT `+alertColumns+` FROM emergency_alerts
			 WHERE center_id = $1 AND status = $2
			 ORDER BY created_at DESC LIMIT $3`, centerID, status, limit)
		return out, err
	}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+alertColumns+` FROM emergency_alerts
		 WHERE center_id = $1
		 ORDER BY created_at DESC LIMIT $2`, centerID, limit)
	return out, err
}
