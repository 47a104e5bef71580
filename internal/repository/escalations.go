package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

// EscalationDetail is an escalation joined with the center that owns its
// alert, used for ownership checks on transitions.
type EscalationDetail struct {
	domain.Escalation
	CenterID string `db:"center_id"`
}

const escalationColumns = `ee.id, ee.alert_id, ee.lifeguard_id, ee.escalation_type,
	ee.priority, ee.description, ee.requested_resources, ee.status,
	ee.acknowledged_by, ee.acknowledged_at, ee.resolved_at, ee.created_at`

func (r *Repos) InsertEscalation(ctx context.Context, e *domain.Escalation) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO emergency_escalations (
			id, alert_id, lifeguard_id, escalation_type, priority,
			description, requested_resources, status, created_at
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.AlertID, e.LifeguardID, e.EscalationType, e.Priority,
		e.Description, e.RequestedResources, e.Status, e.CreatedAt)
	return err
}

func (r *Repos) EscalationByID(ctx context.Context, id string) (*EscalationDetail, error) {
	var e EscalationDetail
	err := r.db.GetContext(ctx, &e,
		`SELECT `+escalationColumns+`, ea.center_id
		 FROM emergency_escalations ee
		 JOIN emergency_alerts ea ON ea.id = ee.alert_id
		 WHERE ee.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("escalation %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEscalationStatus moves an escalation to the given status. The
// acknowledger is recorded on acknowledgment; resolution stamps resolved_at.
func (r *Repos) UpdateEscalationStatus(ctx context.Context, id string, status domain.EscalationStatus, acknowledgedBy *string) (*domain.Escalation, error) {
	var e domain.Escalation
	var err error
	switch status {
	case domain.EscalationAcknowledged:
		err = r.db.GetContext(ctx, &e,
			`UPDATE emergency_escalations ee
			 SET status = $1, acknowledged_by = $2, acknowledged_at = CURRENT_TIMESTAMP
			 WHERE id = $3
			 RETURNING `+escalationColumns, status, acknowledgedBy, id)
	case domain.EscalationResolved:
		err = r.db.GetContext(ctx, &e,
			`UPDATE emergency_escalations ee
			 SET status = $1, resolved_at = CURRENT_TIMESTAMP
			 WHERE id = $2
			 RETURNING `+escalationColumns, status, id)
	default:
		err = r.db.GetContext(ctx, &e,
			`UPDATE emergency_escalations ee
			 SET status = $1
			 WHERE id = $2
			 RETURNING `+escalationColumns, status, id)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("escalation %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
