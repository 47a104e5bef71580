package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

const supportColumns = `icsr.id, icsr.requesting_center_id, icsr.requesting_admin_id,
	icsr.target_center_id, icsr.escalation_id, icsr.request_type, icsr.priority,
	icsr.title, icsr.description, icsr.requested_resources, icsr.status,
	icsr.declined_reason, icsr.acknowledged_by, icsr.acknowledged_at,
	icsr.resolved_at, icsr.created_at`

func (r *Repos) InsertSupportRequest(ctx context.Context, s *domain.SupportRequest) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO inter_center_support_requests (
			id, requesting_center_id, requesting_admin_id, target_center_id,
			escalation_id, request_type, priority, title, description,
			requested_resources, status, created_at
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		s.ID, s.RequestingCenterID, s.RequestingAdminID, s.TargetCenterID,
		s.EscalationID, s.RequestType, s.Priority, s.Title, s.Description,
		s.RequestedResources, s.Status, s.CreatedAt)
	return err
}

func (r *Repos) SupportRequestByID(ctx context.Context, id string) (*domain.SupportRequest, error) {
	var s domain.SupportRequest
	err := r.db.GetContext(ctx, &s,
		`SELECT `+supportColumns+`
		 FROM inter_center_support_requests icsr
		 WHERE icsr.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("support request %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSupportStatus moves a support request to the given status. declined
// requests carry the decline reason; acknowledgment records the acknowledger.
func (r *Repos) UpdateSupportStatus(ctx context.Context, id string, status domain.SupportStatus, acknowledgedBy, declinedReason *string) (*domain.SupportRequest, error) {
	var s domain.SupportRequest
	var err error
	switch status {
	case domain.SupportAcknowledged:
		err = r.db.GetContext(ctx, &s,
			`UPDATE inter_center_support_requests icsr
			 SET status = $1, acknowledged_by = $2, acknowledged_at = CURRENT_TIMESTAMP
			 WHERE id = $3
			 RETURNING `+supportColumns, status, acknowledgedBy, id)
	case domain.SupportResolved:
		err = r.db.GetContext(ctx, &s,
			`UPDATE inter_center_support_requests icsr
			 SET status = $1, resolved_at = CURRENT_TIMESTAMP
			 WHERE id = $2
			 RETURNING `+supportColumns, status, id)
	case domain.SupportDeclined:
		err = r.db.GetContext(ctx, &s,
			`UPDATE inter_center_support_requests icsr
			 SET status = $1, declined_reason = $2
			 WHERE id = $3
			 RETURNING `+supportColumns, status, declinedReason, id)
	default:
		err = r.db.GetContext(ctx, &s,
			`UPDATE inter_center_support_requests icsr
			 SET status = $1
			 WHERE id = $2
			 RETURNING `+supportColumns, status, id)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("support request %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
