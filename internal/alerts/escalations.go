package alerts

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
	"github.com/mounirchebbi/beach-safety-app/internal/hub"
)

// EscalationRequest is submitted by a lifeguard asking their center's admins
// for additional support on an alert.
type EscalationRequest struct {
	AlertID            string          `json:"alert_id"`
	EscalationType     string          `json:"escalation_type"`
	Priority           domain.Priority `json:"priority"`
	Description        string          `json:"description"`
	RequestedResources string          `json:"requested_resources"`
}

// CreateEscalation records an escalation for an alert in the caller's own
// center. Cross-center escalations are rejected at creation.
func (m *Manager) CreateEscalation(ctx context.Context, caller domain.Principal, req EscalationRequest) (*domain.Escalation, error) {
	if req.AlertID == "" || req.Description == "" {
		return nil, domain.Validationf("alert_id and description are required")
	}
	if !domain.ValidEscalationType(req.EscalationType) {
		return nil, domain.Validationf("invalid escalation type %q", req.EscalationType)
	}
	if req.Priority == "" {
		req.Priority = domain.PriorityMedium
	}
	if !req.Priority.Valid() {
		return nil, domain.Validationf("invalid priority %q", req.Priority)
	}

	lifeguard, err := m.store.LifeguardByUserID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	alert, err := m.store.AlertByID(ctx, req.AlertID)
	if err != nil {
		return nil, err
	}
	if alert.CenterID != lifeguard.CenterID {
		return nil, domain.Conflictf("alert %s belongs to another center", req.AlertID)
	}

	esc := &domain.Escalation{
		AlertID:            req.AlertID,
		LifeguardID:        lifeguard.ID,
		EscalationType:     req.EscalationType,
		Priority:           req.Priority,
		Description:        req.Description,
		RequestedResources: req.RequestedResources,
		Status:             domain.EscalationPending,
	}
	if err := m.store.InsertEscalation(ctx, esc); err != nil {
		return nil, err
	}

	log.Info().
		Str("escalation_id", esc.ID).
		Str("alert_id", req.AlertID).
		Str("type", req.EscalationType).
		Msg("escalation created")

	m.pub.PublishCenter(alert.CenterID, hub.EventNewEscalation, esc)
	return esc, nil
}

var escalationRank = map[domain.EscalationStatus]int{
	domain.EscalationPending:      0,
	domain.EscalationAcknowledged: 1,
	domain.EscalationResolved:     2,
}

// AcknowledgeEscalation marks an escalation acknowledged by a center admin.
// Only admins of the alert's own center may act on it.
func (m *Manager) AcknowledgeEscalation(ctx context.Context, caller domain.Principal, escalationID string) (*domain.Escalation, error) {
	return m.moveEscalation(ctx, caller, escalationID, domain.EscalationAcknowledged)
}

// ResolveEscalation closes an acknowledged escalation.
func (m *Manager) ResolveEscalation(ctx context.Context, caller domain.Principal, escalationID string) (*domain.Escalation, error) {
	return m.moveEscalation(ctx, caller, escalationID, domain.EscalationResolved)
}

func (m *Manager) moveEscalation(ctx context.Context, caller domain.Principal, escalationID string, target domain.EscalationStatus) (*domain.Escalation, error) {
	detail, err := m.store.EscalationByID(ctx, escalationID)
	if err != nil {
		return nil, err
	}
	if caller.Role != domain.RoleSystemAdmin && caller.CenterID != detail.CenterID {
		return nil, domain.NotFoundf("escalation %s not found for center %s", escalationID, caller.CenterID)
	}
	if detail.Status == target {
		return &detail.Escalation, nil
	}
	if escalationRank[target] < escalationRank[detail.Status] {
		return nil, domain.Conflictf("escalation %s cannot move from %s to %s", escalationID, detail.Status, target)
	}

	var ackBy *string
	if target == domain.EscalationAcknowledged {
		ackBy = &caller.ID
	}
	updated, err := m.store.UpdateEscalationStatus(ctx, escalationID, target, ackBy)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("escalation_id", escalationID).
		Str("status", string(target)).
		Msg("escalation status changed")

	m.pub.PublishCenter(detail.CenterID, hub.EventEscalationStatus, updated)
	return updated, nil
}
