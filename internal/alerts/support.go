package alerts

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
	"github.com/mounirchebbi/beach-safety-app/internal/hub"
)

// SupportRequestInput is submitted by a center admin asking another center
// for assistance.
type SupportRequestInput struct {
	TargetCenterID     string          `json:"target_center_id"`
	EscalationID       *string         `json:"escalation_id"`
	RequestType        string          `json:"request_type"`
	Priority           domain.Priority `json:"priority"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	RequestedResources string          `json:"requested_resources"`
}

// CreateSupportRequest opens an inter-center support request from the
// caller's center to the target. Self-referential requests are rejected, as
// are targets that do not exist or are inactive.
func (m *Manager) CreateSupportRequest(ctx context.Context, caller domain.Principal, req SupportRequestInput) (*domain.SupportRequest, error) {
	if req.TargetCenterID == "" || req.Title == "" || req.Description == "" {
		return nil, domain.Validationf("target_center_id, title and description are required")
	}
	if !domain.ValidSupportType(req.RequestType) {
		return nil, domain.Validationf("invalid request type %q", req.RequestType)
	}
	if req.Priority == "" {
		req.Priority = domain.PriorityMedium
	}
	if !req.Priority.Valid() {
		return nil, domain.Validationf("invalid priority %q", req.Priority)
	}
	if caller.CenterID == "" {
		return nil, domain.Validationf("caller is not attached to a center")
	}
	if req.TargetCenterID == caller.CenterID {
		return nil, domain.Conflictf("cannot request support from own center")
	}

	target, err := m.store.CenterByID(ctx, req.TargetCenterID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive {
		return nil, domain.NotFoundf("center %s is not active", req.TargetCenterID)
	}
	if req.EscalationID != nil {
		if _, err := m.store.EscalationByID(ctx, *req.EscalationID); err != nil {
			return nil, err
		}
	}

	sr := &domain.SupportRequest{
		RequestingCenterID: caller.CenterID,
		RequestingAdminID:  caller.ID,
		TargetCenterID:     req.TargetCenterID,
		EscalationID:       req.EscalationID,
		RequestType:        req.RequestType,
		Priority:           req.Priority,
		Title:              req.Title,
		Description:        req.Description,
		RequestedResources: req.RequestedResources,
		Status:             domain.SupportPending,
	}
	if err := m.store.InsertSupportRequest(ctx, sr); err != nil {
		return nil, err
	}

	log.Info().
		Str("support_request_id", sr.ID).
		Str("from", caller.CenterID).
		Str("to", req.TargetCenterID).
		Msg("support request created")

	m.pub.PublishCenter(req.TargetCenterID, hub.EventNewSupportRequest, sr)
	return sr, nil
}

var supportRank = map[domain.SupportStatus]int{
	domain.SupportPending:      0,
	domain.SupportAcknowledged: 1,
	domain.SupportResolved:     2,
	domain.SupportDeclined:     2,
}

func supportTerminal(s domain.SupportStatus) bool {
	return s == domain.SupportResolved || s == domain.SupportDeclined
}

// AcknowledgeSupportRequest records that the target center has accepted the
// request and will assist.
func (m *Manager) AcknowledgeSupportRequest(ctx context.Context, caller domain.Principal, id string) (*domain.SupportRequest, error) {
	return m.moveSupport(ctx, caller, id, domain.SupportAcknowledged, nil)
}

// ResolveSupportRequest closes a fulfilled request.
func (m *Manager) ResolveSupportRequest(ctx context.Context, caller domain.Principal, id string) (*domain.SupportRequest, error) {
	return m.moveSupport(ctx, caller, id, domain.SupportResolved, nil)
}

// DeclineSupportRequest refuses a pending request, recording the reason.
func (m *Manager) DeclineSupportRequest(ctx context.Context, caller domain.Principal, id, reason string) (*domain.SupportRequest, error) {
	if reason == "" {
		return nil, domain.Validationf("a decline reason is required")
	}
	return m.moveSupport(ctx, caller, id, domain.SupportDeclined, &reason)
}

func (m *Manager) moveSupport(ctx context.Context, caller domain.Principal, id string, target domain.SupportStatus, declinedReason *string) (*domain.SupportRequest, error) {
	sr, err := m.store.SupportRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Role != domain.RoleSystemAdmin && caller.CenterID != sr.TargetCenterID {
		return nil, domain.NotFoundf("support request %s not found for center %s", id, caller.CenterID)
	}
	if sr.Status == target {
		return sr, nil
	}
	if supportTerminal(sr.Status) || supportRank[target] < supportRank[sr.Status] {
		return nil, domain.Conflictf("support request %s cannot move from %s to %s", id, sr.Status, target)
	}
	if target == domain.SupportDeclined && sr.Status != domain.SupportPending {
		return nil, domain.Conflictf("support request %s cannot be declined once %s", id, sr.Status)
	}

	var ackBy *string
	if target == domain.SupportAcknowledged {
		ackBy = &caller.ID
	}
	updated, err := m.store.UpdateSupportStatus(ctx, id, target, ackBy, declinedReason)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("support_request_id", id).
		Str("status", string(target)).
		Msg("support request status changed")

	// Both sides of the exchange care about the outcome.
	m.pub.PublishCenter(updated.TargetCenterID, hub.EventSupportRequestStatus, updated)
	m.pub.PublishCenter(updated.RequestingCenterID, hub.EventSupportRequestStatus, updated)
	return updated, nil
}

// Broadcast pushes an operator announcement to one center's subscribers and
// the operations room. Nothing is persisted.
func (m *Manager) Broadcast(ctx context.Context, caller domain.Principal, centerID, message string, severity domain.Priority) error {
	if message == "" {
		return domain.Validationf("a broadcast message is required")
	}
	if severity == "" {
		severity = domain.PriorityHigh
	}
	if !severity.Valid() {
		return domain.Validationf("invalid severity %q", severity)
	}
	if _, err := m.store.CenterByID(ctx, centerID); err != nil {
		return err
	}

	payload := map[string]any{
		"center_id": centerID,
		"message":   message,
		"severity":  severity,
		"issued_by": caller.ID,
	}
	m.pub.PublishCenter(centerID, hub.EventEmergencyBroadcast, payload)
	m.pub.PublishOps(hub.EventEmergencyBroadcast, payload)

	log.Info().Str("center_id", centerID).Msg("emergency broadcast issued")
	return nil
}
