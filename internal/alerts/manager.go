package alerts

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
	"github.com/mounirchebbi/beach-safety-app/internal/hub"
	"github.com/mounirchebbi/beach-safety-app/internal/repository"
)

// Store is the slice of storage the lifecycle manager needs.
type Store interface {
	CenterByID(ctx context.Context, id string) (*domain.Center, error)
	LifeguardByID(ctx context.Context, id string) (*domain.Lifeguard, error)
	LifeguardByUserID(ctx context.Context, userID string) (*domain.Lifeguard, error)

	InsertAlert(ctx context.Context, a *domain.EmergencyAlert) error
	AlertByID(ctx context.Context, id string) (*domain.EmergencyAlert, error)
	UpdateAlertStatus(ctx context.Context, id string, status domain.AlertStatus, assignedLifeguardID *string) (*domain.EmergencyAlert, error)

	InsertEscalation(ctx context.Context, e *domain.Escalation) error
	EscalationByID(ctx context.Context, id string) (*repository.EscalationDetail, error)
	UpdateEscalationStatus(ctx context.Context, id string, status domain.EscalationStatus, acknowledgedBy *string) (*domain.Escalation, error)

	InsertSupportRequest(ctx context.Context, s *domain.SupportRequest) error
	SupportRequestByID(ctx context.Context, id string) (*domain.SupportRequest, error)
	UpdateSupportStatus(ctx context.Context, id string, status domain.SupportStatus, acknowledgedBy, declinedReason *string) (*domain.SupportRequest, error)
}

// Resolver binds an intake coordinate to a center.
type Resolver interface {
	NearestActiveCenter(ctx context.Context, lat, lng float64) (*domain.Center, error)
}

// Publisher delivers lifecycle events to live subscribers. Must not block;
// delivery failures never surface to callers.
type Publisher interface {
	PublishCenter(centerID, event string, payload any)
	PublishOps(event string, payload any)
}

// Manager owns the state machines for emergency alerts, escalations and
// inter-center support requests. All transitions move forward only; each is
// a single guarded update.
type Manager struct {
	store    Store
	resolver Resolver
	pub      Publisher
}

func NewManager(store Store, resolver Resolver, pub Publisher) *Manager {
	return &Manager{store: store, resolver: resolver, pub: pub}
}

// SOSRequest is the public intake payload.
type SOSRequest struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lng"`
	Description string  `json:"description"`
	CenterID    string  `json:"center_id"`
}

// CreateSOS accepts a public distress call. When no center is given, the
// nearest active center is resolved from the coordinate; with no active
// center the alert is rejected, never dropped onto a default.
func (m *Manager) CreateSOS(ctx context.Context, req SOSRequest) (*domain.EmergencyAlert, error) {
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return nil, domain.Validationf("location out of range")
	}

	centerID := req.CenterID
	if centerID == "" {
		center, err := m.resolver.NearestActiveCenter(ctx, req.Latitude, req.Longitude)
		if err != nil {
			return nil, err
		}
		centerID = center.ID
	} else {
		center, err := m.store.CenterByID(ctx, centerID)
		if err != nil {
			return nil, err
		}
		if !center.IsActive {
			return nil, domain.NotFoundf("center %s is not active", centerID)
		}
	}

	alert := &domain.EmergencyAlert{
		CenterID:    centerID,
		AlertType:   "sos",
		Severity:    domain.PriorityCritical,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Description: req.Description,
		Status:      domain.AlertActive,
	}
	if err := m.store.InsertAlert(ctx, alert); err != nil {
		return nil, err
	}

	log.Info().
		Str("alert_id", alert.ID).
		Str("center_id", centerID).
		Msg("SOS alert created")

	m.pub.PublishCenter(centerID, hub.EventEmergencyAlert, alert)
	m.pub.PublishOps(hub.EventEmergencyAlert, alert)
	return alert, nil
}

// alertTransitions lists the permitted forward moves.
var alertTransitions = map[domain.AlertStatus][]domain.AlertStatus{
	domain.AlertActive:     {domain.AlertResponding, domain.AlertClosed},
	domain.AlertResponding: {domain.AlertResolved},
}

func alertTransitionAllowed(from, to domain.AlertStatus) bool {
	for _, s := range alertTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// UpdateAlertStatus moves an alert through its lifecycle. Re-submitting the
// current status is a no-op, not an error.
func (m *Manager) UpdateAlertStatus(ctx context.Context, alertID string, status domain.AlertStatus) (*domain.EmergencyAlert, error) {
	if !status.Valid() {
		return nil, domain.Validationf("invalid alert status %q", status)
	}

	alert, err := m.store.AlertByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.Status == status {
		return alert, nil
	}
	if !alertTransitionAllowed(alert.Status, status) {
		return nil, domain.Conflictf("alert %s cannot move from %s to %s", alertID, alert.Status, status)
	}

	updated, err := m.store.UpdateAlertStatus(ctx, alertID, status, nil)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("alert_id", alertID).
		Str("status", string(status)).
		Msg("alert status changed")

	m.pub.PublishCenter(updated.CenterID, hub.EventAlertStatusChange, updated)
	return updated, nil
}

// AssignAlert puts a lifeguard on an alert and forces it to responding. The
// lifeguard must belong to the alert's center.
func (m *Manager) AssignAlert(ctx context.Context, alertID, lifeguardID string) (*domain.EmergencyAlert, error) {
	alert, err := m.store.AlertByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.Status.Terminal() {
		return nil, domain.Conflictf("alert %s is already %s", alertID, alert.Status)
	}

	lifeguard, err := m.store.LifeguardByID(ctx, lifeguardID)
	if err != nil {
		return nil, err
	}
	if lifeguard.CenterID != alert.CenterID {
		return nil, domain.Conflictf("lifeguard %s does not belong to center %s", lifeguardID, alert.CenterID)
	}

	updated, err := m.store.UpdateAlertStatus(ctx, alertID, domain.AlertResponding, &lifeguardID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("alert_id", alertID).
		Str("lifeguard_id", lifeguardID).
		Msg("alert assigned")

	m.pub.PublishCenter(updated.CenterID, hub.EventAlertStatusChange, updated)
	return updated, nil
}
