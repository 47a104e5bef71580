package alerts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
	"github.com/mounirchebbi/beach-safety-app/internal/repository"
)

type fakeStore struct {
	centers     map[string]*domain.Center
	lifeguards  map[string]*domain.Lifeguard
	alerts      map[string]*domain.EmergencyAlert
	escalations map[string]*domain.Escalation
	support     map[string]*domain.SupportRequest
	seq         int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		centers:     map[string]*domain.Center{},
		lifeguards:  map[string]*domain.Lifeguard{},
		alerts:      map[string]*domain.EmergencyAlert{},
		escalations: map[string]*domain.Escalation{},
		support:     map[string]*domain.SupportRequest{},
	}
}

func (s *fakeStore) nextID() string {
	s.seq++
	return fmt.Sprintf("id-%d", s.seq)
}

func (s *fakeStore) CenterByID(_ context.Context, id string) (*domain.Center, error) {
	c, ok := s.centers[id]
	if !ok {
		return nil, domain.NotFoundf("center %s not found", id)
	}
	return c, nil
}

func (s *fakeStore) LifeguardByID(_ context.Context, id string) (*domain.Lifeguard, error) {
	l, ok := s.lifeguards[id]
	if !ok {
		return nil, domain.NotFoundf("lifeguard %s not found", id)
	}
	return l, nil
}

func (s *fakeStore) LifeguardByUserID(_ context.Context, userID string) (*domain.Lifeguard, error) {
	for _, l := range s.lifeguards {
		if l.UserID == userID {
			return l, nil
		}
	}
	return nil, domain.NotFoundf("no lifeguard for user %s", userID)
}

func (s *fakeStore) InsertAlert(_ context.Context, a *domain.EmergencyAlert) error {
	a.ID = s.nextID()
	a.CreatedAt = time.Now()
	s.alerts[a.ID] = a
	return nil
}

func (s *fakeStore) AlertByID(_ context.Context, id string) (*domain.EmergencyAlert, error) {
	a, ok := s.alerts[id]
	if !ok {
		return nil, domain.NotFoundf("alert %s not found", id)
	}
	cp := *a
	return &cp, nil
}

func (s *fakeStore) UpdateAlertStatus(_ context.Context, id string, status domain.AlertStatus, assigned *string) (*domain.EmergencyAlert, error) {
	a, ok := s.alerts[id]
	if !ok {
		return nil, domain.NotFoundf("alert %s not found", id)
	}
	a.Status = status
	if assigned != nil {
		a.AssignedLifeguardID = assigned
	}
	cp := *a
	return &cp, nil
}

func (s *fakeStore) InsertEscalation(_ context.Context, e *domain.Escalation) error {
	e.ID = s.nextID()
	e.CreatedAt = time.Now()
	s.escalations[e.ID] = e
	return nil
}

func (s *fakeStore) EscalationByID(_ context.Context, id string) (*repository.EscalationDetail, error) {
	e, ok := s.escalations[id]
	if !ok {
		return nil, domain.NotFoundf("escalation %s not found", id)
	}
	alert, ok := s.alerts[e.AlertID]
	if !ok {
		return nil, domain.NotFoundf("alert %s not found", e.AlertID)
	}
	return &repository.EscalationDetail{Escalation: *e, CenterID: alert.CenterID}, nil
}

func (s *fakeStore) UpdateEscalationStatus(_ context.Context, id string, status domain.EscalationStatus, ackBy *string) (*domain.Escalation, error) {
	e, ok := s.escalations[id]
	if !ok {
		return nil, domain.NotFoundf("escalation %s not found", id)
	}
	e.Status = status
	if ackBy != nil {
		e.AcknowledgedBy = ackBy
	}
	cp := *e
	return &cp, nil
}

func (s *fakeStore) InsertSupportRequest(_ context.Context, sr *domain.SupportRequest) error {
	sr.ID = s.nextID()
	sr.CreatedAt = time.Now()
	s.support[sr.ID] = sr
	return nil
}

func (s *fakeStore) SupportRequestByID(_ context.Context, id string) (*domain.SupportRequest, error) {
	sr, ok := s.support[id]
	if !ok {
		return nil, domain.NotFoundf("support request %s not found", id)
	}
	cp := *sr
	return &cp, nil
}

func (s *fakeStore) UpdateSupportStatus(_ context.Context, id string, status domain.SupportStatus, ackBy, declinedReason *string) (*domain.SupportRequest, error) {
	sr, ok := s.support[id]
	if !ok {
		return nil, domain.NotFoundf("support request %s not found", id)
	}
	sr.Status = status
	if ackBy != nil {
		sr.AcknowledgedBy = ackBy
	}
	if declinedReason != nil {
		sr.DeclinedReason = declinedReason
	}
	cp := *sr
	return &cp, nil
}

type fakeResolver struct {
	center *domain.Center
	err    error
}

func (r *fakeResolver) NearestActiveCenter(context.Context, float64, float64) (*domain.Center, error) {
	return r.center, r.err
}

type recordedEvent struct {
	Topic string
	Event string
}

type recorder struct {
	events []recordedEvent
}

func (r *recorder) PublishCenter(centerID, event string, _ any) {
	r.events = append(r.events, recordedEvent{Topic: "center:" + centerID, Event: event})
}

func (r *recorder) PublishOps(event string, _ any) {
	r.events = append(r.events, recordedEvent{Topic: "ops", Event: event})
}

func (r *recorder) names() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Event)
	}
	return out
}

func testManager(t *testing.T) (*Manager, *fakeStore, *fakeResolver, *recorder) {
	t.Helper()
	store := newFakeStore()
	resolver := &fakeResolver{err: domain.NotFoundf("no active centers")}
	pub := &recorder{}
	store.centers["c1"] = &domain.Center{ID: "c1", Name: "North Beach", IsActive: true}
	store.centers["c2"] = &domain.Center{ID: "c2", Name: "South Beach", IsActive: true}
	store.lifeguards["lg1"] = &domain.Lifeguard{ID: "lg1", UserID: "u-lg1", CenterID: "c1"}
	store.lifeguards["lg2"] = &domain.Lifeguard{ID: "lg2", UserID: "u-lg2", CenterID: "c2"}
	return NewManager(store, resolver, pub), store, resolver, pub
}

func TestCreateSOSResolvesNearestCenter(t *testing.T) {
	m, store, resolver, pub := testManager(t)
	resolver.center, resolver.err = store.centers["c1"], nil

	alert, err := m.CreateSOS(context.Background(), SOSRequest{Latitude: 36.8, Longitude: 10.2, Description: "swimmer in trouble"})
	require.NoError(t, err)
	assert.Equal(t, "c1", alert.CenterID)
	assert.Equal(t, domain.AlertActive, alert.Status)
	assert.Equal(t, domain.PriorityCritical, alert.Severity)
	assert.Equal(t, []string{"emergency_alert", "emergency_alert"}, pub.names())
	assert.Equal(t, "center:c1", pub.events[0].Topic)
	assert.Equal(t, "ops", pub.events[1].Topic)
}

func TestCreateSOSWithExplicitCenter(t *testing.T) {
	m, _, _, _ := testManager(t)

	alert, err := m.CreateSOS(context.Background(), SOSRequest{Latitude: 36.8, Longitude: 10.2, CenterID: "c2"})
	require.NoError(t, err)
	assert.Equal(t, "c2", alert.CenterID)
}

func TestCreateSOSRejectsInactiveExplicitCenter(t *testing.T) {
	m, store, _, pub := testManager(t)
	store.centers["c3"] = &domain.Center{ID: "c3", Name: "Closed Beach", IsActive: false}

	_, err := m.CreateSOS(context.Background(), SOSRequest{Latitude: 36.8, Longitude: 10.2, CenterID: "c3"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, store.alerts)
	assert.Empty(t, pub.events)
}

func TestCreateSOSNoActiveCenters(t *testing.T) {
	m, store, _, pub := testManager(t)

	_, err := m.CreateSOS(context.Background(), SOSRequest{Latitude: 36.8, Longitude: 10.2})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, store.alerts)
	assert.Empty(t, pub.events)
}

func TestCreateSOSRejectsBadCoordinates(t *testing.T) {
	m, _, _, _ := testManager(t)

	_, err := m.CreateSOS(context.Background(), SOSRequest{Latitude: 91, Longitude: 10.2})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func sosAlert(t *testing.T, m *Manager, store *fakeStore, centerID string) *domain.EmergencyAlert {
	t.Helper()
	alert, err := m.CreateSOS(context.Background(), SOSRequest{Latitude: 36.8, Longitude: 10.2, CenterID: centerID})
	require.NoError(t, err)
	return alert
}

func TestAlertLifecycle(t *testing.T) {
	m, store, _, pub := testManager(t)
	alert := sosAlert(t, m, store, "c1")

	updated, err := m.UpdateAlertStatus(context.Background(), alert.ID, domain.AlertResponding)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertResponding, updated.Status)

	updated, err = m.UpdateAlertStatus(context.Background(), alert.ID, domain.AlertResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertResolved, updated.Status)

	assert.Contains(t, pub.names(), "alert_status_change")
}

func TestAlertStatusNoRegression(t *testing.T) {
	m, store, _, _ := testManager(t)
	alert := sosAlert(t, m, store, "c1")

	_, err := m.UpdateAlertStatus(context.Background(), alert.ID, domain.AlertResponding)
	require.NoError(t, err)
	_, err = m.UpdateAlertStatus(context.Background(), alert.ID, domain.AlertResolved)
	require.NoError(t, err)

	_, err = m.UpdateAlertStatus(context.Background(), alert.ID, domain.AlertResponding)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAlertStatusIdempotentResubmission(t *testing.T) {
	m, store, _, pub := testManager(t)
	alert := sosAlert(t, m, store, "c1")
	before := len(pub.events)

	updated, err := m.UpdateAlertStatus(context.Background(), alert.ID, domain.AlertActive)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertActive, updated.Status)
	assert.Len(t, pub.events, before, "no-op must not re-notify")
}

func TestAlertDirectClosure(t *testing.T) {
	m, store, _, _ := testManager(t)
	alert := sosAlert(t, m, store, "c1")

	updated, err := m.UpdateAlertStatus(context.Background(), alert.ID, domain.AlertClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertClosed, updated.Status)

	_, err = m.UpdateAlertStatus(context.Background(), alert.ID, domain.AlertResponding)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAssignAlert(t *testing.T) {
	m, store, _, _ := testManager(t)
	alert := sosAlert(t, m, store, "c1")

	updated, err := m.AssignAlert(context.Background(), alert.ID, "lg1")
	require.NoError(t, err)
	assert.Equal(t, domain.AlertResponding, updated.Status)
	require.NotNil(t, updated.AssignedLifeguardID)
	assert.Equal(t, "lg1", *updated.AssignedLifeguardID)
}

func TestAssignAlertCrossCenterRejected(t *testing.T) {
	m, store, _, _ := testManager(t)
	alert := sosAlert(t, m, store, "c1")

	_, err := m.AssignAlert(context.Background(), alert.ID, "lg2")
	assert.ErrorIs(t, err, domain.ErrConflict)

	// The alert must not have moved.
	got, err := m.store.AlertByID(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertActive, got.Status)
	assert.Nil(t, got.AssignedLifeguardID)
}

func TestAssignAlertTerminalRejected(t *testing.T) {
	m, store, _, _ := testManager(t)
	alert := sosAlert(t, m, store, "c1")

	_, err := m.UpdateAlertStatus(context.Background(), alert.ID, domain.AlertClosed)
	require.NoError(t, err)

	_, err = m.AssignAlert(context.Background(), alert.ID, "lg1")
	assert.ErrorIs(t, err, domain.ErrConflict)
}
