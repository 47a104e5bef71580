package safety

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
	"github.com/mounirchebbi/beach-safety-app/internal/hub"
	"github.com/mounirchebbi/beach-safety-app/internal/metrics"
)

// Store is the slice of storage the engine needs.
type Store interface {
	CenterByID(ctx context.Context, id string) (*domain.Center, error)
	LatestReading(ctx context.Context, centerID string) (*domain.WeatherReading, error)
	EffectiveFlag(ctx context.Context, centerID string) (*domain.SafetyFlag, error)
	LatestFlag(ctx context.Context, centerID string) (*domain.SafetyFlag, error)
	InsertFlag(ctx context.Context, f *domain.SafetyFlag) error
}

// Publisher delivers flag events to live subscribers. Must not block.
type Publisher interface {
	PublishCenter(centerID, event string, payload any)
}

// Engine converts weather readings into safety flag state changes.
type Engine struct {
	store    Store
	pub      Publisher
	clock    clockwork.Clock
	metrics  *metrics.Metrics
	systemID string
	flagTTL  time.Duration
}

func NewEngine(store Store, pub Publisher, clock clockwork.Clock, m *metrics.Metrics, systemPrincipalID string, flagTTL time.Duration) *Engine {
	if flagTTL <= 0 {
		flagTTL = 2 * time.Hour
	}
	return &Engine{
		store:    store,
		pub:      pub,
		clock:    clock,
		metrics:  m,
		systemID: systemPrincipalID,
		flagTTL:  flagTTL,
	}
}

// Evaluate classifies the center's latest reading without writing anything.
func (e *Engine) Evaluate(ctx context.Context, centerID string) (Decision, error) {
	reading, err := e.store.LatestReading(ctx, centerID)
	if err != nil {
		return Decision{}, err
	}
	return Decide(*reading), nil
}

// AutoUpdateResult reports what an automatic evaluation did.
type AutoUpdateResult struct {
	Updated  bool               `json:"updated"`
	OldFlag  *domain.SafetyFlag `json:"old_flag,omitempty"`
	NewFlag  *domain.SafetyFlag `json:"new_flag,omitempty"`
	Decision Decision           `json:"decision"`
}

// AutoUpdate evaluates the center and writes a new flag row only when the
// decided status differs from the current effective flag, or when no
// effective flag exists. Repeating the call with unchanged readings is a
// no-op.
func (e *Engine) AutoUpdate(ctx context.Context, centerID string) (*AutoUpdateResult, error) {
	decision, err := e.Evaluate(ctx, centerID)
	if err != nil {
		return nil, err
	}

	effective, err := e.store.EffectiveFlag(ctx, centerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if effective != nil && effective.Status == decision.Status {
		return &AutoUpdateResult{Updated: false, OldFlag: effective, Decision: decision}, nil
	}

	expires := e.clock.Now().UTC().Add(e.flagTTL)
	flag := &domain.SafetyFlag{
		CenterID:  centerID,
		Status:    decision.Status,
		Reason:    decision.Reason,
		SetBy:     e.systemID,
		SetByRole: domain.RoleSystemAdmin,
		SetAt:     e.clock.Now().UTC(),
		ExpiresAt: &expires,
	}
	if err := e.store.InsertFlag(ctx, flag); err != nil {
		return nil, err
	}

	log.Info().
		Str("center_id", centerID).
		Str("status", string(flag.Status)).
		Str("reason", flag.Reason).
		Msg("automatic safety flag set")
	if e.metrics != nil {
		e.metrics.FlagChanges.WithLabelValues(string(flag.Status)).Inc()
	}
	if e.pub != nil {
		e.pub.PublishCenter(centerID, hub.EventSafetyFlagUpdated, flag)
	}

	return &AutoUpdateResult{
		Updated:  true,
		OldFlag:  effective,
		NewFlag:  flag,
		Decision: decision,
	}, nil
}

// ManualOverride writes a human-set flag unconditionally. Overrides are
// indistinguishable from automatic rows except by the setter's role.
func (e *Engine) ManualOverride(ctx context.Context, centerID string, status domain.FlagStatus, reason string, expiresAt *time.Time, principal domain.Principal) (*domain.SafetyFlag, error) {
	if !status.Valid() {
		return nil, domain.Validationf("invalid flag status %q", status)
	}
	if _, err := e.store.CenterByID(ctx, centerID); err != nil {
		return nil, err
	}

	flag := &domain.SafetyFlag{
		CenterID:  centerID,
		Status:    status,
		Reason:    reason,
		SetBy:     principal.ID,
		SetByRole: principal.Role,
		SetAt:     e.clock.Now().UTC(),
		ExpiresAt: expiresAt,
	}
	if err := e.store.InsertFlag(ctx, flag); err != nil {
		return nil, err
	}

	log.Info().
		Str("center_id", centerID).
		Str("status", string(status)).
		Str("set_by", principal.ID).
		Msg("manual safety flag set")
	if e.metrics != nil {
		e.metrics.FlagChanges.WithLabelValues(string(status)).Inc()
	}
	if e.pub != nil {
		e.pub.PublishCenter(centerID, hub.EventSafetyFlagUpdated, flag)
	}
	return flag, nil
}

// ModeInfo describes whether a center's flag is currently driven by the
// engine or by a human override.
type ModeInfo struct {
	CenterID    string             `json:"center_id"`
	Mode        string             `json:"mode"`
	CurrentFlag *domain.SafetyFlag `json:"current_flag,omitempty"`
}

// Mode derives the management mode from the latest flag's setter: flags set
// by the system principal mean automatic, anything else means manual. A
// center with no flags defaults to automatic.
func (e *Engine) Mode(ctx context.Context, centerID string) (*ModeInfo, error) {
	if _, err := e.store.CenterByID(ctx, centerID); err != nil {
		return nil, err
	}

	latest, err := e.store.LatestFlag(ctx, centerID)
	if errors.Is(err, domain.ErrNotFound) {
		return &ModeInfo{CenterID: centerID, Mode: "automatic"}, nil
	}
	if err != nil {
		return nil, err
	}

	mode := "manual"
	if latest.SetByRole == domain.RoleSystemAdmin {
		mode = "automatic"
	}
	return &ModeInfo{CenterID: centerID, Mode: mode, CurrentFlag: latest}, nil
}
