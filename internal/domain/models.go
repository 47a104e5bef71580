package domain

import "time"

// FlagStatus is a beach safety classification. Statuses form a total order
// by severity: green < yellow < red < black.
type FlagStatus string

const (
	FlagGreen  FlagStatus = "green"
	FlagYellow FlagStatus = "yellow"
	FlagRed    FlagStatus = "red"
	FlagBlack  FlagStatus = "black"
)

var flagRank = map[FlagStatus]int{
	FlagGreen:  0,
	FlagYellow: 1,
	FlagRed:    2,
	FlagBlack:  3,
}

// Rank returns the severity position of the status, or -1 for an unknown value.
func (s FlagStatus) Rank() int {
	r, ok := flagRank[s]
	if !ok {
		return -1
	}
	return r
}

// Valid reports whether s is one of the four known flag statuses.
func (s FlagStatus) Valid() bool { return s.Rank() >= 0 }

type AlertStatus string

const (
	AlertActive     AlertStatus = "active"
	AlertResponding AlertStatus = "responding"
	AlertResolved   AlertStatus = "resolved"
	AlertClosed     AlertStatus = "closed"
)

func (s AlertStatus) Valid() bool {
	switch s {
	case AlertActive, AlertResponding, AlertResolved, AlertClosed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s AlertStatus) Terminal() bool { return s == AlertResolved || s == AlertClosed }

type EscalationStatus string

const (
	EscalationPending      EscalationStatus = "pending"
	EscalationAcknowledged EscalationStatus = "acknowledged"
	EscalationResolved     EscalationStatus = "resolved"
)

type SupportStatus string

const (
	SupportPending      SupportStatus = "pending"
	SupportAcknowledged SupportStatus = "acknowledged"
	SupportResolved     SupportStatus = "resolved"
	SupportDeclined     SupportStatus = "declined"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Role string

const (
	RoleSystemAdmin Role = "system_admin"
	RoleCenterAdmin Role = "center_admin"
	RoleLifeguard   Role = "lifeguard"
)

// Principal is an authenticated caller, produced by the auth collaborator.
type Principal struct {
	ID       string
	Role     Role
	CenterID string
}

// Center is a physical safety-operations site. Centers are managed by
// administrative CRUD and are read-only to this engine.
type Center struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Latitude  float64   `db:"lat" json:"latitude"`
	Longitude float64   `db:"lng" json:"longitude"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WeatherReading is one environmental observation for a center. Readings are
// append-only; rows older than the retention window are pruned on insert.
type WeatherReading struct {
	ID            string    `db:"id" json:"id"`
	CenterID      string    `db:"center_id" json:"center_id"`
	Temperature   float64   `db:"temperature" json:"temperature"`
	Humidity      float64   `db:"humidity" json:"humidity"`
	Pressure      float64   `db:"pressure" json:"pressure"`
	WindSpeed     float64   `db:"wind_speed" json:"wind_speed"`
	WindDirection float64   `db:"wind_direction" json:"wind_direction"`
	Condition     string    `db:"weather_condition" json:"weather_condition"`
	Visibility    float64   `db:"visibility" json:"visibility"`
	Precipitation float64   `db:"precipitation" json:"precipitation"`
	WaveHeight    float64   `db:"wave_height" json:"wave_height"`
	CurrentSpeed  float64   `db:"current_speed" json:"current_speed"`
	RecordedAt    time.Time `db:"recorded_at" json:"recorded_at"`
}

// ForecastDay is one day of a center's weather outlook, aggregated from the
// provider's 3-hour samples. Rows are upserted per (center, date).
type ForecastDay struct {
	ID                       string    `db:"id" json:"id"`
	CenterID                 string    `db:"center_id" json:"center_id"`
	ForecastDate             time.Time `db:"forecast_date" json:"forecast_date"`
	TemperatureMin           float64   `db:"temperature_min" json:"temperature_min"`
	TemperatureMax           float64   `db:"temperature_max" json:"temperature_max"`
	Condition                string    `db:"weather_condition" json:"weather_condition"`
	WindSpeed                float64   `db:"wind_speed" json:"wind_speed"`
	WindDirection            float64   `db:"wind_direction" json:"wind_direction"`
	PrecipitationProbability float64   `db:"precipitation_probability" json:"precipitation_probability"`
	Humidity                 float64   `db:"humidity" json:"humidity"`
	CreatedAt                time.Time `db:"created_at" json:"created_at"`
}

// SafetyFlag is one row of a center's flag history. Flags are immutable once
// written; the effective flag is derived as the most recent non-expired row.
type SafetyFlag struct {
	ID        string     `db:"id" json:"id"`
	CenterID  string     `db:"center_id" json:"center_id"`
	Status    FlagStatus `db:"flag_status" json:"flag_status"`
	Reason    string     `db:"reason" json:"reason"`
	SetBy     string     `db:"set_by" json:"set_by"`
	SetByRole Role       `db:"set_by_role" json:"set_by_role"`
	SetAt     time.Time  `db:"set_at" json:"set_at"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
}

type EmergencyAlert struct {
	ID                  string      `db:"id" json:"id"`
	CenterID            string      `db:"center_id" json:"center_id"`
	AlertType           string      `db:"alert_type" json:"alert_type"`
	Severity            Priority    `db:"severity" json:"severity"`
	Latitude            float64     `db:"lat" json:"latitude"`
	Longitude           float64     `db:"lng" json:"longitude"`
	Description         string      `db:"description" json:"description"`
	Status              AlertStatus `db:"status" json:"status"`
	AssignedLifeguardID *string     `db:"assigned_lifeguard_id" json:"assigned_lifeguard_id,omitempty"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
}

// Escalation is a lifeguard-initiated request for additional support tied to
// an alert in the lifeguard's own center.
type Escalation struct {
	ID                 string           `db:"id" json:"id"`
	AlertID            string           `db:"alert_id" json:"alert_id"`
	LifeguardID        string           `db:"lifeguard_id" json:"lifeguard_id"`
	EscalationType     string           `db:"escalation_type" json:"escalation_type"`
	Priority           Priority         `db:"priority" json:"priority"`
	Description        string           `db:"description" json:"description"`
	RequestedResources string           `db:"requested_resources" json:"requested_resources,omitempty"`
	Status             EscalationStatus `db:"status" json:"status"`
	AcknowledgedBy     *string          `db:"acknowledged_by" json:"acknowledged_by,omitempty"`
	AcknowledgedAt     *time.Time       `db:"acknowledged_at" json:"acknowledged_at,omitempty"`
	ResolvedAt         *time.Time       `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
}

type SupportRequest struct {
	ID                 string        `db:"id" json:"id"`
	RequestingCenterID string        `db:"requesting_center_id" json:"requesting_center_id"`
	RequestingAdminID  string        `db:"requesting_admin_id" json:"requesting_admin_id"`
	TargetCenterID     string        `db:"target_center_id" json:"target_center_id"`
	EscalationID       *string       `db:"escalation_id" json:"escalation_id,omitempty"`
	RequestType        string        `db:"request_type" json:"request_type"`
	Priority           Priority      `db:"priority" json:"priority"`
	Title              string        `db:"title" json:"title"`
	Description        string        `db:"description" json:"description"`
	RequestedResources string        `db:"requested_resources" json:"requested_resources,omitempty"`
	Status             SupportStatus `db:"status" json:"status"`
	DeclinedReason     *string       `db:"declined_reason" json:"declined_reason,omitempty"`
	AcknowledgedBy     *string       `db:"acknowledged_by" json:"acknowledged_by,omitempty"`
	AcknowledgedAt     *time.Time    `db:"acknowledged_at" json:"acknowledged_at,omitempty"`
	ResolvedAt         *time.Time    `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
}

// Lifeguard links a staff user to the center they serve. Directory data,
// maintained externally.
type Lifeguard struct {
	ID       string `db:"id" json:"id"`
	UserID   string `db:"user_id" json:"user_id"`
	CenterID string `db:"center_id" json:"center_id"`
}

var validEscalationTypes = map[string]bool{
	"backup_request":     true,
	"medical_support":    true,
	"equipment_request":  true,
	"guidance_request":   true,
	"evacuation_support": true,
}

var validSupportTypes = map[string]bool{
	"personnel_support":    true,
	"equipment_support":    true,
	"medical_support":      true,
	"evacuation_support":   true,
	"coordination_support": true,
}

func ValidEscalationType(t string) bool { return validEscalationTypes[t] }
func ValidSupportType(t string) bool    { return validSupportTypes[t] }
