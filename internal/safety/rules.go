package safety

import "github.com/mounirchebbi/beach-safety-app/internal/domain"

// Severity is the tier a threshold rule fires at. Tiers form a total order;
// the highest triggered tier decides the flag status.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "none"
	}
}

// FlagStatus maps a severity tier to the flag it produces.
func (s Severity) FlagStatus() domain.FlagStatus {
	switch s {
	case SeverityCritical:
		return domain.FlagBlack
	case SeverityHigh:
		return domain.FlagRed
	case SeverityMedium:
		return domain.FlagYellow
	default:
		return domain.FlagGreen
	}
}

type rule struct {
	Name     string
	Severity Severity
	Reason   string
	Match    func(r domain.WeatherReading) bool
}

// Rules are evaluated in order; within the winning tier the first match
// supplies the reason text.
var rules = []rule{
	{
		Name:     "poor_visibility",
		Severity: SeverityCritical,
		Reason:   "poor visibility",
		Match:    func(r domain.WeatherReading) bool { return r.Visibility < 10 },
	},
	{
		Name:     "dangerous_waves",
		Severity: SeverityHigh,
		Reason:   "dangerous wave conditions",
		Match:    func(r domain.WeatherReading) bool { return r.WaveHeight > 3 },
	},
	{
		Name:     "strong_winds",
		Severity: SeverityHigh,
		Reason:   "strong winds",
		Match:    func(r domain.WeatherReading) bool { return r.WindSpeed > 25 },
	},
	{
		Name:     "heavy_rainfall",
		Severity: SeverityMedium,
		Reason:   "heavy rainfall",
		Match:    func(r domain.WeatherReading) bool { return r.Precipitation > 10 },
	},
	{
		Name:     "high_temperature",
		Severity: SeverityMedium,
		Reason:   "high temperature",
		Match:    func(r domain.WeatherReading) bool { return r.Temperature > 35 },
	},
}

// TriggeredRule records one rule that fired, kept for diagnostics.
type TriggeredRule struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Reason   string `json:"reason"`
}

// Decision is the outcome of evaluating the latest reading for a center.
type Decision struct {
	Status    domain.FlagStatus `json:"status"`
	Reason    string            `json:"reason"`
	Triggered []TriggeredRule   `json:"triggered_rules"`
}

const safeConditionsReason = "conditions within safe limits"

// Decide classifies a single reading. Pure function of the reading; no
// history smoothing.
func Decide(r domain.WeatherReading) Decision {
	var (
		top       Severity
		reason    = safeConditionsReason
		triggered []TriggeredRule
	)

	for _, rl := range rules {
		if !rl.Match(r) {
			continue
		}
		triggered = append(triggered, TriggeredRule{
			Name:     rl.Name,
			Severity: rl.Severity.String(),
			Reason:   rl.Reason,
		})
		if rl.Severity > top {
			top = rl.Severity
			reason = rl.Reason
		}
	}

	return Decision{
		Status:    top.FlagStatus(),
		Reason:    reason,
		Triggered: triggered,
	}
}
