package alerts

// Severity is the three-tier ladder derived from an urgency score.
type Severity string

// Severity tiers. Lower bounds are inclusive.
const (
	SeverityCritical  Severity = "CRITICO"
	SeverityUrgent    Severity = "URGENTE"
	SeverityAttention Severity = "ATENCION"

	criticalMinScore = 60
	urgentMinScore   = 30
)

// SeverityForScore maps a score to its tier.
func SeverityForScore(score int) Severity {
	switch {
	case score >= criticalMinScore:
		return SeverityCritical
	case score >= urgentMinScore:
		return SeverityUrgent
	default:
		return SeverityAttention
	}
}

// Marker returns the Slack emoji for the tier.
func (s Severity) Marker() string {
	switch s {
	case SeverityCritical:
		return ":red_circle:"
	case SeverityUrgent:
		return ":large_orange_circle:"
	default:
		return ":large_yellow_circle:"
	}
}

// Color returns the hex color used by the email template.
func (s Severity) Color() string {
	switch s {
	case SeverityCritical:
		return "#e74c3c"
	case SeverityUrgent:
		return "#f39c12"
	default:
		return "#f1c40f"
	}
}
