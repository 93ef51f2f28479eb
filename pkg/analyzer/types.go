// Package analyzer computes authentication statistics and suspicious-activity
// findings over extracted ISE records.
package analyzer

// Detection thresholds.
const (
	// BruteForceThreshold is the number of failed attempts for one username
	// that produces a brute-force finding.
	BruteForceThreshold = 5

	// MACSpoofingThreshold is the number of distinct usernames one MAC
	// address must exceed to produce a MAC-spoofing finding.
	MACSpoofingThreshold = 2

	// TopFailuresLimit caps the failure-reason ranking.
	TopFailuresLimit = 10
)

// FindingType tags a suspicious-activity finding.
type FindingType string

const (
	// FindingBruteForce flags a username with many failed authentications.
	// Subject is the username, Count the number of failures.
	FindingBruteForce FindingType = "brute_force"

	// FindingMACSpoofing flags a MAC address used by several identities.
	// Subject is the MAC address, Count the number of distinct usernames.
	FindingMACSpoofing FindingType = "mac_spoofing"
)

// Label returns a short human-readable name for the finding type.
func (t FindingType) Label() string {
	switch t {
	case FindingBruteForce:
		return "Potential brute force"
	case FindingMACSpoofing:
		return "Possible MAC spoofing"
	default:
		return string(t)
	}
}

// Finding is a single suspicious-activity result.
type Finding struct {
	Type    FindingType `json:"type"`
	Subject string      `json:"subject"`
	Count   int         `json:"count"`
}

// FailureCount is one entry of the failure-reason ranking.
type FailureCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// Result is the aggregate analysis over a record sequence.
// It is not modified after Analyze returns.
type Result struct {
	TotalEvents        int            `json:"total_events"`
	UniqueUsers        int            `json:"unique_users"`
	UniqueDevices      int            `json:"unique_devices"`
	AuthSummary        map[string]int `json:"auth_summary"`
	SuccessRate        string         `json:"success_rate"`
	TopFailures        []FailureCount `json:"top_failures"`
	SuspiciousActivity []Finding      `json:"suspicious_activity"`
	Timeline           map[int]int    `json:"timeline"`
}

// HasFindings returns true if any suspicious activity was detected.
func (r *Result) HasFindings() bool {
	return len(r.SuspiciousActivity) > 0
}

// FindingsOfType returns the findings tagged t, in result order.
func (r *Result) FindingsOfType(t FindingType) []Finding {
	var out []Finding
	for _, f := range r.SuspiciousActivity {
		if f.Type == t {
			out = append(out, f)
		}
	}
	return out
}
