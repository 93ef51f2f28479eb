package analyzer

import (
	"sort"

	"github.com/ccollicutt/iselog/pkg/extractor"
)

// DetectBruteForce reports usernames with at least BruteForceThreshold
// failed authentications, sorted by username.
func DetectBruteForce(records []extractor.Record) []Finding {
	failures := make(map[string]int)
	for i := range records {
		r := &records[i]
		if r.AuthStatus != extractor.StatusFailed || r.Username == "" {
			continue
		}
		failures[r.Username]++
	}

	findings := make([]Finding, 0)
	for user, count := range failures {
		if count >= BruteForceThreshold {
			findings = append(findings, Finding{Type: FindingBruteForce, Subject: user, Count: count})
		}
	}
	sortBySubject(findings)
	return findings
}

// DetectMACSpoofing reports MAC addresses seen with more than
// MACSpoofingThreshold distinct usernames, sorted by MAC.
func DetectMACSpoofing(records []extractor.Record) []Finding {
	users := make(map[string]map[string]struct{})
	for i := range records {
		r := &records[i]
		if r.MACAddress == "" || r.Username == "" {
			continue
		}
		set, ok := users[r.MACAddress]
		if !ok {
			set = make(map[string]struct{})
			users[r.MACAddress] = set
		}
		set[r.Username] = struct{}{}
	}

	findings := make([]Finding, 0)
	for mac, set := range users {
		if len(set) > MACSpoofingThreshold {
			findings = append(findings, Finding{Type: FindingMACSpoofing, Subject: mac, Count: len(set)})
		}
	}
	sortBySubject(findings)
	return findings
}

// SuspiciousActivity returns brute-force findings followed by MAC-spoofing
// findings.
func SuspiciousActivity(records []extractor.Record) []Finding {
	findings := DetectBruteForce(records)
	return append(findings, DetectMACSpoofing(records)...)
}

func sortBySubject(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		return findings[i].Subject < findings[j].Subject
	})
}
