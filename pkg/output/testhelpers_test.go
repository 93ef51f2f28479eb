package output

import (
	"time"

	"github.com/ccollicutt/iselog/pkg/analyzer"
)

func createTestReport() *Report {
	baseTime := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	return &Report{
		Analysis: &analyzer.Result{
			TotalEvents:   12345,
			UniqueUsers:   3,
			UniqueDevices: 2,
			AuthSummary:   map[string]int{"PASSED": 3, "FAILED": 1},
			SuccessRate:   "75.00%",
			TopFailures: []analyzer.FailureCount{
				{Reason: "24408 User authentication against Active Directory failed", Count: 6},
				{Reason: "22056 Subject not found", Count: 2},
			},
			SuspiciousActivity: []analyzer.Finding{
				{Type: analyzer.FindingBruteForce, Subject: "alice", Count: 6},
				{Type: analyzer.FindingMACSpoofing, Subject: "AA:BB:CC:DD:EE:FF", Count: 3},
			},
			Timeline: map[int]int{9: 2, 13: 4},
		},
		Metadata: Metadata{
			RunID:        "run-1",
			Sources:      []string{"ise.log"},
			LinesRead:    20000,
			LinesSkipped: 7655,
			AnalyzedAt:   baseTime,
			Duration:     100 * time.Millisecond,
		},
	}
}

func createEmptyReport() *Report {
	return &Report{
		Analysis: &analyzer.Result{
			AuthSummary:        map[string]int{},
			SuccessRate:        "0%",
			TopFailures:        []analyzer.FailureCount{},
			SuspiciousActivity: []analyzer.Finding{},
			Timeline:           map[int]int{},
		},
	}
}
