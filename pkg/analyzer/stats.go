package analyzer

import (
	"fmt"
	"sort"
	"time"

	"github.com/ccollicutt/iselog/pkg/extractor"
)

// CountDistinct returns the number of distinct values of field across
// records that have it.
func CountDistinct(records []extractor.Record, field extractor.Field) int {
	seen := make(map[string]struct{})
	for i := range records {
		if v, ok := records[i].Get(field); ok {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// AuthSummary counts records per auth_status value.
func AuthSummary(records []extractor.Record) map[string]int {
	summary := make(map[string]int)
	for i := range records {
		if status, ok := records[i].Get(extractor.FieldAuthStatus); ok {
			summary[status]++
		}
	}
	return summary
}

// SuccessRate formats the share of PASSED among all statuses in summary as
// a percentage with two decimals. Returns "0%" when summary is empty.
func SuccessRate(summary map[string]int) string {
	total := 0
	for _, n := range summary {
		total += n
	}
	if total == 0 {
		return "0%"
	}
	passed := summary[extractor.StatusPassed]
	return fmt.Sprintf("%.2f%%", float64(passed)/float64(total)*100)
}

// TopFailures ranks failure reasons of FAILED records by frequency, highest
// first, keeping at most limit entries. Equal counts keep the order in which
// the reasons first appeared.
func TopFailures(records []extractor.Record, limit int) []FailureCount {
	counts := make(map[string]int)
	var order []string

	for i := range records {
		r := &records[i]
		if r.AuthStatus != extractor.StatusFailed || r.FailureReason == "" {
			continue
		}
		if _, ok := counts[r.FailureReason]; !ok {
			order = append(order, r.FailureReason)
		}
		counts[r.FailureReason]++
	}

	ranked := make([]FailureCount, 0, len(order))
	for _, reason := range order {
		ranked = append(ranked, FailureCount{Reason: reason, Count: counts[reason]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Timeline buckets records by the hour of their timestamp. Records whose
// timestamp is absent or not a valid date and time are left out. Only hours
// that occur are present.
func Timeline(records []extractor.Record) map[int]int {
	hours := make(map[int]int)
	for i := range records {
		hour, ok := parseHour(records[i].Timestamp)
		if !ok {
			continue
		}
		hours[hour]++
	}
	return hours
}

func parseHour(ts string) (int, bool) {
	if ts == "" {
		return 0, false
	}
	t, err := time.Parse(extractor.TimestampLayout, ts)
	if err != nil {
		return 0, false
	}
	return t.Hour(), true
}
