// Package extractor turns raw ISE authentication log lines into typed records.
package extractor

import "regexp"

// Field names one of the values extracted from a log line.
type Field string

const (
	FieldTimestamp       Field = "timestamp"
	FieldMessageCode     Field = "message_code"
	FieldUsername        Field = "username"
	FieldMACAddress      Field = "mac_address"
	FieldFramedIP        Field = "ip_address"
	FieldNASIP           Field = "nas_ip"
	FieldAuthStatus      Field = "auth_status"
	FieldFailureReason   Field = "failure_reason"
	FieldEndpointProfile Field = "endpoint_profile"
	FieldDeviceType      Field = "device_type"
	FieldAuthProtocol    Field = "auth_protocol"
)

// Auth status values as they appear in the log.
const (
	StatusPassed = "PASSED"
	StatusFailed = "FAILED"
)

// TimestampLayout is the Go layout of the timestamp field.
const TimestampLayout = "2006-01-02 15:04:05"

// FieldSpec pairs a field with the pattern that extracts it.
// The first capture group of Pattern is the field value.
type FieldSpec struct {
	Field   Field
	Pattern *regexp.Regexp
}

// allFields is the canonical field order used for iteration and CSV columns.
var allFields = []Field{
	FieldTimestamp,
	FieldMessageCode,
	FieldUsername,
	FieldMACAddress,
	FieldFramedIP,
	FieldNASIP,
	FieldAuthStatus,
	FieldFailureReason,
	FieldEndpointProfile,
	FieldDeviceType,
	FieldAuthProtocol,
}

// AllFields returns the eleven extracted fields in canonical order.
func AllFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// DefaultFieldSpecs returns the built-in extraction rules.
//
// The message code must stand alone as a 4 or 5 digit token; digits that are
// part of a date, time, IP address or longer number are not codes.
func DefaultFieldSpecs() []FieldSpec {
	return []FieldSpec{
		{FieldTimestamp, regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`)},
		{FieldMessageCode, regexp.MustCompile(`(?:^|[^\d:.\-])(\d{4,5})(?:[^\d:.\-]|$)`)},
		{FieldUsername, regexp.MustCompile(`User-Name=([^,\s]+)`)},
		{FieldMACAddress, regexp.MustCompile(`Calling-Station-ID=([0-9A-Fa-f:.\-]+)`)},
		{FieldFramedIP, regexp.MustCompile(`Framed-IP-Address=(\d+\.\d+\.\d+\.\d+)`)},
		{FieldNASIP, regexp.MustCompile(`NAS-IP-Address=(\d+\.\d+\.\d+\.\d+)`)},
		{FieldAuthStatus, regexp.MustCompile(`(PASSED|FAILED)`)},
		{FieldFailureReason, regexp.MustCompile(`FailureReason=([^,]+)`)},
		{FieldEndpointProfile, regexp.MustCompile(`EndpointProfile=([^,]+)`)},
		{FieldDeviceType, regexp.MustCompile(`Device Type=([^,]+)`)},
		{FieldAuthProtocol, regexp.MustCompile(`Protocol=([^,\s]+)`)},
	}
}
