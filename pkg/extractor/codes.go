package extractor

// UnknownDescription is reported for message codes missing from the table.
const UnknownDescription = "Unknown"

var messageCodes = map[string]string{
	"5200":  "Authentication succeeded",
	"5400":  "Authentication failed",
	"5411":  "Invalid credentials",
	"5434":  "Endpoint not found",
	"5440":  "Endpoint abandoned EAP session",
	"11036": "Authorization profile matched",
	"11051": "Guest authentication failed",
	"86013": "EAP timeout",
	"86014": "EAP failure",
}

// Describe returns the human-readable meaning of an ISE message code.
func Describe(code string) string {
	if desc, ok := messageCodes[code]; ok {
		return desc
	}
	return UnknownDescription
}
