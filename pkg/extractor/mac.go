package extractor

import "strings"

var macSeparators = strings.NewReplacer(".", "", ":", "", "-", "")

// NormalizeMAC converts a MAC address in any of the dotted, colon or dash
// notations into XX:XX:XX:XX:XX:XX. Values that do not contain exactly 12
// hex digits once separators are removed are returned unchanged.
func NormalizeMAC(mac string) string {
	hex := strings.ToUpper(macSeparators.Replace(mac))
	if len(hex) != 12 || !isHex(hex) {
		return mac
	}

	var sb strings.Builder
	sb.Grow(17)
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(hex[i : i+2])
	}
	return sb.String()
}

// IsCanonicalMAC reports whether mac is already in XX:XX:XX:XX:XX:XX form.
func IsCanonicalMAC(mac string) bool {
	if len(mac) != 17 {
		return false
	}
	for i := 0; i < 17; i++ {
		c := mac[i]
		if i%3 == 2 {
			if c != ':' {
				return false
			}
			continue
		}
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
