package validation

import "strings"

// RedactAddress produces a partially hidden form of an address safe to echo
// back in responses and notifications, e.g. "joh...@exa...".
func RedactAddress(medium, address string) string {
	if medium == "email" {
		if at := strings.LastIndex(address, "@"); at > 0 {
			return redact(address[:at]) + "@" + redact(address[at+1:])
		}
	}
	return redact(address)
}

func redact(s string) string {
	if len(s) > 5 {
		return s[:3] + "..."
	}
	if len(s) == 0 {
		return s
	}
	return s[:1] + "..."
}
