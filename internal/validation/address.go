// Package validation holds the pure syntax checks applied to third-party
// identifier addresses before anything is persisted.
package validation

import (
	"net/mail"
	"strings"

	"github.com/perchard/trustbind/internal/models"
	appErrors "github.com/perchard/trustbind/pkg/errors"
)

// ValidateAddress checks address against the syntax rules of medium and
// returns the normalised form to persist. Email addresses are lowercased;
// compound forms carrying a display name ("Name <addr>") and strings with
// more than one @-delimited address are rejected. Callers must not perform
// any side effect when an error is returned.
func ValidateAddress(medium, address string) (string, error) {
	switch medium {
	case models.MediumEmail:
		return validateEmail(address)
	case models.MediumMSISDN:
		return validateMSISDN(address)
	default:
		return "", appErrors.ErrInvalidAddress.WithMessage("Unsupported medium")
	}
}

func validateEmail(address string) (string, error) {
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return "", appErrors.ErrInvalidEmail
	}

	// ParseAddress accepts "Naughty Nigel <perfectly.valid@mail.address>";
	// only the bare address form is allowed here.
	if parsed.Name != "" || parsed.Address != address {
		return "", appErrors.ErrInvalidEmail
	}

	return strings.ToLower(address), nil
}

// validateMSISDN accepts the national-significant digits of an E.164 number,
// without a leading plus.
func validateMSISDN(address string) (string, error) {
	if len(address) < 3 || len(address) > 15 {
		return "", appErrors.ErrInvalidAddress
	}
	for _, r := range address {
		if r < '0' || r > '9' {
			return "", appErrors.ErrInvalidAddress
		}
	}
	return address, nil
}
