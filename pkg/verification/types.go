// Package verification implements the challenge-response protocol binding a
// human secondary factor (PIN, TOTP, secret code) to one specific transaction.
// It is a stateless relay: challenges are requested from the portal per
// attempt, the response digest is derived locally, and nothing is persisted.
package verification

import (
	"fmt"
)

// Method is the secondary-factor type used to verify a transaction.
type Method int

const (
	// MethodPincode verifies with the user's PIN code.
	MethodPincode Method = iota + 1
	// MethodOTP verifies with a time-based one-time code.
	MethodOTP
	// MethodSecretCode verifies with a generic secret code.
	MethodSecretCode
)

// Wire names used by the portal's verificationType field.
const (
	typePincode    = "PINCODE"
	typeOTP        = "OTP"
	typeSecretCode = "SECRET_CODE"
)

func (m Method) String() string {
	switch m {
	case MethodPincode:
		return typePincode
	case MethodOTP:
		return typeOTP
	case MethodSecretCode:
		return typeSecretCode
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses a wire verification type name.
func ParseMethod(s string) (Method, error) {
	switch s {
	case typePincode:
		return MethodPincode, nil
	case typeOTP:
		return MethodOTP, nil
	case typeSecretCode:
		return MethodSecretCode, nil
	default:
		return 0, fmt.Errorf("unknown verification method %q", s)
	}
}
