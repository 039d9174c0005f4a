package presence

import "strings"

// ScanCode is a decoded PREFIX:registrationNumber:lastName:firstName payload.
type ScanCode struct {
	Prefix             string
	RegistrationNumber string
	LastName           string
	FirstName          string
}

// DisplayName is the name snapshot stored on events: "Last First".
func (c ScanCode) DisplayName() string {
	return c.LastName + " " + c.FirstName
}

// ParseCode splits raw on ':'. Trailing empty fields are dropped before
// counting; at least three fields must remain. The first name is optional
// and anything past it is ignored.
func ParseCode(raw string) (ScanCode, error) {
	parts := strings.Split(raw, ":")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) < 3 {
		return ScanCode{}, ErrMalformedCode
	}
	code := ScanCode{
		Prefix:             parts[0],
		RegistrationNumber: parts[1],
		LastName:           parts[2],
	}
	if len(parts) > 3 {
		code.FirstName = parts[3]
	}
	return code, nil
}
