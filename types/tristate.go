package types

import "fmt"

// Tristate is a three-valued signal. The zero value is Unknown, which means "not evaluated", as opposed to
// False which is a confirmed negative.
type Tristate uint8

const (
	Unknown Tristate = iota
	False
	True
)

func TristateFromBool(b bool) Tristate {
	if b {
		return True
	}

	return False
}

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	}

	return "unknown"
}

// Bool reports the boolean value, the second return value is false when the signal is Unknown
func (t Tristate) Bool() (value, known bool) {
	return t == True, t != Unknown
}

// MarshalJSON encodes Unknown as null, so that skipped checks are distinguishable from failed ones on the wire
func (t Tristate) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	}

	return []byte("null"), nil
}

func (t *Tristate) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "null":
		*t = Unknown
	case "true":
		*t = True
	case "false":
		*t = False
	default:
		return fmt.Errorf("invalid tri-state value %q", b)
	}

	return nil
}
