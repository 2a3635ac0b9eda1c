package types

import "fmt"

// Status is the final verdict for an address. Invalid is the zero value, an address only upgrades to Valid or
// Doubtful once the format gate passed.
type Status uint8

const (
	StatusInvalid Status = iota
	StatusValid
	StatusDoubtful
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusDoubtful:
		return "doubtful"
	}

	return "invalid"
}

// ParseStatus is the inverse of String. Unrecognised input parses as StatusInvalid.
func ParseStatus(v string) Status {
	switch v {
	case "valid":
		return StatusValid
	case "doubtful":
		return StatusDoubtful
	}

	return StatusInvalid
}

func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Status) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"valid"`:
		*s = StatusValid
	case `"doubtful"`:
		*s = StatusDoubtful
	case `"invalid"`:
		*s = StatusInvalid
	default:
		return fmt.Errorf("invalid status value %q", b)
	}

	return nil
}
