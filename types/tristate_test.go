package types

import (
	"encoding/json"
	"testing"
)

func TestTristateZeroValueIsUnknown(t *testing.T) {
	var ts Tristate

	if _, known := ts.Bool(); known {
		t.Error("Expected the zero value to be Unknown")
	}
}

func TestTristateJSON(t *testing.T) {
	tests := []struct {
		value Tristate
		want  string
	}{
		{value: True, want: "true"},
		{value: False, want: "false"},
		{value: Unknown, want: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			b, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatal(err)
			}

			if string(b) != tt.want {
				t.Errorf("Marshal(%s) = %s, want %s", tt.value, b, tt.want)
			}

			var back Tristate
			if err := json.Unmarshal(b, &back); err != nil {
				t.Fatal(err)
			}

			if back != tt.value {
				t.Errorf("Round trip changed the value from %s to %s", tt.value, back)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	if StatusValid.String() != "valid" || StatusDoubtful.String() != "doubtful" || StatusInvalid.String() != "invalid" {
		t.Errorf("Unexpected status string forms %q %q %q", StatusValid, StatusDoubtful, StatusInvalid)
	}
}

func TestStatusJSON(t *testing.T) {
	for _, s := range []Status{StatusInvalid, StatusValid, StatusDoubtful} {
		b, err := json.Marshal(s)
		if err != nil {
			t.Fatal(err)
		}

		var back Status
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatal(err)
		}

		if back != s {
			t.Errorf("Round trip changed the status from %s to %s", s, back)
		}
	}
}
