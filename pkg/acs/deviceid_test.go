package acs

import (
	"errors"
	"testing"

	"github.com/michaelayoade/ontbridge/pkg/util"
)

func TestDeviceIDRoundTrip(t *testing.T) {
	tests := []struct {
		oui, productClass, serial string
	}{
		{"202BC1", "HG8245H", "48575443ABCDEF01"},
		{"9CA2F4", "F670L", "ZTEGC8000001"},
		{"000000", "X", "1"},
	}

	for _, tt := range tests {
		id := BuildDeviceID(tt.oui, tt.productClass, tt.serial)
		oui, pc, serial, err := ParseDeviceID(id)
		if err != nil {
			t.Fatalf("ParseDeviceID(%q) unexpected error: %v", id, err)
		}
		if oui != tt.oui || pc != tt.productClass || serial != tt.serial {
			t.Errorf("ParseDeviceID(%q) = (%q,%q,%q), want (%q,%q,%q)",
				id, oui, pc, serial, tt.oui, tt.productClass, tt.serial)
		}
	}
}

func TestParseDeviceIDMalformed(t *testing.T) {
	for _, id := range []string{"bad-id", "noseparators", ""} {
		_, _, _, err := ParseDeviceID(id)
		if err == nil {
			t.Errorf("ParseDeviceID(%q) expected error", id)
			continue
		}
		if !errors.Is(err, util.ErrValidationFailed) {
			t.Errorf("ParseDeviceID(%q) error = %v, want validation error", id, err)
		}
	}
}

func TestParseDeviceIDSerialWithDash(t *testing.T) {
	// Extra dashes end up in the serial segment: the wire format cannot
	// distinguish them, it only guarantees at most two cuts.
	oui, pc, serial, err := ParseDeviceID("202BC1-HG8245H-SER-IAL-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oui != "202BC1" || pc != "HG8245H" || serial != "SER-IAL-01" {
		t.Errorf("got (%q,%q,%q)", oui, pc, serial)
	}
}
