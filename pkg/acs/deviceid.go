package acs

import (
	"fmt"
	"strings"

	"github.com/michaelayoade/ontbridge/pkg/util"
)

// BuildDeviceID composes the wire-format device identifier from the TR-069
// identity triple. ParseDeviceID must reproduce the triple exactly.
func BuildDeviceID(oui, productClass, serial string) string {
	return fmt.Sprintf("%s-%s-%s", oui, productClass, serial)
}

// ParseDeviceID splits a device identifier back into its identity triple.
// The split is on "-" with at most two cuts, so an id must have exactly three
// segments. Product classes or serials that themselves contain "-" cannot be
// represented unambiguously in this format; that is a limitation of the wire
// format itself, not of this parser.
func ParseDeviceID(id string) (oui, productClass, serial string, err error) {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) != 3 {
		return "", "", "", util.NewValidationError(
			fmt.Sprintf("malformed device id %q: want OUI-ProductClass-SerialNumber", id))
	}
	return parts[0], parts[1], parts[2], nil
}
