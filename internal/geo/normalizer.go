package geo

import (
	"regexp"
	"strings"
)

// NormalizedAddress holds the components extracted from a free-form
// German address. Any field may be empty; normalization never fails.
type NormalizedAddress struct {
	Street      string `json:"street,omitempty"`
	HouseNumber string `json:"house_number,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	City        string `json:"city,omitempty"`
}

var (
	postalCodeRe  = regexp.MustCompile(`\b(\d{5})\b`)
	houseNumberRe = regexp.MustCompile(`^(.*?)\s+(\d+\s?[a-zA-Z]?)$`)
)

// NormalizeAddress parses a free-form German address like
// "Petuelring 130, 80809 München" into its components.
func NormalizeAddress(address string) NormalizedAddress {
	var n NormalizedAddress

	addr := strings.TrimSpace(address)
	if addr == "" {
		return n
	}

	loc := postalCodeRe.FindStringIndex(addr)
	if loc != nil {
		n.PostalCode = addr[loc[0]:loc[1]]

		// City follows the postal code up to the next comma.
		rest := strings.TrimSpace(addr[loc[1]:])
		if i := strings.Index(rest, ","); i >= 0 {
			rest = rest[:i]
		}
		n.City = strings.TrimSpace(rest)
	} else {
		// No postal code: the last comma-separated segment is the city.
		parts := strings.Split(addr, ",")
		if len(parts) > 1 {
			n.City = strings.TrimSpace(parts[len(parts)-1])
		} else if !strings.ContainsAny(addr, "0123456789") {
			// Bare city name, no comma and no house number.
			n.City = addr
			return n
		}
	}

	// Street portion: everything before the first comma, or before the
	// postal code when there is no comma.
	lead := addr
	if i := strings.Index(addr, ","); i >= 0 {
		lead = addr[:i]
	} else if loc != nil {
		lead = addr[:loc[0]]
	}
	lead = strings.TrimSpace(lead)

	if m := houseNumberRe.FindStringSubmatch(lead); m != nil {
		n.Street = strings.TrimSpace(m[1])
		n.HouseNumber = strings.ReplaceAll(m[2], " ", "")
	} else if lead != "" && lead != n.PostalCode {
		n.Street = lead
	}

	return n
}
