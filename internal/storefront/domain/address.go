package domain

import (
	"regexp"
	"strings"
)

// PostalCodeRegex validates Brazilian postal codes (12345-678 or 12345678).
var PostalCodeRegex = regexp.MustCompile(`^\d{5}-?\d{3}$`)

// Address is the delivery address value object. Complement is optional;
// everything else is required.
type Address struct {
	Street     string
	Number     string
	Complement string
	District   string
	City       string
	State      string
	PostalCode string
}

// NewAddress creates a validated delivery address.
func NewAddress(street, number, complement, district, city, state, postalCode string) (Address, error) {
	a := Address{
		Street:     strings.TrimSpace(street),
		Number:     strings.TrimSpace(number),
		Complement: strings.TrimSpace(complement),
		District:   strings.TrimSpace(district),
		City:       strings.TrimSpace(city),
		State:      strings.ToUpper(strings.TrimSpace(state)),
		PostalCode: strings.TrimSpace(postalCode),
	}

	switch {
	case a.Street == "":
		return Address{}, NewAddressFieldRequired("street")
	case a.Number == "":
		return Address{}, NewAddressFieldRequired("number")
	case a.District == "":
		return Address{}, NewAddressFieldRequired("district")
	case a.City == "":
		return Address{}, NewAddressFieldRequired("city")
	case len(a.State) != 2:
		return Address{}, ErrStateInvalid
	case !PostalCodeRegex.MatchString(a.PostalCode):
		return Address{}, ErrPostalCodeInvalid
	}

	return a, nil
}

// Formatted returns a single-line human-readable rendering.
func (a Address) Formatted() string {
	var b strings.Builder
	b.WriteString(a.Street + ", " + a.Number)
	if a.Complement != "" {
		b.WriteString(" - " + a.Complement)
	}
	b.WriteString(", " + a.District + ", " + a.City + " - " + a.State + ", CEP: " + a.PostalCode)
	return b.String()
}
