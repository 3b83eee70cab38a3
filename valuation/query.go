package valuation

import (
	"fmt"
	"strings"
)

// Transmission is the gearbox type sent to the pricing provider.
type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)

// ParseTransmission accepts the form values the site sends for gearbox type.
func ParseTransmission(s string) (Transmission, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual":
		return TransmissionManual, nil
	case "automatic", "auto":
		return TransmissionAutomatic, nil
	default:
		return "", fmt.Errorf("unknown transmission %q", s)
	}
}

// Query identifies one valuation request. Built once per request and never
// mutated. UserID of zero means an anonymous ("home page") valuation; a
// non-zero UserID requests the seller flow, which also creates a reservation
// on the provider side.
type Query struct {
	VIN          string
	Mileage      int
	Transmission Transmission
	UserID       int
}

const vinLength = 17

// vinAlphabet excludes I, O and Q, which never appear in a VIN.
const vinAlphabet = "ABCDEFGHJKLMNPRSTUVWXYZ0123456789"

// NewQuery validates and constructs a Query.
func NewQuery(vin string, mileage int, transmission Transmission, userID int) (Query, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if len(vin) != vinLength {
		return Query{}, fmt.Errorf("vin must be %d characters, got %d", vinLength, len(vin))
	}
	for _, r := range vin {
		if !strings.ContainsRune(vinAlphabet, r) {
			return Query{}, fmt.Errorf("vin contains invalid character %q", r)
		}
	}
	if mileage < 0 {
		return Query{}, fmt.Errorf("mileage must not be negative, got %d", mileage)
	}
	if transmission != TransmissionManual && transmission != TransmissionAutomatic {
		return Query{}, fmt.Errorf("unknown transmission %q", transmission)
	}
	return Query{VIN: vin, Mileage: mileage, Transmission: transmission, UserID: userID}, nil
}

// Anonymous reports whether this is a home-page valuation with no seller
// identity attached.
func (q Query) Anonymous() bool {
	return q.UserID == 0
}
