package model

import (
	"fmt"
	"math"
	"strconv"
)

// Cents is a money amount in minor currency units.
// All prices travel through the client as integer cents; the backend's
// decimal strings and JSON numbers are converted at the wire boundary.
type Cents int64

// String renders the amount the way the storefront displays prices.
// Examples: 1050 → "$10.50", 0 → "$0.00".
func (c Cents) String() string {
	return fmt.Sprintf("$%.2f", float64(c)/100)
}

// ParseCents converts a decimal string in major units to Cents.
// Order endpoints return amounts as strings (e.g. unit_price "99.00").
// Handles edge cases: empty strings, missing decimals, large values.
// Examples: "99.00" → 9900, "1234.56" → 123456, "" → 0
func ParseCents(s string) Cents {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	// math.Round handles both positive and negative numbers correctly
	return Cents(math.Round(f * 100))
}

// CentsFromFloat converts a JSON number in major units to Cents.
// Product endpoints return price fields as numbers (e.g. 99.5 = $99.50).
func CentsFromFloat(f float64) Cents {
	return Cents(math.Round(f * 100))
}

// Float returns the amount in major units for wire payloads that
// expect decimal numbers.
func (c Cents) Float() float64 {
	return float64(c) / 100
}

// DecimalString returns the amount as a two-decimal string for wire
// payloads that expect decimal strings (e.g. product create forms).
func (c Cents) DecimalString() string {
	return strconv.FormatFloat(float64(c)/100, 'f', 2, 64)
}
