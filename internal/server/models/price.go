package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxPrice is the largest value a NUMERIC(5,2) column holds, in cents.
const MaxPrice Price = 99999

var ErrInvalidPrice = errors.New("invalid price")

// Price is a fixed-point amount with two fractional digits, kept in cents.
type Price int64

// ParsePrice parses a decimal string such as "5", "5.5" or "12.34".
// More than two fractional digits are rejected.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPrice
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, ErrInvalidPrice
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("%w: more than 2 decimal places", ErrInvalidPrice)
	}
	if whole == "" {
		whole = "0"
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, ErrInvalidPrice
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	if units > (math.MaxInt64-99)/100 {
		return 0, fmt.Errorf("%w: out of range", ErrInvalidPrice)
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)

	p := Price(units*100 + cents)
	if neg {
		p = -p
	}
	return p, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the price with exactly two fractional digits.
func (p Price) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON writes the price as a decimal string, e.g. "5.00".
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts a decimal string or a JSON number.
func (p *Price) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return ErrInvalidPrice
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = s
	}

	parsed, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value stores the price as a NUMERIC literal.
func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan reads NUMERIC values delivered as text, bytes or numbers.
func (p *Price) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return p.scanString(v)
	case []byte:
		return p.scanString(string(v))
	case int64:
		*p = Price(v * 100)
		return nil
	case float64:
		return p.scanString(strconv.FormatFloat(v, 'f', 2, 64))
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidPrice, src)
	}
}

func (p *Price) scanString(s string) error {
	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
