package weather

import (
	"strconv"

	"github.com/pkg/errors"
)

// Units selects the measurement system requested from OpenWeatherMap. The API
// returns values already converted, so no arithmetic happens client side.
type Units int

const (
	Metric Units = iota
	Imperial
)

// ParseUnits maps a units token onto Units. Only exact matches are accepted.
func ParseUnits(token string) (Units, error) {
	switch token {
	case "metric":
		return Metric, nil
	case "imperial":
		return Imperial, nil
	}
	return Metric, errors.Errorf("unknown unit system %q (want metric or imperial)", token)
}

// Token is the value sent as the units query parameter.
func (u Units) Token() string {
	if u == Imperial {
		return "imperial"
	}
	return "metric"
}

func (u Units) Suffix() string {
	if u == Imperial {
		return "°F"
	}
	return "°C"
}

// Display attaches the unit suffix to v without converting it.
func (u Units) Display(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32) + u.Suffix()
}

func (u Units) String() string {
	return u.Token()
}

// Set implements flag.Value so bad tokens are rejected while flags are parsed.
func (u *Units) Set(token string) error {
	parsed, err := ParseUnits(token)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
