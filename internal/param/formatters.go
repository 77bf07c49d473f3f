// SPDX-License-Identifier: MIT
package param

import (
	"fmt"
	"strconv"
	"strings"

	"sidegain/internal/dsp"
)

// Formatters and parsers shared by the stock parameters. Gain parameters
// store linear voltage gain but display decibels, so these do the conversion
// at the boundary.

// GainToDbFormatter renders a linear gain value as decibels with the given
// number of decimal places. Values at the silence floor render as "-inf dB".
func GainToDbFormatter(decimals int) func(float64) string {
	return func(gain float64) string {
		db := dsp.GainToDb(gain)
		if db <= dsp.MinusInfinityDB {
			return "-inf dB"
		}
		return fmt.Sprintf("%.*f dB", decimals, db)
	}
}

// GainToDbParser converts a decibel display string back into linear gain.
// Accepts a trailing "dB" unit and "-inf" for silence.
func GainToDbParser() func(string) (float64, error) {
	return func(s string) (float64, error) {
		trimmed := strings.TrimSpace(s)
		trimmed = strings.TrimSuffix(trimmed, "dB")
		trimmed = strings.TrimSuffix(trimmed, "db")
		trimmed = strings.TrimSpace(trimmed)

		if trimmed == "-inf" || trimmed == "-∞" {
			return 0, nil
		}

		db, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q as decibels: %w", s, err)
		}
		return dsp.DbToGain(db), nil
	}
}

// IntFormatter renders an integer-valued parameter without decimals.
func IntFormatter() func(float64) string {
	return func(v float64) string {
		return strconv.Itoa(int(v))
	}
}

// IntParser parses an integer display string.
func IntParser() func(string) (float64, error) {
	return func(s string) (float64, error) {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("parse %q as integer: %w", s, err)
		}
		return float64(n), nil
	}
}
