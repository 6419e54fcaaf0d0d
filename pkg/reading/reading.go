package reading

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// NoData replaces a value that could not be queried or read.
	NoData = "NODATA"

	UnitVolts = "V"
	UnitAmps  = "A"

	// fieldWidth is the right-justified width of the value text.
	fieldWidth = 7
)

var errNoReadingYet = errors.New("reading: no reading yet")

// Reading is the most recent voltage/current pair as reported by the
// instrument. Values are passed through as text; they are never parsed.
type Reading struct {
	Timestamp time.Time
	Volts     string
	Amps      string
	Err       error // Set when any part of the cycle failed
}

// Failed reports whether the cycle that produced r hit an I/O error.
func (r Reading) Failed() bool {
	return r.Err != nil
}

// Lines returns the formatted voltage and current display lines.
func (r Reading) Lines() (string, string) {
	failed := r.Failed()
	return FormatLine(r.Volts, UnitVolts, failed), FormatLine(r.Amps, UnitAmps, failed)
}

// Combined returns both values on one line, e.g. "12.345V 0.512A".
func (r Reading) Combined() string {
	volts, amps := r.Lines()
	return strings.TrimSpace(volts) + " " + strings.TrimSpace(amps)
}

// FormatLine right-justifies value in a 7 character field and appends unit.
// The unit is dropped when failed is set, so "NODATA" is shown bare.
func FormatLine(value, unit string, failed bool) string {
	if failed {
		unit = ""
	}
	return fmt.Sprintf("%*s%s", fieldWidth, value, unit)
}

// Placeholder is the reading shown before the first cycle completes.
func Placeholder() Reading {
	return Reading{Volts: NoData, Amps: NoData, Err: errNoReadingYet}
}
