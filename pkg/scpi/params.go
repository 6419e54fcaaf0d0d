package scpi

import (
	"fmt"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

// DefaultParams is used when no serial parameter string is given.
const DefaultParams = "9600:8n1"

var supportedBaudRates = map[int]bool{
	115200: true,
	57600:  true,
	38400:  true,
	19200:  true,
	9600:   true,
	4800:   true,
	2400:   true,
}

// ParseParams parses a "<baud>:<databits><parity><stopbits>" string such as
// "115200:8n1" or "2400:7o1" into a serial mode. Parity is one of o, e, n;
// data bits 7 or 8; stop bits 1 or 2. An empty string yields 9600:8n1.
func ParseParams(s string) (*serial.Mode, error) {
	if s == "" {
		s = DefaultParams
	}

	baudStr, frame, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q: expected <baud>:<bits><parity><stop>", ErrInvalidParams, s)
	}

	baud, err := strconv.Atoi(baudStr)
	if err != nil || !supportedBaudRates[baud] {
		return nil, fmt.Errorf("%w: invalid serial speed %q", ErrInvalidParams, baudStr)
	}

	// Accept both "8n1" and "8:n:1"
	frame = strings.ReplaceAll(strings.ToLower(frame), ":", "")
	if len(frame) != 3 {
		return nil, fmt.Errorf("%w: %q: expected <bits><parity><stop>, e.g. 8n1", ErrInvalidParams, s)
	}

	mode := &serial.Mode{BaudRate: baud}

	switch frame[0] {
	case '7':
		mode.DataBits = 7
	case '8':
		mode.DataBits = 8
	default:
		return nil, fmt.Errorf("%w: invalid serial byte size '%c'", ErrInvalidParams, frame[0])
	}

	switch frame[1] {
	case 'o':
		mode.Parity = serial.OddParity
	case 'e':
		mode.Parity = serial.EvenParity
	case 'n':
		mode.Parity = serial.NoParity
	default:
		return nil, fmt.Errorf("%w: invalid serial parity type '%c'", ErrInvalidParams, frame[1])
	}

	switch frame[2] {
	case '1':
		mode.StopBits = serial.OneStopBit
	case '2':
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("%w: invalid serial stop bits '%c'", ErrInvalidParams, frame[2])
	}

	return mode, nil
}
