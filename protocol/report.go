package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedReport = errors.New("malformed position report")

// Positions holds the absolute step position of each motor, motor 1 first
type Positions [MotorCount]int64

// AppendPositions appends the report line "p0,p1,p2,p3\n" to dst
func AppendPositions(dst []byte, p Positions) []byte {
	for i, v := range p {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = strconv.AppendInt(dst, v, 10)
	}
	return append(dst, '\n')
}

// String formats positions without the trailing newline, as stored on disk
func (p Positions) String() string {
	line := AppendPositions(make([]byte, 0, MaxReportLen), p)
	return string(line[:len(line)-1])
}

// Slice returns the positions as a slice, mostly for structured logging
func (p Positions) Slice() []int64 {
	return p[:]
}

// ParsePositions parses four comma-separated base-10 integers. Surrounding
// whitespace and a line terminator are accepted; anything else is an error.
func ParsePositions(s string) (Positions, error) {
	var p Positions
	s = strings.TrimSpace(s)
	if s == "" {
		return p, fmt.Errorf("%w: empty", ErrMalformedReport)
	}
	fields := strings.Split(s, ",")
	if len(fields) != MotorCount {
		return p, fmt.Errorf("%w: %d fields in %q", ErrMalformedReport, len(fields), s)
	}
	for i, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return Positions{}, fmt.Errorf("%w: field %d: %v", ErrMalformedReport, i, err)
		}
		p[i] = v
	}
	return p, nil
}
