// Package octal implements the numeric field encoding used by USTAR header
// records: space-padded, zero-filled octal digits with optional NUL
// termination inside a fixed-width field.
package octal

import (
	"errors"
	"fmt"
)

// ErrSyntax is returned when a field contains anything other than optional
// space padding around a run of octal digits, followed by space or NUL fill.
// A field that fails to parse is distinct from a field holding zero.
var ErrSyntax = errors.New("octal: invalid field syntax")

// ErrRange is returned when a value cannot be represented within the field
// width, even after dropping the framing bytes.
var ErrRange = errors.New("octal: value out of range for field width")

// Parse decodes an octal numeric field. Leading spaces are skipped, at least
// one octal digit must follow, and anything after the digits must be space or
// NUL fill.
func Parse(field []byte) (int64, error) {
	i := 0
	for i < len(field) && field[i] == ' ' {
		i++
	}
	if i == len(field) || !isOctal(field[i]) {
		return 0, ErrSyntax
	}
	var v int64
	for i < len(field) && isOctal(field[i]) {
		v = v*8 + int64(field[i]-'0')
		i++
	}
	for i < len(field) {
		if c := field[i]; c != ' ' && c != 0 {
			return 0, ErrSyntax
		}
		i++
	}
	return v, nil
}

// Format encodes v into field as " %0*o" followed by a NUL: a leading space,
// the value zero-padded to the field width minus two, and a terminator.
// When the value needs the room, the leading space is dropped first, then the
// trailing NUL. Values that still do not fit return ErrRange.
func Format(field []byte, v int64) error {
	if v < 0 {
		return ErrRange
	}
	s := fmt.Sprintf(" %0*o\x00", len(field)-2, v)
	if len(s) > len(field) {
		s = s[1:]
	}
	if len(s) > len(field) {
		s = s[:len(s)-1]
	}
	if len(s) > len(field) {
		return ErrRange
	}
	copy(field, s)
	return nil
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}
