package text

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

var errInvalidJSONText = errors.New("invalid JSON text")

// MarshalJSON encodes the text as a JSON string, escaping lone surrogates
func (t Text) MarshalJSON() ([]byte, error) {
	return []byte(t.Quote()), nil
}

// UnmarshalJSON accepts a JSON string or an array of code units.
// Unlike encoding/json, \uXXXX escapes of lone surrogates are kept as is.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errInvalidJSONText
	}

	switch data[0] {
	case 'n':
		if string(data) != "null" {
			return errInvalidJSONText
		}
		*t = Empty
		return nil
	case '[':
		var units []uint16
		if err := json.Unmarshal(data, &units); err != nil {
			return fmt.Errorf("failed to parse code units: %w", err)
		}
		*t = FromUnits(units)
		return nil
	case '"':
		units, err := unquote(data)
		if err != nil {
			return err
		}
		*t = Text{units: units}
		return nil
	default:
		return fmt.Errorf("%w: expected string or array", errInvalidJSONText)
	}
}

// unquote decodes a JSON string literal into code units
func unquote(data []byte) ([]uint16, error) {
	if len(data) < 2 || data[len(data)-1] != '"' {
		return nil, fmt.Errorf("%w: unterminated string", errInvalidJSONText)
	}
	data = data[1 : len(data)-1]

	units := make([]uint16, 0, len(data))
	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '\\':
			if i+1 >= len(data) {
				return nil, fmt.Errorf("%w: trailing backslash", errInvalidJSONText)
			}
			switch esc := data[i+1]; esc {
			case '"', '\\', '/':
				units = append(units, uint16(esc))
			case 'b':
				units = append(units, '\b')
			case 'f':
				units = append(units, '\f')
			case 'n':
				units = append(units, '\n')
			case 'r':
				units = append(units, '\r')
			case 't':
				units = append(units, '\t')
			case 'u':
				if i+6 > len(data) {
					return nil, fmt.Errorf("%w: short unicode escape", errInvalidJSONText)
				}
				v, err := strconv.ParseUint(string(data[i+2:i+6]), 16, 16)
				if err != nil {
					return nil, fmt.Errorf("%w: bad unicode escape %q", errInvalidJSONText, data[i:i+6])
				}
				units = append(units, uint16(v))
				i += 6
				continue
			default:
				return nil, fmt.Errorf("%w: unknown escape \\%c", errInvalidJSONText, esc)
			}
			i += 2
		case c < 0x20:
			return nil, fmt.Errorf("%w: control character in string", errInvalidJSONText)
		case c < utf8.RuneSelf:
			units = append(units, uint16(c))
			i++
		default:
			r, size := utf8.DecodeRune(data[i:])
			units = utf16.AppendRune(units, r)
			i += size
		}
	}
	return units, nil
}
