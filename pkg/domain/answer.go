package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Answer is a single collected value: either free text or a number.
// A numeric answer whose input could not be parsed holds NaN, the "not a number" sentinel.
type Answer struct {
	Text    string
	Number  float64
	Numeric bool
}

// TextAnswer wraps a string answer.
func TextAnswer(s string) Answer {
	return Answer{Text: s}
}

// NumberAnswer wraps a numeric answer.
func NumberAnswer(f float64) Answer {
	return Answer{Number: f, Numeric: true}
}

// CoerceNumber converts raw input to a numeric answer the way a browser's
// Number(text) does: surrounding whitespace is ignored, blank input is 0,
// unsigned 0x/0o/0b prefixes select hex, octal and binary integers, and
// Infinity is accepted with an optional sign. Input that does not parse
// becomes NaN and is kept as-is. Go-only forms such as digit underscores,
// "inf", "nan" and hex floats do not parse.
func CoerceNumber(raw string) Answer {
	s := strings.TrimFunc(raw, func(r rune) bool { return unicode.IsSpace(r) || r == '\ufeff' })
	switch s {
	case "":
		return NumberAnswer(0)
	case "Infinity", "+Infinity":
		return NumberAnswer(math.Inf(1))
	case "-Infinity":
		return NumberAnswer(math.Inf(-1))
	}
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			return NumberAnswer(parseRadix(s[2:], 16))
		case 'o', 'O':
			return NumberAnswer(parseRadix(s[2:], 8))
		case 'b', 'B':
			return NumberAnswer(parseRadix(s[2:], 2))
		}
	}
	if !decimalLiteral.MatchString(s) {
		return NumberAnswer(math.NaN())
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return NumberAnswer(math.NaN())
	}
	return NumberAnswer(f)
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseRadix reads an unsigned integer in the given base, returning NaN on any other digit.
func parseRadix(digits string, base int) float64 {
	var f float64
	for _, c := range digits {
		d := int(unicode.ToLower(c))
		switch {
		case d >= '0' && d <= '9':
			d -= '0'
		case d >= 'a' && d <= 'z':
			d = d - 'a' + 10
		default:
			return math.NaN()
		}
		if d >= base {
			return math.NaN()
		}
		f = f*float64(base) + float64(d)
	}
	return f
}

// Valid is false for the NaN/Inf sentinel.
func (a Answer) Valid() bool {
	if !a.Numeric {
		return true
	}
	return !math.IsNaN(a.Number) && !math.IsInf(a.Number, 0)
}

// Value returns the answer as a string or float64.
func (a Answer) Value() any {
	if a.Numeric {
		return a.Number
	}
	return a.Text
}

func (a Answer) String() string {
	if a.Numeric {
		return strconv.FormatFloat(a.Number, 'f', -1, 64)
	}
	return a.Text
}

// MarshalJSON encodes text as a JSON string and numbers as JSON numbers.
// The NaN/Inf sentinel has no JSON number form and is encoded as null.
func (a Answer) MarshalJSON() ([]byte, error) {
	if !a.Numeric {
		return json.Marshal(a.Text)
	}
	if !a.Valid() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(a.Number, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a string, a number or null (the numeric sentinel).
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = NumberAnswer(math.NaN())
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
		return nil
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("answer: unsupported JSON value %s", data)
		}
		*a = NumberAnswer(f)
		return nil
	}
}

// Answers maps prompt keys to collected values.
type Answers map[string]Answer

// Clone returns a shallow copy; Answer is a value type so this is a full copy.
func (a Answers) Clone() Answers {
	cp := make(Answers, len(a))
	for k, v := range a {
		cp[k] = v
	}
	return cp
}

// Values returns the answers as plain Go values (string or float64).
func (a Answers) Values() map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v.Value()
	}
	return out
}
