package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var jsonNull = []byte("null")

// Number is a numeric field that is only considered present when the
// upstream value is a JSON number. Any other JSON type decodes as absent
// instead of failing the whole record.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a present Number.
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

// Float returns the value and whether it is a usable finite number.
func (n Number) Float() (float64, bool) {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return 0, false
	}
	return n.Value, true
}

// Int64 returns the value when it is a whole number, as FDC identifiers are.
func (n Number) Int64() (int64, bool) {
	v, ok := n.Float()
	if !ok || v != math.Trunc(v) || math.Abs(v) > 1<<53 {
		return 0, false
	}
	return int64(v), true
}

// UnmarshalJSON never returns an error.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil || bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil
	}
	*n = Num(v)
	return nil
}

// MarshalJSON writes null for an absent number.
func (n Number) MarshalJSON() ([]byte, error) {
	if v, ok := n.Float(); ok {
		return json.Marshal(v)
	}
	return jsonNull, nil
}

// Quantity is like Number but also accepts numeric strings such as "150".
// Serving sizes arrive in both shapes.
type Quantity struct {
	Value float64
	Valid bool
}

// Qty returns a present Quantity.
func Qty(v float64) Quantity {
	return Quantity{Value: v, Valid: true}
}

// Float returns the value and whether it is a usable finite number.
func (q Quantity) Float() (float64, bool) {
	if !q.Valid || math.IsNaN(q.Value) || math.IsInf(q.Value, 0) {
		return 0, false
	}
	return q.Value, true
}

// UnmarshalJSON never returns an error.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	*q = Quantity{}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		*q = Qty(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			*q = Qty(f)
		}
	}
	return nil
}

// MarshalJSON writes null for an absent quantity.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if v, ok := q.Float(); ok {
		return json.Marshal(v)
	}
	return jsonNull, nil
}

// Text is a string field that also accepts scalar JSON numbers and booleans,
// coerced to their string form. Objects, arrays and null decode as empty.
// An empty Text is treated as absent.
type Text string

// UnmarshalJSON never returns an error.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = ""
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch raw.(type) {
	case string, float64, bool:
		if s, err := cast.ToStringE(raw); err == nil {
			*t = Text(s)
		}
	}
	return nil
}

// String returns the underlying string.
func (t Text) String() string {
	return string(t)
}
