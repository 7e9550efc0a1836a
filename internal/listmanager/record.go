// Package listmanager is a data-shape-agnostic table controller. It owns a
// search term and a sort order over a host-supplied collection of records,
// derives the visible projection and forwards add/edit/delete intents to the
// host. It never performs I/O.
package listmanager

import (
	"cmp"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IDKey is the field holding a record's stable identifier.
const IDKey = "id"

// Value is a primitive field value: string, bool, any integer or float,
// json.Number, time.Time, or nil when absent.
type Value = any

// Record is one row of domain data keyed by field name.
type Record map[string]Value

// ID returns the canonical string form of the record id.
func (r Record) ID() string {
	return FormatValue(r[IDKey])
}

// Get returns the raw value for key. Missing keys yield (nil, false).
func (r Record) Get(key string) (Value, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	return v, ok
}

// Text returns the canonical string for key, or "" when the key is absent.
func (r Record) Text(key string) string {
	v, _ := r.Get(key)
	return FormatValue(v)
}

// Clone returns a shallow copy; values are primitives so this is a full copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FormatValue converts a field value to its canonical textual form.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Compare orders two values: numbers numerically, bools false before true,
// strings by byte order, times chronologically. Values of different kinds
// order by kind: nil, bool, number, time, then everything else by canonical
// string. The order is total, so a column mixing kinds still sorts the same
// way regardless of input order.
func Compare(a, b Value) int {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch ka {
	case kindNil:
		return 0
	case kindBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	case kindNumber:
		fa, _ := number(a)
		fb, _ := number(b)
		return cmp.Compare(fa, fb)
	case kindTime:
		return a.(time.Time).Compare(b.(time.Time))
	default:
		return strings.Compare(FormatValue(a), FormatValue(b))
	}
}

type kind int

const (
	kindNil kind = iota
	kindBool
	kindNumber
	kindTime
	kindText
)

func kindOf(v Value) kind {
	switch v.(type) {
	case nil:
		return kindNil
	case bool:
		return kindBool
	case time.Time:
		return kindTime
	}
	if _, ok := number(v); ok {
		return kindNumber
	}
	return kindText
}

func number(v Value) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
