package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"expo-admin/internal/domain"
	"expo-admin/internal/listmanager"
)

const inputDate = "2006-01-02"

// coerce converts raw form input to typed record fields. Empty optional
// inputs are omitted on create and sent as null on edit so a value can be
// cleared.
func coerce(fields []Field, input map[string]string, edit bool) (listmanager.Record, error) {
	out := make(listmanager.Record, len(fields))
	for _, f := range fields {
		raw := strings.TrimSpace(input[f.Key])
		if raw == "" {
			if f.Required {
				return nil, fmt.Errorf("%s is required: %w", f.Label, domain.ErrInvalidInput)
			}
			if f.Kind == Bool {
				out[f.Key] = false
			} else if edit {
				out[f.Key] = nil
			}
			continue
		}
		v, err := parseInput(f.Kind, raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a valid %s: %w", f.Label, raw, f.Kind, domain.ErrInvalidInput)
		}
		out[f.Key] = v
	}
	return out, nil
}

func parseInput(kind FieldKind, raw string) (listmanager.Value, error) {
	switch kind {
	case Number:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, nil
		}
		return strconv.ParseFloat(raw, 64)
	case Bool:
		switch strings.ToLower(raw) {
		case "y", "yes", "ja", "on":
			return true, nil
		case "n", "no", "nein", "off":
			return false, nil
		}
		return strconv.ParseBool(raw)
	case Date:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.UTC().Format(time.RFC3339), nil
		}
		t, err := time.ParseInLocation(inputDate, raw, time.UTC)
		if err != nil {
			return nil, err
		}
		return t.Format(time.RFC3339), nil
	default:
		return raw, nil
	}
}

// inputText renders a stored value as editable form text.
func inputText(f Field, v listmanager.Value) string {
	if f.Kind == Date {
		if s, ok := v.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t.UTC().Format(inputDate)
			}
		}
	}
	return listmanager.FormatValue(v)
}
