package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"expo-admin/internal/listmanager"
)

// decodeList accepts a bare JSON array or a {"data": [...]} envelope.
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []T{}, nil
	}
	if body[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		body = bytes.TrimSpace(envelope.Data)
		if len(body) == 0 || bytes.Equal(body, []byte("null")) {
			return []T{}, nil
		}
	}
	out := []T{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}

// decodeRecord accepts a bare object or a {"data": {...}} envelope. An empty
// body yields a nil record.
func decodeRecord(body []byte) (listmanager.Record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	var rec listmanager.Record
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if inner, ok := rec["data"].(map[string]any); ok && len(rec) == 1 {
		return listmanager.Record(inner), nil
	}
	return rec, nil
}

func parseAPIError(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Message
}
