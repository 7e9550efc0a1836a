package api

import (
	"testing"
)

func TestDecodeListAcceptsEnvelope(t *testing.T) {
	for name, body := range map[string]string{
		"array":    `[{"id":"1"},{"id":"2"}]`,
		"envelope": `{"data":[{"id":"1"},{"id":"2"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			records, err := decodeList[map[string]any]([]byte(body))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(records) != 2 || records[1]["id"] != "2" {
				t.Fatalf("unexpected records %v", records)
			}
		})
	}

	empty, err := decodeList[map[string]any]([]byte(`{"data":null}`))
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %v %v", empty, err)
	}
}

func TestDecodeRecordUnwrapsData(t *testing.T) {
	rec, err := decodeRecord([]byte(`{"data":{"id":"7","title":"Space"}}`))
	if err != nil || rec.ID() != "7" {
		t.Fatalf("unexpected record %v %v", rec, err)
	}
	rec, err = decodeRecord(nil)
	if err != nil || rec != nil {
		t.Fatalf("expected nil record for empty body, got %v %v", rec, err)
	}
}

func TestParseAPIError(t *testing.T) {
	if got := parseAPIError([]byte(`{"error":"boom"}`)); got != "boom" {
		t.Fatalf("got %q", got)
	}
	if got := parseAPIError([]byte(`{"message":"bad"}`)); got != "bad" {
		t.Fatalf("got %q", got)
	}
	if got := parseAPIError([]byte(`<html>`)); got != "" {
		t.Fatalf("got %q", got)
	}
}
