package pagination

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []Cursor{
		{Field: "code", Value: "F100"},
		{Field: "report_date", Value: "2026-08-30T10:00:00Z"},
		{Field: "name", Value: "St Vincent's: Ward B"},
		{Field: "email", Value: ""},
	}
	for _, want := range tests {
		got, err := Decode(Encode(want.Field, want.Value))
		if err != nil {
			t.Fatalf("Decode(Encode(%+v)) failed: %v", want, err)
		}
		if got != want {
			t.Errorf("round trip = %+v, want %+v", got, want)
		}
	}
}

func TestDecodeValueContainingSeparator(t *testing.T) {
	got, err := Decode(Encode("report_date", "2026-08-30T10:00:00Z"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Value != "2026-08-30T10:00:00Z" {
		t.Errorf("value = %q, colons after the first must stay in the value", got.Value)
	}
}

func TestDecodeInvalidCursors(t *testing.T) {
	for _, cursor := range []string{"", "   ", "!!!not-base64!!!", Encode("", "value")} {
		if _, err := Decode(cursor); !errors.Is(err, ErrInvalidCursor) {
			t.Errorf("Decode(%q) error = %v, want ErrInvalidCursor", cursor, err)
		}
	}
}
