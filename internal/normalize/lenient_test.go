package normalize_test

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/zykor/contahub-sync-go/internal/normalize"
)

func field(t *testing.T, doc, path string) gjson.Result {
	t.Helper()
	return gjson.Get(doc, path)
}

func TestFloat(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want float64
	}{
		{"number", `{"v": 12.5}`, 12.5},
		{"numeric string", `{"v": "12.5"}`, 12.5},
		{"null", `{"v": null}`, 0},
		{"missing", `{}`, 0},
		{"empty string", `{"v": ""}`, 0},
		{"literal null string", `{"v": "null"}`, 0},
		{"garbage", `{"v": "abc"}`, 0},
		{"negative", `{"v": "-3.75"}`, -3.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize.Float(field(t, tt.doc, "v")); got != tt.want {
				t.Errorf("Float(%s) = %v, want %v", tt.doc, got, tt.want)
			}
		})
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int64
	}{
		{"integer", `{"v": 7}`, 7},
		{"fractional truncates", `{"v": 7.9}`, 7},
		{"fractional string truncates", `{"v": "7.9"}`, 7},
		{"null", `{"v": null}`, 0},
		{"missing", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize.Int(field(t, tt.doc, "v")); got != tt.want {
				t.Errorf("Int(%s) = %v, want %v", tt.doc, got, tt.want)
			}
		})
	}
}

func TestNullableInt(t *testing.T) {
	if got := normalize.NullableInt(field(t, `{"v": 42}`, "v")); got == nil || *got != 42 {
		t.Errorf("expected 42, got %v", got)
	}
	if got := normalize.NullableInt(field(t, `{"v": 0}`, "v")); got != nil {
		t.Errorf("expected null for zero, got %v", *got)
	}
	if got := normalize.NullableInt(field(t, `{}`, "v")); got != nil {
		t.Errorf("expected null for missing, got %v", *got)
	}
}

func TestHour(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{"clock string", `{"hora": "14:30"}`, 14},
		{"bare number", `{"hora": 7}`, 7},
		{"numeric string", `{"hora": "7"}`, 7},
		{"null", `{"hora": null}`, 0},
		{"missing", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize.Hour(field(t, tt.doc, "hora")); got != tt.want {
				t.Errorf("Hour(%s) = %d, want %d", tt.doc, got, tt.want)
			}
		})
	}
}

func TestDateOnly(t *testing.T) {
	if got := normalize.DateOnly(field(t, `{"v": "2025-06-01T00:00:00"}`, "v")); got == nil || *got != "2025-06-01" {
		t.Errorf("expected 2025-06-01, got %v", got)
	}
	if got := normalize.DateOnly(field(t, `{"v": "2025-06-01"}`, "v")); got == nil || *got != "2025-06-01" {
		t.Errorf("expected bare date preserved, got %v", got)
	}
	if got := normalize.DateOnly(field(t, `{"v": null}`, "v")); got != nil {
		t.Errorf("expected null, got %v", *got)
	}
	if got := normalize.DateOnly(field(t, `{}`, "v")); got != nil {
		t.Errorf("expected null for missing, got %v", *got)
	}
}

func TestLocalTimestamp(t *testing.T) {
	if got := normalize.LocalTimestamp(field(t, `{"v": "2025-06-01T14:30:00-03:00"}`, "v")); got == nil || *got != "2025-06-01T14:30:00" {
		t.Errorf("expected offset stripped, got %v", got)
	}
	if got := normalize.LocalTimestamp(field(t, `{"v": null}`, "v")); got != nil {
		t.Errorf("expected null, got %v", *got)
	}
}

func TestBirthDate(t *testing.T) {
	if got := normalize.BirthDate(field(t, `{"v": "1990-04-12T00:00:00"}`, "v")); got == nil || *got != "1990-04-12" {
		t.Errorf("expected 1990-04-12, got %v", got)
	}
	if got := normalize.BirthDate(field(t, `{"v": "0001-01-01T00:00:00"}`, "v")); got != nil {
		t.Errorf("expected sentinel mapped to null, got %v", *got)
	}
	if got := normalize.BirthDate(field(t, `{}`, "v")); got != nil {
		t.Errorf("expected null for missing, got %v", *got)
	}
}

func TestWeekOfYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		// 2025-01-01 is a Wednesday (weekday 3): floor((0+3+1)/7)+1 = 1.
		{"2025-01-01", 1},
		{"2025-01-04", 2}, // floor((3+3+1)/7)+1 = 2
		{"2025-12-31", 53},
		{"not-a-date", 1},
	}
	for _, tt := range tests {
		if got := normalize.WeekOfYear(tt.date); got != tt.want {
			t.Errorf("WeekOfYear(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}
