package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableTo(t *testing.T) {
	var buf bytes.Buffer
	headers := []string{"Name", "Value"}
	rows := [][]string{
		{"mean_acceptance_length", "2.75"},
		{"rate_at_1", "0.9"},
	}
	TableTo(&buf, headers, rows)

	out := buf.String()
	if !strings.Contains(out, "Name") {
		t.Error("expected header 'Name' in output")
	}
	if !strings.Contains(out, "mean_acceptance_length") {
		t.Error("expected row data 'mean_acceptance_length' in output")
	}
	if !strings.Contains(out, "----") {
		t.Error("expected separator line in output")
	}
}

func TestTableTo_Empty(t *testing.T) {
	var buf bytes.Buffer
	TableTo(&buf, []string{"A", "B"}, nil)
	out := buf.String()
	// Should still have headers and separator.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 lines (header+separator), got %d", len(lines))
	}
}

func TestJSONTo(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]string{"hello": "world"}
	if err := JSONTo(&buf, data); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"hello": "world"`) {
		t.Errorf("unexpected JSON output: %s", out)
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	headers := []string{"col1", "col2"}
	rows := [][]string{{"a", "b"}, {"c", "d"}}
	if err := CSV(&buf, headers, rows); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Errorf("expected 3 CSV lines, got %d", len(lines))
	}
	if lines[0] != "col1,col2" {
		t.Errorf("unexpected header: %s", lines[0])
	}
}

func TestF64(t *testing.T) {
	tests := []struct {
		v    float64
		prec int
		want string
	}{
		{123.456, 1, "123.5"},
		{0.7854, 4, "0.7854"},
		{5, 0, "5"},
	}
	for _, tt := range tests {
		if got := F64(tt.v, tt.prec); got != tt.want {
			t.Errorf("F64(%v, %d) = %q, want %q", tt.v, tt.prec, got, tt.want)
		}
	}
}
