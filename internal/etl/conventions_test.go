package etl

import "testing"

func TestSpecTokens(t *testing.T) {
	tests := []struct {
		runID string
		want  int
	}{
		{"single_model_sd_8", 8},
		{"code_sd_4", 4},
		{"baseline", 0},
		{"", 0},
		{"sd_", 0},
		{"code_sd_x", 0},
		{"code_sd_4_rps_5", 0},
		{"sd_3sd_9", 3},
		{"sd_3_sd_9", 0},
	}
	for _, tt := range tests {
		if got := SpecTokens(tt.runID); got != tt.want {
			t.Errorf("SpecTokens(%q) = %d, want %d", tt.runID, got, tt.want)
		}
	}
}

func TestRunDate(t *testing.T) {
	tests := []struct {
		folder string
		want   string
	}{
		{"sd_8_2024-01-15_10:30:00", "2024-01-15_10:30:00"},
		{"2024-01-15_10:30:00", "2024-01-15_10:30:00"},
		{"baseline", "baseline"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RunDate(tt.folder); got != tt.want {
			t.Errorf("RunDate(%q) = %q, want %q", tt.folder, got, tt.want)
		}
	}
}

func TestIsSingleModel(t *testing.T) {
	if !IsSingleModel("single_model_sd_8") {
		t.Error("IsSingleModel(single_model_sd_8) = false, want true")
	}
	if IsSingleModel("code_sd_4") {
		t.Error("IsSingleModel(code_sd_4) = true, want false")
	}
}
