package naming

import "testing"

func TestParseModelName(t *testing.T) {
	tests := []struct {
		in        string
		wantModel string
		wantQuant string
	}{
		{"org/model-scheme-W8A8", "model", "W8A8"},
		{"org/model", "model", "FP16"},
		{"model", "model", "FP16"},
		{"neuralmagic/Llama-3.1-8B-Instruct-scheme-W4A16-G128", "Llama-3.1-8B-Instruct", "W4A16G128"},
		{"/models/local/Qwen2.5-7B-scheme-FP8-dynamic", "Qwen2.5-7B", "FP8dynamic"},
		{"a/b/c/model-scheme-", "model", ""},
		{"org/scheme-W8A8", "", "W8A8"},
		// Only the tail segment is inspected.
		{"scheme-dir/model", "model", "FP16"},
		{"", "", "FP16"},
		// The separator before the marker is one character, not one byte.
		{"org/modèle·scheme-W8A8", "modèle", "W8A8"},
		{"org/模型・scheme-FP8", "模型", "FP8"},
	}
	for _, tt := range tests {
		model, quant := ParseModelName(tt.in)
		if model != tt.wantModel || quant != tt.wantQuant {
			t.Errorf("ParseModelName(%q) = (%q, %q), want (%q, %q)",
				tt.in, model, quant, tt.wantModel, tt.wantQuant)
		}
	}
}

func TestParseModelName_RepeatedMarker(t *testing.T) {
	// Quantization comes from the last marker, the model name from the first.
	model, quant := ParseModelName("org/m-scheme-x-scheme-y")
	if model != "m" {
		t.Errorf("model = %q, want %q", model, "m")
	}
	if quant != "y" {
		t.Errorf("quantization = %q, want %q", quant, "y")
	}
}
