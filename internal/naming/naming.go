// Package naming decomposes model identifiers used by the benchmark runners.
//
// Quantized checkpoints are published as "<org>/<model>-scheme-<scheme>", for
// example "org/Llama-3.1-8B-Instruct-scheme-W8A8". This is a naming heuristic,
// not a grammar: dimension rows are deduplicated on the exact strings produced
// here, so the split and strip rules must not drift.
package naming

import (
	"strings"
	"unicode/utf8"
)

// DefaultQuantization is reported for identifiers that carry no scheme.
const DefaultQuantization = "FP16"

const schemeMarker = "scheme"

// ParseModelName returns the bare model name and quantization type encoded in
// a model identifier. Only the last path segment is considered.
func ParseModelName(full string) (modelName, quantizationType string) {
	name := full
	if i := strings.LastIndex(full, "/"); i >= 0 {
		name = full[i+1:]
	}

	if !strings.Contains(name, schemeMarker) {
		return name, DefaultQuantization
	}

	after := name[strings.LastIndex(name, schemeMarker)+len(schemeMarker):]
	quantizationType = strings.ReplaceAll(after, "-", "")

	before := name[:strings.Index(name, schemeMarker)]
	if before != "" {
		// Drop the separator that precedes "scheme".
		_, size := utf8.DecodeLastRuneInString(before)
		before = before[:len(before)-size]
	}
	return before, quantizationType
}
