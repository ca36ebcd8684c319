package etl

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Run identifiers and result folder names follow loose conventions set by the
// load-test runner. The helpers below parse them on a best-effort basis and
// fall back to fixed values instead of failing.

const (
	specTokensMarker  = "sd_"
	singleModelMarker = "single_model"
)

// SpecTokens returns the speculative-token count encoded in a run id as
// "..._sd_<N>". The text between the first "sd_" and the next one (or the end)
// must be an integer; otherwise the count is 0.
func SpecTokens(runID string) int {
	i := strings.Index(runID, specTokensMarker)
	if i < 0 {
		return 0
	}
	rest := runID[i+len(specTokensMarker):]
	if j := strings.Index(rest, specTokensMarker); j >= 0 {
		rest = rest[:j]
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0
	}
	return n
}

// RunDate returns the last two "_"-separated segments of a results folder
// name joined with "_", e.g. "sd_8_2024-01-15_10:30:00" -> "2024-01-15_10:30:00".
// Names with fewer than two segments are returned whole.
func RunDate(folder string) string {
	parts := strings.Split(folder, "_")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return strings.Join(parts, "_")
}

// IsSingleModel reports whether a run id marks a run without a draft model.
func IsSingleModel(runID string) bool {
	return strings.Contains(runID, singleModelMarker)
}

// parseRPS reads the requests-per-second level, given as a string or a
// number. An absent value means 1.
func parseRPS(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 1, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("%w: rps %q is not an integer", ErrInvalidInput, s)
		}
		return n, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("%w: rps %s is not a number", ErrInvalidInput, raw)
	}
	return int(f), nil
}
