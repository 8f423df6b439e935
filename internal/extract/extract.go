// Package extract recovers a structured record from free-form model
// output. Models reliably wrap JSON in explanatory prose despite
// instructions; slicing from the first '{' to the last '}' is a
// pragmatic, dependency-free recovery that tolerates leading and
// trailing text. Non-JSON text inside the braces remains a hard
// failure — there is no best-effort repair.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/intakehq/intake/internal/record"
)

// ErrExtraction indicates that no valid JSON object could be recovered
// from a model reply. Callers classify with errors.Is.
var ErrExtraction = errors.New("extract: no JSON object recoverable from reply")

// Record slices the outermost first-'{'/last-'}' span out of the raw
// reply, parses it as a JSON object, and maps it onto the job-record
// schema. Missing or null fields default to "", unknown fields are
// dropped.
//
// The span is deliberately outermost: if a reply contains two separate
// JSON objects the slice covers both and fails to parse, surfacing as
// an extraction error rather than silently merging them.
func Record(raw string) (record.Job, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return record.Job{}, fmt.Errorf("%w: no object delimiters", ErrExtraction)
	}

	slice := raw[start : end+1]

	var parsed map[string]any
	if err := json.Unmarshal([]byte(slice), &parsed); err != nil {
		return record.Job{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	return record.FromMap(parsed), nil
}
