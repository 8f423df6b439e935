// Package record defines the fixed-schema structured record distilled
// from a finalized conversation, and its export-row layout.
package record

import (
	"strconv"
	"time"
)

// Field names of the job record, in declared export order. The schema is
// closed: a record always carries exactly this field set, and unknown
// keys in parsed model output are dropped.
var FieldNames = []string{
	"job_title",
	"company",
	"location",
	"employment_type",
	"salary_range",
	"team_size",
	"skills",
	"description",
}

// Job is one structured record extracted from a conversation. Every
// field is always present; a field the model could not determine is an
// empty string, never absent.
type Job struct {
	JobTitle       string
	Company        string
	Location       string
	EmploymentType string
	SalaryRange    string
	TeamSize       string
	Skills         string
	Description    string
}

// FromMap builds a Job from a decoded JSON object. For each declared
// field the parsed value is used when present and non-null; scalar
// non-strings are coerced to their text form, since model output does
// not reliably quote numeric answers. Null, absent, and composite
// values default to "". Keys outside the schema are ignored.
func FromMap(m map[string]any) Job {
	get := func(key string) string {
		v, ok := m[key]
		if !ok {
			return ""
		}
		switch s := v.(type) {
		case string:
			return s
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(s)
		default:
			// null, arrays, nested objects
			return ""
		}
	}

	return Job{
		JobTitle:       get("job_title"),
		Company:        get("company"),
		Location:       get("location"),
		EmploymentType: get("employment_type"),
		SalaryRange:    get("salary_range"),
		TeamSize:       get("team_size"),
		Skills:         get("skills"),
		Description:    get("description"),
	}
}

// Values returns the record's field values in declared order,
// matching FieldNames index for index.
func (j Job) Values() []string {
	return []string{
		j.JobTitle,
		j.Company,
		j.Location,
		j.EmploymentType,
		j.SalaryRange,
		j.TeamSize,
		j.Skills,
		j.Description,
	}
}

// Row builds the fixed-order export row for this record:
// timestamp (RFC 3339, UTC), user identifier, then each field in
// declared order. Everything except the timestamp is deterministic for
// a given record and identifier.
func (j Job) Row(ts time.Time, uid string) []string {
	row := make([]string, 0, 2+len(FieldNames))
	row = append(row, ts.UTC().Format(time.RFC3339), uid)
	return append(row, j.Values()...)
}

// Header returns the export header row: timestamp, uid, then the
// declared field names.
func Header() []string {
	header := make([]string, 0, 2+len(FieldNames))
	header = append(header, "timestamp", "uid")
	return append(header, FieldNames...)
}
