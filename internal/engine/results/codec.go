package results

import (
	"encoding/json"
	"io"
	"sort"

	"vreport/internal/core/errors"
)

// ImpactedComponents lists the distinct component tag names, sorted.
func ImpactedComponents(records []Record) []string {
	seen := make(map[string]bool, len(records))
	out := make([]string, 0)
	for _, rec := range records {
		if seen[rec.ComponentTagName] {
			continue
		}
		seen[rec.ComponentTagName] = true
		out = append(out, rec.ComponentTagName)
	}
	sort.Strings(out)
	return out
}

// WithResults returns a copy of the envelope carrying records and the
// components they touch.
func (r Report) WithResults(records []Record) Report {
	r.Results = append([]Record(nil), records...)
	r.ImpactedComponents = ImpactedComponents(records)
	return r
}

// DecodeReport reads a report envelope. A bare {"results": [...]} file
// decodes into a report with empty metadata.
func DecodeReport(r io.Reader) (Report, error) {
	var report Report
	dec := json.NewDecoder(r)
	if err := dec.Decode(&report); err != nil {
		return Report{}, errors.Wrap(err, errors.CodeValidationError, "decode results")
	}
	if report.Results == nil {
		report.Results = []Record{}
	}
	return report, nil
}

// WriteJSON writes v as two-space indented JSON followed by a newline.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
