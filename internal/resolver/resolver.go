// Package resolver maps unstable portal column headers onto the logical
// manuscript fields by substring matching.
package resolver

import (
	"strings"
	"time"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ManuscriptTracker/internal/domain"
)

// Fields lists the candidate substrings per logical field. Candidates are
// already normalized.
var Fields = map[domain.FieldName][]string{
	domain.FieldTitle:            {"title"},
	domain.FieldManuscriptNumber: {"manuscriptnumber"},
	domain.FieldSubmissionDate:   {"submissionbegan", "initialdate", "datesubmitted"},
	domain.FieldStatusDate:       {"statusdate"},
	domain.FieldCurrentStatus:    {"currentstatus"},
}

// Normalize strips every whitespace rune and lowercases the rest.
func Normalize(s string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	// a Caser is stateful, so each call gets its own
	return cases.Lower(language.Und).String(stripped)
}

// Resolve returns the value of the first cell, in header order, whose
// normalized header contains any candidate of field. Unknown fields and
// misses yield "".
func Resolve(record domain.RawRecord, field domain.FieldName) string {
	value, _ := lookup(record, field)
	return value
}

func lookup(record domain.RawRecord, field domain.FieldName) (string, bool) {
	candidates := Fields[field]
	for _, cell := range record.Cells {
		header := Normalize(cell.Header)
		for _, candidate := range candidates {
			if strings.Contains(header, candidate) {
				return cell.Value, true
			}
		}
	}
	return "", false
}

// NormalizeRecord resolves every logical field of record.
func NormalizeRecord(record domain.RawRecord, journal string, capturedAt time.Time) domain.NormalizedRecord {
	out := domain.NormalizedRecord{
		Journal:    journal,
		DocID:      record.DocID,
		CapturedAt: capturedAt,
	}
	for _, field := range domain.LogicalFields {
		out.Set(field, Resolve(record, field))
	}
	return out
}

// Unresolved lists the logical fields no header of record matched.
func Unresolved(record domain.RawRecord) []domain.FieldName {
	var missing []domain.FieldName
	for _, field := range domain.LogicalFields {
		if _, ok := lookup(record, field); !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

// Closest names the header most similar to any candidate of field. It is a
// diagnostic for header drift and never takes part in resolution.
func Closest(record domain.RawRecord, field domain.FieldName) (string, float64) {
	var (
		best      string
		bestScore float64
	)
	for _, cell := range record.Cells {
		header := Normalize(cell.Header)
		if header == "" {
			continue
		}
		for _, candidate := range Fields[field] {
			score := matchr.JaroWinkler(header, candidate, false)
			if score > bestScore {
				best, bestScore = cell.Header, score
			}
		}
	}
	return best, bestScore
}
