package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// sniffDelimiters are tried in order when no delimiter is forced.
var sniffDelimiters = []rune{',', ';', '\t'}

// readDelimited decodes data to UTF-8 and parses it as delimited text.
// A zero delim is sniffed from the first records.
func readDelimited(data []byte, delim rune) ([][]string, error) {
	text, _, err := DecodeText(data)
	if err != nil {
		return nil, err
	}
	if delim == 0 {
		delim = sniffDelimiter(text)
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return records, nil
}

// Sniffing reads at most this much text and this many records.
const (
	sniffBytes   = 64 << 10
	sniffRecords = 10
)

// sniffScore ranks one candidate delimiter over the sampled records.
type sniffScore struct {
	fields     int // fields in the header record
	consistent int // records with the header's field count
	stray      int // fields holding a quote the reader left in place
}

func (s sniffScore) beats(o sniffScore) bool {
	switch {
	case s.fields < 2:
		return false
	case o.fields < 2:
		return true
	case s.consistent != o.consistent:
		return s.consistent > o.consistent
	case s.stray != o.stray:
		return s.stray < o.stray
	default:
		return s.fields > o.fields
	}
}

// sniffDelimiter parses the first records with each candidate and keeps the
// one that splits them into the same number of fields most often. Quoted
// cells may hold newlines or other candidates. Falls back to a comma.
func sniffDelimiter(text []byte) rune {
	sample, truncated := text, false
	if len(sample) > sniffBytes {
		sample, truncated = sample[:sniffBytes], true
	}

	best, bestScore := ',', sniffScore{}
	for _, d := range sniffDelimiters {
		if s := scoreDelimiter(sample, d, truncated); s.beats(bestScore) {
			best, bestScore = d, s
		}
	}
	return best
}

func scoreDelimiter(sample []byte, delim rune, truncated bool) sniffScore {
	r := csv.NewReader(bytes.NewReader(sample))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	complete := false
	for len(records) < sniffRecords {
		rec, err := r.Read()
		if err != nil {
			complete = err == io.EOF && !truncated
			break
		}
		records = append(records, rec)
	}
	// The record cut by the sample boundary says nothing about the file.
	if !complete && len(records) < sniffRecords && len(records) > 1 {
		records = records[:len(records)-1]
	}
	if len(records) == 0 {
		return sniffScore{}
	}

	s := sniffScore{fields: len(records[0])}
	for _, rec := range records {
		if len(rec) == s.fields {
			s.consistent++
		}
		for _, field := range rec {
			if strings.ContainsRune(field, '"') {
				s.stray++
			}
		}
	}
	return s
}
