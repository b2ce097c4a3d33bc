package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidFormat is returned when the input stream cannot be used at all:
// unreadable CSV, empty file, or a header missing required columns.
var ErrInvalidFormat = errors.New("invalid course CSV format")

// Row is a single record from a course CSV file. All values are kept as raw
// strings; interpretation (section numbers, activity types, dates) happens
// in the generator.
type Row struct {
	SectionID     string
	SectionName   string
	ActivityType  string
	ActivityName  string
	ContentText   string
	SourceURLPath string
	DateStart     string
	DateEnd       string
	DateCutoff    string
}

// requiredHeaders must all be present in the header row.
var requiredHeaders = []string{"section_id", "section_name", "activity_type", "activity_name"}

// ParseCourseCSV reads a course description CSV and returns its rows in file
// order. The first line is the header; a UTF-8 byte-order-mark on the first
// header field is stripped and header names are trimmed. Data rows shorter
// than the header are right-padded with empty strings, and columns the
// header does not name are ignored. A header missing any required column
// fails with ErrInvalidFormat before any data row is read.
func ParseCourseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow short and long rows

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrInvalidFormat, err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	for _, h := range requiredHeaders {
		if _, ok := headerIndex[h]; !ok {
			return nil, fmt.Errorf("%w: missing required header: %s", ErrInvalidFormat, h)
		}
	}

	var rows []Row
	lineNum := 1
	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidFormat, lineNum, err)
		}

		rows = append(rows, Row{
			SectionID:     getCSVValue(record, headerIndex, "section_id"),
			SectionName:   getCSVValue(record, headerIndex, "section_name"),
			ActivityType:  getCSVValue(record, headerIndex, "activity_type"),
			ActivityName:  getCSVValue(record, headerIndex, "activity_name"),
			ContentText:   getCSVValue(record, headerIndex, "content_text"),
			SourceURLPath: getCSVValue(record, headerIndex, "source_url_path"),
			DateStart:     getCSVValue(record, headerIndex, "date_start"),
			DateEnd:       getCSVValue(record, headerIndex, "date_end"),
			DateCutoff:    getCSVValue(record, headerIndex, "date_cutoff"),
		})
	}

	return rows, nil
}

// getCSVValue safely extracts a value from a record using the header index.
// Missing columns (short rows, or optional headers not present in the file)
// read as the empty string.
func getCSVValue(record []string, headerIndex map[string]int, field string) string {
	idx, ok := headerIndex[field]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
