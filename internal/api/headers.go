package api

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// FieldEmailCol carries the index of the email column.
	FieldEmailCol = "emailCol"
	// ColumnPrefix prefixes every non-email column name.
	ColumnPrefix = "COL_"
)

const utf8BOM = "\ufeff"

// HeaderMap maps an upload field name to a zero-based CSV column index.
type HeaderMap map[string]int

// Fields renders the map as form fields.
func (h HeaderMap) Fields() Fields {
	out := make(Fields, len(h))
	for k, v := range h {
		out[k] = fmt.Sprintf("%d", v)
	}
	return out
}

// EmailColumn returns the email column index, if one was found.
func (h HeaderMap) EmailColumn() (int, bool) {
	idx, ok := h[FieldEmailCol]
	return idx, ok
}

// ParseHeaderLine derives a HeaderMap from a single CSV header line.
//
// The first field whose name contains "email" (any case) becomes emailCol;
// every other field becomes COL_<name>. When a name repeats, the later index wins.
func ParseHeaderLine(line string) (HeaderMap, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	record, err := r.Read()
	if errors.Is(err, io.EOF) {
		return HeaderMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse header line: %w", err)
	}
	return headerMapFromRecord(record), nil
}

// ReadHeaderMap reads only the first line of the CSV file at path.
func ReadHeaderMap(path string) (HeaderMap, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, &FileReadError{Path: abs, Err: err}
	}
	defer func() { _ = f.Close() }()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, &FileReadError{Path: abs, Err: err}
	}
	headers, err := ParseHeaderLine(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return nil, &FileReadError{Path: abs, Err: err}
	}
	return headers, nil
}

func headerMapFromRecord(record []string) HeaderMap {
	headers := make(HeaderMap, len(record))
	emailFound := false
	for i, name := range record {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if !emailFound && strings.Contains(strings.ToLower(name), "email") {
			headers[FieldEmailCol] = i
			emailFound = true
			continue
		}
		headers[ColumnPrefix+name] = i
	}
	return headers
}
