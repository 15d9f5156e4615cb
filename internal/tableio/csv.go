package tableio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	apperrors "catpost/internal/errors"
	"catpost/internal/table"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const attrMarker = "#"

// WriteCSV writes tbl to w. Attributes come first as "# key: value" lines,
// then the header and the rows. A UTF-8 BOM is written so that Excel picks
// up the σ headers.
func WriteCSV(w io.Writer, tbl *table.Table, opts Options) error {
	g := toGrid(tbl, opts)
	for _, kv := range g.attrs {
		if err := checkAttrKey(kv[0]); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}
	for _, kv := range g.attrs {
		if _, err := fmt.Fprintf(bw, "%s %s: %s\n", attrMarker, kv[0], oneLine(kv[1])); err != nil {
			return fmt.Errorf("failed to write attribute %s: %w", kv[0], err)
		}
	}

	writer := csv.NewWriter(bw)
	if err := writer.Write(g.headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range g.rows {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadCSV parses a table written by WriteCSV. Files without attribute lines
// or without uncertainty columns are accepted.
func ReadCSV(r io.Reader) (*table.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read CSV", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var g grid
	for len(data) > 0 && bytes.HasPrefix(data, []byte(attrMarker)) {
		line, rest, _ := bytes.Cut(data, []byte("\n"))
		data = rest
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(string(line), attrMarker)), ":")
		if !ok {
			return nil, apperrors.NewParsingError(fmt.Sprintf("malformed attribute line %q", strings.TrimSpace(string(line))), nil)
		}
		g.attrs = append(g.attrs, [2]string{strings.TrimSpace(key), strings.TrimSpace(value)})
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("invalid CSV", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewParsingError("CSV has no header", nil)
	}
	g.headers, g.rows = records[0], records[1:]
	return g.build()
}

// checkAttrKey rejects keys that would not read back from an attribute
// line, which is split at its first ':'.
func checkAttrKey(key string) error {
	if key == "" || key != strings.TrimSpace(key) || strings.ContainsAny(key, ":\r\n") {
		return apperrors.NewValidationError(fmt.Sprintf("attribute key %q cannot be written to CSV (no ':', line breaks or surrounding spaces)", key))
	}
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
