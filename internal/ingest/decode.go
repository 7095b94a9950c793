package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMalformedPayload is returned when a payload cannot be decoded at all
var ErrMalformedPayload = stderrors.New("malformed import payload")

// Content types
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode reads records as CSV when contentType is text/csv and as JSON
// otherwise
func Decode(contentType string, r io.Reader) ([]Record, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil && mediaType == ContentTypeCSV {
		return DecodeCSV(r)
	}
	return DecodeJSON(r)
}

// DecodeFile picks the decoder from the file extension
func DecodeFile(name string, r io.Reader) ([]Record, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return DecodeCSV(r)
	}
	return DecodeJSON(r)
}

// DecodeCSV reads a header row followed by data rows. Blank lines are skipped
// and short rows leave the missing columns unset.
func DecodeCSV(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: csv header: %v", ErrMalformedPayload, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records := []Record{}
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if blankRow(fields) {
			continue
		}

		record := make(Record, len(header))
		for i, name := range header {
			if name == "" || i >= len(fields) {
				continue
			}
			record[name] = fields[i]
		}
		records = append(records, record)
	}
	return records, nil
}

func blankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// DecodeJSON accepts an array of row objects or an object with a "data" array.
// Scalar values are converted to strings and nulls are dropped.
func DecodeJSON(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var payload interface{}
	if err := dec.Decode(&payload); err != nil {
		if err == io.EOF {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	var rows []interface{}
	switch p := payload.(type) {
	case []interface{}:
		rows = p
	case map[string]interface{}:
		data, ok := p["data"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: expected an array or an object with a data array", ErrMalformedPayload)
		}
		rows = data
	default:
		return nil, fmt.Errorf("%w: expected an array or an object with a data array", ErrMalformedPayload)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		obj, _ := row.(map[string]interface{})
		record := make(Record, len(obj))
		for key, value := range obj {
			if s, ok := scalarString(value); ok {
				record[key] = s
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func scalarString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case nil:
		return "", false
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
