package photo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Mode selects which header rules apply to an input file
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "create"
}

// headerAliases accepts snake_case, camelCase and spaced header spellings
var headerAliases = func() map[string]Column {
	m := make(map[string]Column)
	for _, c := range append([]Column{ColumnID}, WritableColumns...) {
		m[compactHeader(string(c))] = c
	}
	return m
}()

func compactHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(h)
}

// Batch is a parsed input file: the validated column set and one record per
// data row. Data rows are numbered from 1.
type Batch struct {
	Mode    Mode
	Columns []Column
	Key     Column // update mode only
	Records []Record
}

// ParseCSV reads a header row and data rows. Header problems (unknown,
// duplicate or missing columns) reject the file before any value is looked
// at. Malformed rows are all reported together.
func ParseCSV(r io.Reader, mode Mode) (*Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, headerError("", "file is empty")
		}
		return nil, fmt.Errorf("%w: read header: %w", ErrInvalidArgument, err)
	}

	batch, err := parseHeader(header, mode)
	if err != nil {
		return nil, err
	}

	var errs ValidationErrors
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				errs = append(errs, newFieldError(row, "", ErrInvalidArgument, "line %d: %s", parseErr.Line, parseErr.Err))
				return nil, &BatchError{Errors: errs}
			}
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		if len(fields) != len(batch.Columns) {
			errs = append(errs, newFieldError(row, "", ErrInvalidArgument,
				"has %d fields, header has %d", len(fields), len(batch.Columns)))
			continue
		}

		rec := make(Record, len(fields))
		for i, c := range batch.Columns {
			rec[c] = strings.TrimSpace(fields[i])
		}
		batch.Records = append(batch.Records, rec)
	}

	if len(errs) > 0 {
		return nil, &BatchError{Errors: errs}
	}
	if len(batch.Records) == 0 {
		return nil, headerError("", "file has no data rows")
	}
	return batch, nil
}

func parseHeader(header []string, mode Mode) (*Batch, error) {
	batch := &Batch{Mode: mode}
	var errs ValidationErrors
	seen := make(map[Column]bool)

	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		c, ok := headerAliases[compactHeader(h)]
		switch {
		case !ok:
			errs = append(errs, newFieldError(0, Column(strings.TrimSpace(h)), ErrInvalidArgument, "unknown column"))
			continue
		case seen[c]:
			errs = append(errs, newFieldError(0, c, ErrInvalidArgument, "duplicate column"))
			continue
		case c == ColumnID && mode == ModeCreate:
			errs = append(errs, newFieldError(0, c, ErrInvalidArgument, "is system-assigned and cannot be imported"))
			continue
		}
		seen[c] = true
		batch.Columns = append(batch.Columns, c)
	}

	switch mode {
	case ModeCreate:
		for _, c := range RequiredColumns {
			if !seen[c] {
				errs = append(errs, newFieldError(0, c, ErrInvalidArgument, "required column is missing"))
			}
		}
	case ModeUpdate:
		switch {
		case seen[ColumnID]:
			batch.Key = ColumnID
		case seen[ColumnFilename]:
			batch.Key = ColumnFilename
		default:
			errs = append(errs, newFieldError(0, ColumnID, ErrInvalidArgument, "an id or filename column is required"))
		}
		changes := 0
		for _, c := range batch.Columns {
			if c != ColumnID && c != ColumnFilename {
				changes++
			}
		}
		if changes == 0 {
			errs = append(errs, newFieldError(0, "", ErrInvalidArgument, "no columns to update"))
		}
	}

	if len(errs) > 0 {
		return nil, &BatchError{Errors: errs}
	}
	return batch, nil
}

func headerError(field Column, reason string) error {
	return &BatchError{Errors: ValidationErrors{newFieldError(0, field, ErrInvalidArgument, "%s", reason)}}
}

// ExportColumns is the column order written by WriteCSV
var ExportColumns = append([]Column{ColumnID}, WritableColumns...)

// WriteCSV writes photos with a header row. The output can be edited and fed
// back through ParseCSV in update mode.
func WriteCSV(w io.Writer, photos []*Photo) error {
	writer := csv.NewWriter(w)

	header := make([]string, len(ExportColumns))
	for i, c := range ExportColumns {
		header[i] = string(c)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, p := range photos {
		rec := p.Record()
		fields := make([]string, len(ExportColumns))
		for i, c := range ExportColumns {
			fields[i] = rec[c]
		}
		if err := writer.Write(fields); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
