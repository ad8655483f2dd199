// Package csvimport decodes uploaded CSV buffers into a lazy, single-pass
// sequence of header-keyed rows.
//
// The whole buffer is checked before the first row is handed out: the UTF-8
// encoding, the CSV syntax (one streaming pass that reuses a single record
// slice) and the presence of the required header columns. Any problem there is
// an apperrors.ErrDecode and means no row is processed at all. Problems inside
// a well-formed row, such as an empty cell, are left to the consumer.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/yigit/studentadmin/internal/pkg/apperrors"
)

// Extension is the only accepted upload format.
const Extension = ".csv"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one decoded data line keyed by lower-cased header name.
type Row struct {
	// Line is the 1-based line number of the record in the source buffer.
	Line   int
	Fields map[string]string
}

// Get returns the value of column name and whether the row carried it.
func (r Row) Get(name string) (string, bool) {
	v, ok := r.Fields[strings.ToLower(name)]
	return v, ok
}

// HeaderIndex maps lower-cased header names to their column position.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex from a header record.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// Decoder yields rows from a validated CSV buffer.
type Decoder struct {
	reader *csv.Reader
	header []string
	index  HeaderIndex
	total  int
	done   bool
}

// NewDecoder validates data as a CSV upload named filename and returns a
// decoder positioned after the header. required lists header columns that
// must be present.
func NewDecoder(data []byte, filename string, required []string) (*Decoder, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext == "" {
		return nil, apperrors.NewValidationError("file", "file extension is required")
	}
	if ext != Extension {
		return nil, apperrors.NewInvalidFormatError("Only CSV files are allowed")
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.NewDecodeError("CSV file is empty", nil)
	}
	if !utf8.Valid(data) {
		return nil, apperrors.NewDecodeError("CSV file is not valid UTF-8", nil)
	}

	records, err := scan(data)
	if err != nil {
		return nil, apperrors.NewDecodeError("Error parsing CSV file", err)
	}

	d := &Decoder{
		reader: newReader(data),
		total:  records - 1,
	}

	header, err := d.reader.Read()
	if err != nil {
		return nil, apperrors.NewDecodeError("Error parsing CSV file", err)
	}
	d.header = append([]string(nil), header...)
	d.index = MakeHeaderIndex(d.header)

	var missing []string
	for _, col := range required {
		if _, ok := d.index[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewDecodeError(
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")), nil)
	}

	return d, nil
}

func newReader(data []byte) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.ReuseRecord = true
	return r
}

// scan walks every record once without retaining any and returns the
// record count, header included.
func scan(data []byte) (int, error) {
	r := newReader(data)
	n := 0
	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

// Header returns the header record as it appeared in the file.
func (d *Decoder) Header() []string {
	return d.header
}

// Total is the number of data rows the buffer holds.
func (d *Decoder) Total() int {
	return d.total
}

// Next returns the next row, or io.EOF once the buffer is exhausted.
func (d *Decoder) Next() (Row, error) {
	if d.done {
		return Row{}, io.EOF
	}

	record, err := d.reader.Read()
	if errors.Is(err, io.EOF) {
		d.done = true
		return Row{}, io.EOF
	}
	if err != nil {
		d.done = true
		return Row{}, apperrors.NewDecodeError("Error parsing CSV file", err)
	}

	line, _ := d.reader.FieldPos(0)
	fields := make(map[string]string, len(d.index))
	for name, pos := range d.index {
		if pos < len(record) {
			fields[name] = record[pos]
		}
	}
	return Row{Line: line, Fields: fields}, nil
}

// Rows exposes the remaining rows as a single-pass sequence. Iteration stops
// after the first error is yielded.
func (d *Decoder) Rows() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for {
			row, err := d.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}
