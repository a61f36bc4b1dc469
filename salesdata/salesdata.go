// Package salesdata reads and validates the raw monthly sales table that every forecast is
// built from. A raw table has one row per product per month with the year, month, product
// name and the quantity sold.
package salesdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

var ErrDataUnavailable = errors.New("sales data unavailable")

// Columns maps each required field of a sales record to the header name used in the raw
// table.
type Columns struct {
	Year     string `json:"year"`
	Month    string `json:"month"`
	Product  string `json:"product_name"`
	Quantity string `json:"quantity"`
}

// NewDefaultColumns returns the column names of the point-of-sale export
func NewDefaultColumns() *Columns {
	return &Columns{
		Year:     "Tahun",
		Month:    "Bulan",
		Product:  "Nama Item",
		Quantity: "total_jumlah",
	}
}

// Names returns the header names in year, month, product, quantity order
func (c *Columns) Names() []string {
	if c == nil {
		c = NewDefaultColumns()
	}
	return []string{c.Year, c.Month, c.Product, c.Quantity}
}

// Record is a single observation of quantity sold for a product in a month. Numeric fields
// are NaN when the raw cell was empty or not a number.
type Record struct {
	Year     float64 `json:"year"`
	Month    float64 `json:"month"`
	Product  string  `json:"product_name"`
	Quantity float64 `json:"quantity"`
}

// NewRecord returns a fully observed record
func NewRecord(year int, month time.Month, product string, quantity float64) Record {
	return Record{
		Year:     float64(year),
		Month:    float64(month),
		Product:  product,
		Quantity: quantity,
	}
}

// Period returns the calendar month of the record. The second return value is false if
// the year or month is missing, not an integer or the month is outside of 1-12.
func (r Record) Period() (Period, bool) {
	if !isInteger(r.Year) || !isInteger(r.Month) {
		return Period{}, false
	}
	if r.Month < 1 || r.Month > 12 {
		return Period{}, false
	}
	return Period{Year: int(r.Year), Month: time.Month(r.Month)}, true
}

// MissingValues counts the fields of the record that were not observed
func (r Record) MissingValues() int {
	var cnt int
	for _, v := range []float64{r.Year, r.Month, r.Quantity} {
		if math.IsNaN(v) {
			cnt++
		}
	}
	if r.Product == "" {
		cnt++
	}
	return cnt
}

func isInteger(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v == math.Trunc(v)
}

// Table is a raw, untyped table as read from a csv file
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadCSV reads a table with a header row from r
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Errs: []error{ErrEmptyTable}}
		}
		return nil, fmt.Errorf("unable to read csv header, %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse csv, %w", err)
	}
	return &Table{Header: header, Rows: rows}, nil
}

// ReadCSVFile opens and reads the csv table at path
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s not found, %w", path, ErrDataUnavailable)
		}
		return nil, fmt.Errorf("unable to open %s, %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s, %w", path, err)
	}
	return t, nil
}

// MissingColumns returns the required header names absent from the table
func (t *Table) MissingColumns(cols *Columns) []string {
	if t == nil {
		return cols.Names()
	}
	present := make(map[string]struct{}, len(t.Header))
	for _, h := range t.Header {
		present[h] = struct{}{}
	}

	var missing []string
	for _, name := range cols.Names() {
		if _, exists := present[name]; !exists {
			missing = append(missing, name)
		}
	}
	return missing
}

// Records converts every row to a record. Cells that fail to parse as numbers become NaN
// and are reported by the validator as missing values.
func (t *Table) Records(cols *Columns) ([]Record, error) {
	if cols == nil {
		cols = NewDefaultColumns()
	}
	if missing := t.MissingColumns(cols); len(missing) > 0 {
		return nil, &SchemaError{
			Errs: []error{fmt.Errorf("%s, %w", strings.Join(missing, ", "), ErrMissingColumns)},
		}
	}

	idx := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		if _, exists := idx[h]; !exists {
			idx[h] = i
		}
	}

	records := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, Record{
			Year:     parseNumeric(cell(row, idx[cols.Year])),
			Month:    parseNumeric(cell(row, idx[cols.Month])),
			Product:  cell(row, idx[cols.Product]),
			Quantity: parseNumeric(cell(row, idx[cols.Quantity])),
		})
	}
	return records, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseNumeric(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
