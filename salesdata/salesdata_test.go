package salesdata

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod(t *testing.T) {
	p := NewPeriod(2023, time.November)

	assert.Equal(t, Period{Year: 2024, Month: time.February}, p.AddMonths(3))
	assert.Equal(t, Period{Year: 2023, Month: time.October}, p.AddMonths(-1))
	assert.Equal(t, Period{Year: 2024, Month: time.November}, p.AddMonths(12))
	assert.Equal(t, 4, p.Quarter())
	assert.Equal(t, "2023-11", p.String())
	assert.Equal(t, "Nov 2023", p.Label())

	assert.True(t, p.Before(p.AddMonths(1)))
	assert.True(t, p.After(p.AddMonths(-13)))
	assert.Equal(t, 0, p.Compare(NewPeriod(2023, time.November)))
	assert.Equal(t, time.Date(2023, time.November, 1, 0, 0, 0, 0, time.UTC), p.Time())
}

func TestPeriodJSON(t *testing.T) {
	out, err := json.Marshal(NewPeriod(2024, time.March))
	require.Nil(t, err)
	assert.Equal(t, `"2024-03"`, string(out))

	var p Period
	require.Nil(t, json.Unmarshal(out, &p))
	assert.Equal(t, NewPeriod(2024, time.March), p)

	err = json.Unmarshal([]byte(`"March 2024"`), &p)
	assert.Error(t, err)

	_, err = ParsePeriod("March 2024")
	assert.ErrorIs(t, err, ErrInvalidPeriodFormat)
}

func TestQuarter(t *testing.T) {
	expected := []int{1, 1, 1, 2, 2, 2, 3, 3, 3, 4, 4, 4}
	for m := time.January; m <= time.December; m++ {
		assert.Equal(t, expected[m-1], NewPeriod(2024, m).Quarter(), m.String())
	}
}

func TestRecordPeriod(t *testing.T) {
	testData := map[string]struct {
		record   Record
		expected Period
		ok       bool
	}{
		"valid": {
			record:   NewRecord(2024, time.May, "a", 1),
			expected: NewPeriod(2024, time.May),
			ok:       true,
		},
		"missing year": {
			record: Record{Year: math.NaN(), Month: 1, Product: "a", Quantity: 1},
		},
		"fractional month": {
			record: Record{Year: 2024, Month: 1.5, Product: "a", Quantity: 1},
		},
		"month out of range": {
			record: Record{Year: 2024, Month: 13, Product: "a", Quantity: 1},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			p, ok := td.record.Period()
			assert.Equal(t, td.ok, ok)
			assert.Equal(t, td.expected, p)
		})
	}
}

func TestReadCSV(t *testing.T) {
	in := "\ufeffTahun,Bulan,Nama Item,total_jumlah\n" +
		"2024,1,Kopi,10\n" +
		"2024, 2,Kopi,abc\n" +
		"2024,3,Teh,\n"

	tbl, err := ReadCSV(strings.NewReader(in))
	require.Nil(t, err)
	assert.Equal(t, []string{"Tahun", "Bulan", "Nama Item", "total_jumlah"}, tbl.Header)
	require.Len(t, tbl.Rows, 3)

	records, err := tbl.Records(nil)
	require.Nil(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, NewRecord(2024, time.January, "Kopi", 10), records[0])
	assert.Equal(t, 2.0, records[1].Month)
	assert.True(t, math.IsNaN(records[1].Quantity))
	assert.True(t, math.IsNaN(records[2].Quantity))
	assert.Equal(t, "Teh", records[2].Product)
}

func TestReadCSVShortRow(t *testing.T) {
	in := "Tahun,Bulan,Nama Item,total_jumlah\n" +
		"2024,1,Kopi\n" +
		"2024,2,Kopi,5\n"

	tbl, err := ReadCSV(strings.NewReader(in))
	require.Nil(t, err)
	require.Len(t, tbl.Rows, 2)

	records, report, err := NewValidator(nil).ValidateTable(tbl, nil)
	require.Nil(t, err)
	require.Len(t, records, 2)
	assert.True(t, math.IsNaN(records[0].Quantity))
	assert.Equal(t, 5.0, records[1].Quantity)
	assert.True(t, report.HasWarning(WarningMissingValues))
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrSchema)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestReadCSVFile(t *testing.T) {
	_, err := ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrDataUnavailable)

	path := filepath.Join(t.TempDir(), "data.csv")
	require.Nil(t, os.WriteFile(path, []byte("Tahun,Bulan,Nama Item,total_jumlah\n2024,1,Kopi,10\n"), 0o644))

	tbl, err := ReadCSVFile(path)
	require.Nil(t, err)
	assert.Len(t, tbl.Rows, 1)
}

func TestRecordsCustomColumns(t *testing.T) {
	tbl := &Table{
		Header: []string{"qty", "product", "yr", "mo"},
		Rows:   [][]string{{"5", "a", "2020", "7"}},
	}
	cols := &Columns{Year: "yr", Month: "mo", Product: "product", Quantity: "qty"}

	records, err := tbl.Records(cols)
	require.Nil(t, err)
	assert.Equal(t, []Record{NewRecord(2020, time.July, "a", 5)}, records)
}

func TestRecordsMissingColumns(t *testing.T) {
	tbl := &Table{
		Header: []string{"Tahun", "Bulan", "Nama Item"},
		Rows:   [][]string{{"2024", "1", "Kopi"}},
	}
	records, err := tbl.Records(nil)
	assert.Nil(t, records)
	assert.ErrorIs(t, err, ErrSchema)
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "total_jumlah")

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Len(t, schemaErr.Errs, 1)
}
