package salesdata

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeContains(t *testing.T) {
	jan := NewPeriod(2024, time.January)
	mar := NewPeriod(2024, time.March)

	testData := map[string]struct {
		rng      Range
		p        Period
		expected bool
	}{
		"open":            {p: jan, expected: true},
		"inside":          {rng: Range{From: jan, To: mar}, p: NewPeriod(2024, time.February), expected: true},
		"inclusive start": {rng: Range{From: jan, To: mar}, p: jan, expected: true},
		"inclusive end":   {rng: Range{From: jan, To: mar}, p: mar, expected: true},
		"before":          {rng: Range{From: jan}, p: NewPeriod(2023, time.December)},
		"after":           {rng: Range{To: mar}, p: NewPeriod(2024, time.April)},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, td.rng.Contains(td.p))
		})
	}
}

func TestDescribe(t *testing.T) {
	records := []Record{
		NewRecord(2023, time.December, "kopi", 100),
		NewRecord(2024, time.January, "kopi", 10),
		NewRecord(2024, time.February, "kopi", 20),
		NewRecord(2024, time.March, "kopi", 30),
		NewRecord(2024, time.January, "teh", 7),
		{Year: 2024, Month: 2, Product: "teh", Quantity: math.NaN()},
		NewRecord(2024, time.February, "gula", 5),
	}
	rng := Range{From: NewPeriod(2024, time.January), To: NewPeriod(2024, time.March)}

	testData := map[string]struct {
		products []string
		rng      Range
		expected []ProductStats
		err      error
	}{
		"selected products in range": {
			products: []string{"teh", "kopi"},
			rng:      rng,
			expected: []ProductStats{
				{Product: "kopi", Count: 3, Mean: 20, Std: 10, Min: 10, Max: 30},
				{Product: "teh", Count: 1, Mean: 7, Min: 7, Max: 7},
			},
		},
		"every product": {
			rng: Range{From: NewPeriod(2024, time.February)},
			expected: []ProductStats{
				{Product: "gula", Count: 1, Mean: 5, Min: 5, Max: 5},
				{Product: "kopi", Count: 2, Mean: 25, Std: math.Sqrt(50), Min: 20, Max: 30},
				{Product: "teh"},
			},
		},
		"nothing in range": {
			products: []string{"gula"},
			rng:      Range{To: NewPeriod(2024, time.January)},
			expected: []ProductStats{},
		},
		"reversed range": {
			rng: Range{From: NewPeriod(2024, time.March), To: NewPeriod(2024, time.January)},
			err: ErrInvalidRange,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Describe(records, td.products, td.rng)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			require.Len(t, res, len(td.expected))
			for i, exp := range td.expected {
				assert.Equal(t, exp.Product, res[i].Product)
				assert.Equal(t, exp.Count, res[i].Count)
				assert.InDelta(t, exp.Mean, res[i].Mean, 1e-9)
				assert.InDelta(t, exp.Std, res[i].Std, 1e-9)
				assert.Equal(t, exp.Min, res[i].Min)
				assert.Equal(t, exp.Max, res[i].Max)
			}
		})
	}
}
