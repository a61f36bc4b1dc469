package feature

import (
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-salesforecaster/salesdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestVectorValues(t *testing.T) {
	v := CalendarVector(salesdata.NewPeriod(2024, time.December))
	v.Lag1, v.Lag2, v.Lag3 = 3, 2, 1
	v.MA3, v.MA6, v.Diff1 = 2, 1.5, 1

	values := v.Values()
	require.Len(t, values, NumFeatures)
	assert.Equal(t, []float64{2024, 12, 4, 0, 1, 3, 2, 1, 2, 1.5, 1}, values)

	fromValues, err := NewVector(values)
	require.Nil(t, err)
	assert.Equal(t, v, fromValues)

	_, err = NewVector(values[:3])
	assert.ErrorIs(t, err, ErrVectorLen)

	for i, label := range Columns() {
		val, exists := v.Get(label)
		require.True(t, exists, label)
		assert.Equal(t, values[i], val, label)
	}
	_, exists := v.Get("lag_4")
	assert.False(t, exists)

	assert.False(t, v.HasMissing())
	v.MA6 = math.NaN()
	assert.True(t, v.HasMissing())
}

func TestLabels(t *testing.T) {
	labels := CanonicalLabels()
	assert.Equal(t, NumFeatures, labels.Len())
	assert.Equal(t, Columns(), labels.Labels())

	idx, exists := labels.Index(LabelDiff1)
	assert.True(t, exists)
	assert.Equal(t, 10, idx)

	idx, exists = labels.Index("unknown")
	assert.False(t, exists)
	assert.Equal(t, -1, idx)
}

func TestTableSeeds(t *testing.T) {
	jan := salesdata.NewPeriod(2024, time.January)
	feb := salesdata.NewPeriod(2024, time.February)
	tbl := &Table{
		Rows: []Row{
			{Product: "b", Period: feb, Quantity: 1},
			{Product: "a", Period: feb, Quantity: 2},
			{Product: "a", Period: jan, Quantity: 3},
			{Product: "b", Period: feb, Quantity: 4},
			{Product: "b", Period: jan, Quantity: 5},
		},
	}

	seeds := tbl.Seeds()
	require.Len(t, seeds, 2)
	assert.Equal(t, "a", seeds[0].Product)
	assert.Equal(t, 2.0, seeds[0].Quantity)
	assert.Equal(t, "b", seeds[1].Product)
	assert.Equal(t, 4.0, seeds[1].Quantity)

	var empty *Table
	assert.Nil(t, empty.Seeds())
	assert.Equal(t, 0, empty.Len())
}

func TestTableComplete(t *testing.T) {
	p := salesdata.NewPeriod(2024, time.January)
	tbl := &Table{
		Rows: []Row{
			{Product: "a", Period: p, Quantity: 1, Vector: CalendarVector(p)},
			{Product: "a", Period: p, Quantity: math.NaN(), Vector: CalendarVector(p)},
			{Product: "a", Period: p, Quantity: 2, Vector: Vector{Lag1: math.NaN()}},
		},
	}
	complete := tbl.Complete()
	require.Len(t, complete, 1)
	assert.Equal(t, 1.0, complete[0].Quantity)
}

func TestTableMatrix(t *testing.T) {
	records := []salesdata.Record{
		salesdata.NewRecord(2024, time.January, "a", 10),
		salesdata.NewRecord(2024, time.February, "a", 20),
	}
	tbl, _, err := BuildRecords(records, nil)
	require.Nil(t, err)

	x := tbl.Matrix()
	m, n := x.Dims()
	assert.Equal(t, 2, m)
	assert.Equal(t, NumFeatures, n)
	assert.Equal(t, tbl.Rows[1].Values(), mat.Row(nil, 1, x))
	assert.Equal(t, []float64{10, 20}, tbl.Targets())

	assert.Nil(t, Matrix(nil))
}
