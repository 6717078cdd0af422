package dataset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var header = []string{"Date", "Hacker", "Team"}

func TestAggregatorKeepsPageOrder(t *testing.T) {
	agg := NewAggregator(header)
	agg.Add(1, []Row{{"d1", "h1", "t1"}, {"d2", "h2", "t2"}})
	agg.Add(2, nil)
	agg.Add(3, []Row{{"d3", "h3", "t3"}})

	ds, err := agg.Dataset()
	require.NoError(t, err)
	require.Equal(t, 3, agg.Pages())

	want := [][]string{
		{"Date", "Hacker", "Team"},
		{"d1", "h1", "t1"},
		{"d2", "h2", "t2"},
		{"d3", "h3", "t3"},
	}
	if diff := cmp.Diff(want, ds.Records()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregatorNoData(t *testing.T) {
	agg := NewAggregator(header)
	agg.Add(1, nil)
	agg.Add(2, []Row{})

	_, err := agg.Dataset()
	require.ErrorIs(t, err, ErrNoData)
}

func TestMismatched(t *testing.T) {
	ds := &Dataset{Header: header, Rows: []Row{{"a", "b", "c"}, {"a"}, {"a", "b", "c", "d"}}}
	require.Equal(t, []int{1, 2}, ds.Mismatched())
	require.True(t, ds.SameHeader([]string{"Date", "Hacker", "Team"}))
	require.False(t, ds.SameHeader([]string{"Hacker", "Date", "Team"}))
}

func TestObserveHeader(t *testing.T) {
	agg := NewAggregator(header)

	require.False(t, agg.ObserveHeader(1, nil))
	require.False(t, agg.ObserveHeader(1, []string{"date", "HACKER", "Team"}))
	require.True(t, agg.ObserveHeader(2, []string{"Date", "Attacker", "Team", "Country"}))
	require.Len(t, agg.Drift(), 1)
	require.Equal(t, 2, agg.Drift()[0].Page)
}

func TestCheckStrict(t *testing.T) {
	agg := NewAggregator(header)
	agg.Add(1, []Row{{"a", "b", "c"}})
	require.NoError(t, agg.CheckStrict())

	agg.Add(2, []Row{{"short"}})
	require.ErrorIs(t, agg.CheckStrict(), ErrSchemaDrift)

	drifted := NewAggregator(header)
	drifted.ObserveHeader(1, []string{"Other"})
	require.ErrorIs(t, drifted.CheckStrict(), ErrSchemaDrift)
}
