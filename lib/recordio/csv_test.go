package recordio

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"counciltax/lib/counciltax"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriterDropsUnknownColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	schema := counciltax.CouncilLast()

	w, err := CreateCSV(path, schema)
	require.NoError(t, err)

	record := counciltax.NewRecord(counciltax.Entity{Name: "Adderbury", Authority: "Cherwell District Council"})
	record.Set("Band A (6/9)", "£1,520.33")
	record.Set("url", "https://www.cherwell.gov.uk/directory-record/1")
	record.Set("Location", "Adderbury")
	record.Set("Information", "Parish council precept included")
	require.NoError(t, w.WriteRecord(context.Background(), record))
	require.NoError(t, w.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	if diff := cmp.Diff([]string(schema), rows[0]); diff != "" {
		t.Fatal("header mismatch (-want +got):\n", diff)
	}
	expected := []string{"Adderbury", "£1,520.33", "", "", "", "", "", "", "", "Cherwell District Council"}
	if diff := cmp.Diff(expected, rows[1]); diff != "" {
		t.Fatal("row mismatch (-want +got):\n", diff)
	}
}

func TestCSVWriterHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := CreateCSV(path, counciltax.CouncilFirst())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 1)
	require.Equal(t, []string(counciltax.CouncilFirst()), rows[0])
}

func TestCSVWriterStreamsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := CreateCSV(path, counciltax.CouncilFirst())
	require.NoError(t, err)
	defer w.Close()

	for _, name := range []string{"Abingdon", "Appleford"} {
		err := w.WriteRecord(context.Background(), counciltax.NewRecord(counciltax.Entity{Name: name}))
		require.NoError(t, err)
	}

	// readable before Close
	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	require.Equal(t, 2, w.Rows())
}

func TestCSVWriterOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	write := func() {
		w, err := CreateCSV(path, counciltax.CouncilFirst())
		require.NoError(t, err)
		err = w.WriteRecord(context.Background(), counciltax.NewRecord(counciltax.Entity{Name: "Wantage"}))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	write()
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	write()
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	require.Equal(t, string(first), string(second))
	require.Len(t, readCSV(t, path), 2)
}

type failingSink struct {
	closed bool
}

func (f *failingSink) WriteRecord(context.Context, counciltax.Record) error {
	return errors.New("disk full")
}

func (f *failingSink) Close() error {
	f.closed = true
	return nil
}

func TestMultiSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := CreateCSV(path, counciltax.CouncilFirst())
	require.NoError(t, err)

	failing := &failingSink{}
	sink := MultiSink{w, failing}

	err = sink.WriteRecord(context.Background(), counciltax.NewRecord(counciltax.Entity{Name: "Didcot"}))
	require.EqualError(t, err, "disk full")
	require.NoError(t, sink.Close())
	require.True(t, failing.closed)
	require.Len(t, readCSV(t, path), 2)
}
