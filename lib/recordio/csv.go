package recordio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"counciltax/lib/counciltax"
)

// CSVWriter streams records to csv. The header is written once on creation
// and every record is flushed as soon as it is written, so an interrupted
// run still leaves a valid file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	schema counciltax.Schema
	rows   int
}

// CreateCSV truncates (or creates) path and writes the header.
func CreateCSV(path string, schema counciltax.Schema) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := newCSVWriter(f, schema)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.file = f
	return w, nil
}

// NewCSVWriter writes to an arbitrary writer, Close does not close it.
func NewCSVWriter(out io.Writer, schema counciltax.Schema) (*CSVWriter, error) {
	return newCSVWriter(out, schema)
}

func newCSVWriter(out io.Writer, schema counciltax.Schema) (*CSVWriter, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("csv schema is empty")
	}
	w := &CSVWriter{
		writer: csv.NewWriter(out),
		schema: schema,
	}
	err := w.writer.Write(schema)
	if err != nil {
		return nil, err
	}
	w.writer.Flush()
	return w, w.writer.Error()
}

func (w *CSVWriter) WriteRecord(_ context.Context, record counciltax.Record) error {
	err := w.writer.Write(record.Values(w.schema))
	if err != nil {
		return err
	}
	w.writer.Flush()
	err = w.writer.Error()
	if err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows is the number of data rows written so far.
func (w *CSVWriter) Rows() int {
	return w.rows
}

func (w *CSVWriter) Close() error {
	w.writer.Flush()
	err := w.writer.Error()
	if w.file == nil {
		return err
	}
	return errors.Join(err, w.file.Close())
}
