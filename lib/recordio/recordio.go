package recordio

import (
	"context"
	"errors"

	"counciltax/lib/counciltax"
)

// Sink receives finished records one at a time.
type Sink interface {
	WriteRecord(ctx context.Context, record counciltax.Record) error
	Close() error
}

// MultiSink writes every record to each sink in order, stopping at the first
// failure.
type MultiSink []Sink

func (m MultiSink) WriteRecord(ctx context.Context, record counciltax.Record) error {
	for _, s := range m {
		err := s.WriteRecord(ctx, record)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		err := s.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
