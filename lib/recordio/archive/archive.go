// Package archive keeps a history of every run and the cells it wrote in a
// sqlite or libsql database.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	configlibsql "counciltax/lib/configutil/libsql"
	"counciltax/lib/counciltax"
	"counciltax/lib/recordio/archive/db"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Archive struct {
	db  *sql.DB
	qry *db.Queries
}

func Open(config configlibsql.Struct) (*Archive, error) {
	database, err := config.OpenDB(db.Schema)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return New(database), nil
}

// New wraps a database that already has the archive schema applied.
func New(database *sql.DB) *Archive {
	return &Archive{
		db:  database,
		qry: db.New(database),
	}
}

func (a *Archive) Close() error {
	return a.db.Close()
}

type RunInfo struct {
	Source     string
	Authority  string
	YearCode   string
	OutputPath string
	StartedAt  time.Time
}

// BeginRun records the start of a run and returns the sink its records
// should be written to.
func (a *Archive) BeginRun(ctx context.Context, info RunInfo, schema counciltax.Schema) (*RunSink, error) {
	ctx, span := tracer.Start(ctx, "BeginRun")
	defer span.End()

	startedAt := info.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	id, err := a.qry.CreateRun(ctx, db.CreateRunParams{
		Source:     info.Source,
		Authority:  info.Authority,
		YearCode:   info.YearCode,
		OutputPath: info.OutputPath,
		StartedAt:  startedAt.Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int64("run_id", id))

	return &RunSink{
		archive: a,
		runId:   id,
		schema:  schema,
	}, nil
}

func (a *Archive) Runs(ctx context.Context, limit int) ([]db.Run, error) {
	return a.qry.ListRuns(ctx, int64(limit))
}

func (a *Archive) Charges(ctx context.Context, runId int64) ([]db.Charge, error) {
	return a.qry.GetCharges(ctx, runId)
}

// RunSink stores the schema columns of each record, one row per cell.
// Unknown keys are dropped the same way the csv writer drops them.
type RunSink struct {
	archive *Archive
	runId   int64
	schema  counciltax.Schema
	rows    int64
}

func (s *RunSink) RunId() int64 {
	return s.runId
}

func (s *RunSink) WriteRecord(ctx context.Context, record counciltax.Record) error {
	ctx, span := tracer.Start(ctx, "WriteRecord")
	defer span.End()

	tx, err := s.archive.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.archive.qry.WithTx(tx)

	entity := record.Get(counciltax.ColumnName)
	council := record.Get(counciltax.ColumnCouncil)
	for _, column := range s.schema {
		if column == counciltax.ColumnName || column == counciltax.ColumnCouncil {
			continue
		}
		if !record.Has(column) {
			continue
		}
		err := txqry.CreateCharge(ctx, db.Charge{
			RunID:      s.runId,
			RowIndex:   s.rows,
			Entity:     entity,
			Council:    council,
			ColumnName: column,
			Value:      record.Get(column),
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.rows++
	return nil
}

// Close marks the run as finished, it does not close the archive.
func (s *RunSink) Close() error {
	return s.archive.qry.FinishRun(context.Background(), db.FinishRunParams{
		FinishedAt: time.Now().Unix(),
		RowCount:   s.rows,
		ID:         s.runId,
	})
}
