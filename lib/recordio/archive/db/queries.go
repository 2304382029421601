package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Run struct {
	ID         int64
	Source     string
	Authority  string
	YearCode   string
	OutputPath string
	StartedAt  int64
	FinishedAt sql.NullInt64
	RowCount   int64
}

type Charge struct {
	RunID      int64
	RowIndex   int64
	Entity     string
	Council    string
	ColumnName string
	Value      string
}

const createRun = `insert into runs (source, authority, year_code, output_path, started_at)
values (?, ?, ?, ?, ?)
returning id`

type CreateRunParams struct {
	Source     string
	Authority  string
	YearCode   string
	OutputPath string
	StartedAt  int64
}

func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createRun,
		arg.Source,
		arg.Authority,
		arg.YearCode,
		arg.OutputPath,
		arg.StartedAt,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const finishRun = `update runs set finished_at = ?, row_count = ? where id = ?`

type FinishRunParams struct {
	FinishedAt int64
	RowCount   int64
	ID         int64
}

func (q *Queries) FinishRun(ctx context.Context, arg FinishRunParams) error {
	_, err := q.db.ExecContext(ctx, finishRun, arg.FinishedAt, arg.RowCount, arg.ID)
	return err
}

const createCharge = `insert into charges (run_id, row_index, entity, council, column_name, value)
values (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateCharge(ctx context.Context, arg Charge) error {
	_, err := q.db.ExecContext(ctx, createCharge,
		arg.RunID,
		arg.RowIndex,
		arg.Entity,
		arg.Council,
		arg.ColumnName,
		arg.Value,
	)
	return err
}

const listRuns = `select id, source, authority, year_code, output_path, started_at, finished_at, row_count
from runs
order by id desc
limit ?`

func (q *Queries) ListRuns(ctx context.Context, limit int64) ([]Run, error) {
	rows, err := q.db.QueryContext(ctx, listRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Run
	for rows.Next() {
		var i Run
		if err := rows.Scan(
			&i.ID,
			&i.Source,
			&i.Authority,
			&i.YearCode,
			&i.OutputPath,
			&i.StartedAt,
			&i.FinishedAt,
			&i.RowCount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCharges = `select run_id, row_index, entity, council, column_name, value
from charges
where run_id = ?
order by row_index, rowid`

func (q *Queries) GetCharges(ctx context.Context, runID int64) ([]Charge, error) {
	rows, err := q.db.QueryContext(ctx, getCharges, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Charge
	for rows.Next() {
		var i Charge
		if err := rows.Scan(
			&i.RunID,
			&i.RowIndex,
			&i.Entity,
			&i.Council,
			&i.ColumnName,
			&i.Value,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
