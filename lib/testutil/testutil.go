package testutil

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"counciltax/lib/telemetry"

	_ "modernc.org/sqlite"
)

type DBParams struct {
	Name string
	// if unspecified, it will skip applying a schema
	Schema string
	// if unspecified, it will use `:memory:`
	Path string
}

// SetupDB opens a sqlite database with telemetry set up for the test, the
// database is closed when the test ends.
func SetupDB(t testing.TB, params DBParams) *sql.DB {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))
	t.Cleanup(cleanup)

	dbpath := ":memory:"
	if params.Path != "" {
		dbpath = params.Path
	}
	sqlite, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	// every connection to :memory: is a separate database
	sqlite.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlite.Close()
	})

	if params.Schema == "" {
		return sqlite
	}
	_, err = sqlite.Exec(params.Schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatal(err)
	}
	return sqlite
}
