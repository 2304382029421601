package configlibsql

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromTarget(t *testing.T) {
	require.Equal(t, Struct{Url: "libsql://archive.turso.io"}, FromTarget("libsql://archive.turso.io"))
	require.Equal(t, Struct{File: "archive.db"}, FromTarget("archive.db"))
	require.True(t, Struct{}.Empty())
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	db, err := Struct{File: path}.OpenDB(`create table if not exists t (id integer primary key);`)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("insert into t (id) values (1)")
	require.NoError(t, err)

	var count int
	err = db.QueryRow("select count(*) from t").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestOpenNothing(t *testing.T) {
	_, err := Struct{}.OpenDB("")
	require.Error(t, err)
}
