package configlibsql

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Struct points at either a local sqlite file or a remote libsql database.
// A file value of ":memory:" opens an in-memory database.
type Struct struct {
	File      string `json:"file" env:"FILE"`
	Url       string `json:"url" env:"URL"`
	AuthToken string `json:"auth_token" env:"AUTH_TOKEN"`
}

func (config Struct) Empty() bool {
	return config.File == "" && config.Url == ""
}

// FromTarget builds a config from a single cli value, urls go to libsql and
// everything else is treated as a sqlite file path.
func FromTarget(target string) Struct {
	if strings.HasPrefix(target, "libsql://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "http://") {
		return Struct{Url: target}
	}
	return Struct{File: target}
}

// OpenDB opens the database and applies the given schema.
func (config Struct) OpenDB(schema string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch {
	case config.Url != "":
		db, err = openRemote(config.Url, config.AuthToken)
	case config.File != "":
		db, err = openFile(config.File)
	default:
		return nil, fmt.Errorf("a path was not specified")
	}
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

func openRemote(rawUrl, authToken string) (*sql.DB, error) {
	if authToken != "" {
		u, err := url.Parse(rawUrl)
		if err != nil {
			return nil, err
		}
		query := u.Query()
		query.Set("authToken", authToken)
		u.RawQuery = query.Encode()
		rawUrl = u.String()
	}
	return sql.Open("libsql", rawUrl)
}

func openFile(dbpath string) (*sql.DB, error) {
	if dbpath != ":memory:" {
		_, statErr := os.Stat(dbpath)
		if os.IsNotExist(statErr) {
			f, err := os.Create(dbpath)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	if dbpath != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}
