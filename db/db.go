package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3" // sqlite
	"go.uber.org/zap"
)

var logger = zap.NewExample().Sugar().Named("db")

const defaultDBFile = "videoworker.sqlite"

type DB struct {
	*sql.DB
	file string
}

// OpenDB opens sqlite database file.
func OpenDB(file string) *DB {
	if file == "" {
		file = defaultDBFile
	}
	logger.Infow("opening sqlite database", "file", file)

	stdDB, err := sql.Open("sqlite3", fmt.Sprintf("file:%v?_journal_mode=WAL", file))
	if err != nil {
		logger.Panic(err)
	}

	return &DB{stdDB, file}
}

var testDBSeq int64

// OpenTestDB opens an in-memory sqlite database for use in tests.
// Each call gets its own database. Shared cache keeps additional pooled
// connections pointed at the same memory region when a transaction is open.
func OpenTestDB() *DB {
	name := fmt.Sprintf("testdb%v", atomic.AddInt64(&testDBSeq, 1))
	stdDB, err := sql.Open("sqlite3", fmt.Sprintf("file:%v?mode=memory&cache=shared&_journal_mode=WAL", name))
	if err != nil {
		logger.Panic(err)
	}

	return &DB{DB: stdDB}
}

func (db *DB) MigrateUp(s string) error {
	logger.Infow("migrating up", "db", db.file)
	schemaBits := strings.Split(s, "-- +migrate Down")
	stmt, err := db.Prepare(schemaBits[0])
	if err != nil {
		return err
	}
	_, err = stmt.Exec()
	return err
}

func (db *DB) MigrateDown(s string) error {
	logger.Infow("migrating down", "db", db.file)
	schemaBits := strings.Split(s, "-- +migrate Down")
	stmt, err := db.Prepare(schemaBits[1])
	if err != nil {
		return err
	}
	_, err = stmt.Exec()
	return err
}

func (db *DB) MigrateUpFromFile(file string) error {
	s, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	return db.MigrateUp(string(s))
}
