package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testMigration = `
-- +migrate Up
CREATE TABLE IF NOT EXISTS things (
    "id" integer NOT NULL PRIMARY KEY AUTOINCREMENT,
    "name" TEXT NOT NULL
);

-- +migrate Down
DROP TABLE things;
`

func TestMigrateUpDown(t *testing.T) {
	d := OpenTestDB()
	defer d.Close()

	require.NoError(t, d.MigrateUp(testMigration))
	_, err := d.Exec(`insert into things (name) values ('one')`)
	require.NoError(t, err)

	require.NoError(t, d.MigrateDown(testMigration))
	_, err = d.Exec(`insert into things (name) values ('two')`)
	require.Error(t, err)
}

func TestOpenTestDBIsolation(t *testing.T) {
	a := OpenTestDB()
	defer a.Close()
	b := OpenTestDB()
	defer b.Close()

	require.NoError(t, a.MigrateUp(testMigration))
	// b never saw the migration
	_, err := b.Exec(`insert into things (name) values ('three')`)
	require.Error(t, err)
}
