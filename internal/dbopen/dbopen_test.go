package dbopen

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func TestOpenAppliesPragmasAndSchema(t *testing.T) {
	db := OpenMemory(t, WithSchema(`CREATE TABLE t (id TEXT PRIMARY KEY)`))

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}

	if _, err := db.Exec(`INSERT INTO t (id) VALUES ('a')`); err != nil {
		t.Errorf("schema not applied: %v", err)
	}
}

func TestRunTxRollsBackOnError(t *testing.T) {
	db := OpenMemory(t, WithSchema(`CREATE TABLE t (id TEXT PRIMARY KEY)`))
	boom := errors.New("boom")

	err := RunTx(context.Background(), db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO t (id) VALUES ('a')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rows = %d, want 0 after rollback", n)
	}
}

func TestIsBusy(t *testing.T) {
	if IsBusy(nil) {
		t.Error("IsBusy(nil) = true")
	}
	if !IsBusy(errors.New("database is locked (5) (SQLITE_BUSY)")) {
		t.Error("busy error not recognised")
	}
	if IsBusy(errors.New("syntax error")) {
		t.Error("unrelated error flagged busy")
	}
}
