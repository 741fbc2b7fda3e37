package migrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRun_appliesEmbeddedMigrations(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if err := Run(ctx, db); err != nil {
		t.Fatalf("Run() = %v; want nil", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 2 {
		t.Errorf("applied migrations = %d; want 2", n)
	}
	if _, err := db.Exec(`INSERT INTO calculations (kind, derate) VALUES ('takeoff', 'TO')`); err != nil {
		t.Errorf("calculations table not usable: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO calculations (kind) VALUES ('landing')`); err == nil {
		t.Error("CHECK constraint on kind not enforced")
	}
}

func TestRun_idempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := Run(ctx, db); err != nil {
			t.Fatalf("Run() #%d = %v; want nil", i+1, err)
		}
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 2 {
		t.Errorf("applied migrations = %d; want 2", n)
	}
}

func TestRunFS_ordersAndSkipsUnknownFiles(t *testing.T) {
	db := openMemory(t)
	fsys := fstest.MapFS{
		"m/0002_second.sql": {Data: []byte(`INSERT INTO steps (name) VALUES ('second');`)},
		"m/0001_first.sql":  {Data: []byte(`CREATE TABLE steps (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT);`)},
		"m/README.md":       {Data: []byte(`not a migration`)},
	}

	if err := runFS(context.Background(), db, fsys, "m"); err != nil {
		t.Fatalf("runFS() = %v; want nil", err)
	}
	var name string
	if err := db.QueryRow(`SELECT name FROM steps WHERE id = 1`).Scan(&name); err != nil {
		t.Fatalf("select: %v", err)
	}
	if name != "second" {
		t.Errorf("name = %q; want second", name)
	}
}

func TestRunFS_failedMigrationIsNotRecorded(t *testing.T) {
	db := openMemory(t)
	fsys := fstest.MapFS{
		"m/0001_broken.sql": {Data: []byte(`CREATE TABLE (`)},
	}

	if err := runFS(context.Background(), db, fsys, "m"); err == nil {
		t.Fatal("runFS() = nil; want error")
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 0 {
		t.Errorf("recorded migrations = %d; want 0", n)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		in          string
		wantVersion string
		wantName    string
		wantOK      bool
	}{
		{in: "0001_calculations.sql", wantVersion: "0001", wantName: "calculations", wantOK: true},
		{in: "001_short.sql", wantOK: false},
		{in: "0003_name.txt", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, n, ok := parseMigrationFilename(tt.in)
			if ok != tt.wantOK || v != tt.wantVersion || n != tt.wantName {
				t.Errorf("parseMigrationFilename(%q) = %q, %q, %v; want %q, %q, %v", tt.in, v, n, ok, tt.wantVersion, tt.wantName, tt.wantOK)
			}
		})
	}
}
