package database

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigration(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestListMigrationFiles_SortedSQLOnly(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "002_seed.sql")
	writeMigration(t, dir, "001_init.sql")
	writeMigration(t, dir, "notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "003_nested.sql"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := listMigrationFiles(dir)
	if err != nil {
		t.Fatalf("listMigrationFiles returned error: %v", err)
	}

	want := []string{"001_init.sql", "002_seed.sql"}
	if len(files) != len(want) {
		t.Fatalf("expected %v, got %v", want, files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("file[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestListMigrationFiles_MissingDir(t *testing.T) {
	if _, err := listMigrationFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
