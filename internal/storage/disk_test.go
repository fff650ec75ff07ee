package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()

	f1 := filepath.Join(dir, "f1.txt")
	if err := os.WriteFile(f1, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := DiskUsageBytes(f1)
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 {
		t.Errorf("single file: got %d bytes, want 5", got)
	}

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "a"), []byte("ab"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = DiskUsageBytes(sub, f1, "", filepath.Join(dir, "missing"))
	if err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("mixed paths: got %d bytes, want 7", got)
	}
}

func TestDatabaseFiles(t *testing.T) {
	if got := DatabaseFiles(InMemory); got != nil {
		t.Errorf("in-memory database has no files, got %v", got)
	}
	got := DatabaseFiles("/data/docs.db")
	want := []string{"/data/docs.db", "/data/docs.db-wal", "/data/docs.db-shm"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
