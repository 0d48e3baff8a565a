package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBackupCreateBeforeSave(t *testing.T) {
	dir := t.TempDir()
	bm, err := NewBackupManagerAt(filepath.Join(dir, "backups"))
	if err != nil {
		t.Fatalf("Failed to create backup manager: %v", err)
	}

	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("original\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)
	store.SetBackupManager(bm)
	if _, err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := store.Save("changed\n"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	backups, err := bm.FindBackupsFor(path)
	if err != nil {
		t.Fatalf("FindBackupsFor failed: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("Expected 1 backup, got %d", len(backups))
	}

	data, err := os.ReadFile(backups[0].FilePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original\n" {
		t.Errorf("backup content = %q, want the pre-save content", data)
	}
	if backups[0].OriginalName != "doc.txt" {
		t.Errorf("OriginalName = %q, want doc.txt", backups[0].OriginalName)
	}
}

func TestBackupCreateSkipsMissingFile(t *testing.T) {
	dir := t.TempDir()
	bm, err := NewBackupManagerAt(filepath.Join(dir, "backups"))
	if err != nil {
		t.Fatalf("Failed to create backup manager: %v", err)
	}

	if err := bm.Create(filepath.Join(dir, "never-written.txt")); err != nil {
		t.Errorf("Create on a missing file should be a no-op, got %v", err)
	}

	backups, err := bm.FindBackupsFor("never-written.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 0 {
		t.Errorf("Expected no backups, got %d", len(backups))
	}
}

func TestFindBackupsFiltersByName(t *testing.T) {
	dir := t.TempDir()
	bm, err := NewBackupManagerAt(dir)
	if err != nil {
		t.Fatal(err)
	}

	files := []string{
		"20250101_080000_left.txt.bak",
		"20250101_090000_right.txt.bak",
		"20250101_100000_left.txt.bak",
		"garbage.bak",
		"notes.txt",
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := bm.FindBackupsFor("/some/dir/left.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 {
		t.Fatalf("Expected 2 backups for left.txt, got %d", len(backups))
	}
	if !backups[0].Timestamp.Before(backups[1].Timestamp) {
		t.Error("backups should be sorted oldest first")
	}
}

func TestParseBackupFilename(t *testing.T) {
	md, err := parseBackupFilename("20251103_150405_report.txt.bak", "/backups/20251103_150405_report.txt.bak")
	if err != nil {
		t.Fatalf("parseBackupFilename failed: %v", err)
	}
	if md.OriginalName != "report.txt" {
		t.Errorf("OriginalName = %q, want report.txt", md.OriginalName)
	}
	if md.Timestamp.Hour() != 15 || md.Timestamp.Minute() != 4 {
		t.Errorf("Timestamp = %v, want 15:04:05", md.Timestamp)
	}

	if _, err := parseBackupFilename("short.bak", ""); err == nil {
		t.Error("expected error for a filename too short to parse")
	}
}

func TestIsBackupFileDetection(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{
			name:     "empty path",
			path:     "",
			expected: false,
		},
		{
			name:     "regular file",
			path:     "/tmp/report.txt",
			expected: false,
		},
		{
			name:     "file in the backup directory",
			path:     filepath.Join(getBackupDir(), "20251103_150405_report.txt.bak"),
			expected: true,
		},
		{
			name:     "backup-like name elsewhere",
			path:     "/tmp/backups/20251103_150405_report.txt.bak",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBackupFile(tt.path); got != tt.expected {
				t.Errorf("IsBackupFile(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}
