package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// BackupManager keeps timestamped copies of compared files before a save
// overwrites them.
type BackupManager struct {
	backupDir string
}

// NewBackupManager creates a backup manager using the default directory.
func NewBackupManager() (*BackupManager, error) {
	return NewBackupManagerAt(getBackupDir())
}

// NewBackupManagerAt creates a backup manager rooted at dir.
func NewBackupManagerAt(dir string) (*BackupManager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	return &BackupManager{
		backupDir: dir,
	}, nil
}

// Create copies the current disk content of path into the backup directory.
// A file that does not exist yet has nothing to back up.
func (bm *BackupManager) Create(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read file for backup: %w", err)
	}

	backupPath := filepath.Join(bm.backupDir, bm.generateBackupFilename(filepath.Base(path)))
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	return nil
}

// generateBackupFilename creates a filename in the format: YYYYMMDD_HHMMSS_<name>.bak
func (bm *BackupManager) generateBackupFilename(name string) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.bak", timestamp, name)
}

// getBackupDir returns the path to the backup directory
func getBackupDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to /tmp if home directory cannot be determined
		return filepath.Join("/tmp", ".comparetui", "backups")
	}
	return filepath.Join(homeDir, ".local", "share", "comparetui", "backups")
}

// GetBackupDir is a public function to get the backup directory
func GetBackupDir() string {
	return getBackupDir()
}

// IsBackupFile reports whether path points into the backup directory. Backups
// are opened read-only so a comparison against an old version cannot clobber
// the archive.
func IsBackupFile(path string) bool {
	if path == "" {
		return false
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return false
	}
	backupDir, err := filepath.Abs(getBackupDir())
	if err != nil {
		return false
	}
	return dir == backupDir
}

// BackupMetadata holds parsed information about a backup file
type BackupMetadata struct {
	FilePath     string    // Full path to backup file
	Timestamp    time.Time // Parsed timestamp from filename
	OriginalName string    // Base name of the file the backup was taken from
}

// FindBackupsFor returns all backups taken from files named like
// originalPath, sorted chronologically.
func (bm *BackupManager) FindBackupsFor(originalPath string) ([]BackupMetadata, error) {
	entries, err := os.ReadDir(bm.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	searchName := filepath.Base(originalPath)

	var backups []BackupMetadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".bak") {
			continue
		}

		metadata, err := parseBackupFilename(entry.Name(), filepath.Join(bm.backupDir, entry.Name()))
		if err != nil {
			continue // Skip files that can't be parsed
		}

		if searchName != "" && metadata.OriginalName != searchName {
			continue
		}

		backups = append(backups, metadata)
	}

	sortBackupsByTimestamp(backups)
	return backups, nil
}

// parseBackupFilename extracts metadata from a backup filename
// Expected format: YYYYMMDD_HHMMSS_<name>.bak
func parseBackupFilename(filename string, fullPath string) (BackupMetadata, error) {
	// Min length: timestamp, separator, one name character, extension
	if len(filename) < 21 {
		return BackupMetadata{}, fmt.Errorf("filename too short")
	}

	timestampStr := filename[:15]
	timestamp, err := time.Parse("20060102_150405", timestampStr)
	if err != nil {
		return BackupMetadata{}, fmt.Errorf("invalid timestamp format: %w", err)
	}

	name := strings.TrimSuffix(filename[16:], ".bak")

	return BackupMetadata{
		FilePath:     fullPath,
		Timestamp:    timestamp,
		OriginalName: name,
	}, nil
}

// sortBackupsByTimestamp sorts backups chronologically (oldest first)
func sortBackupsByTimestamp(backups []BackupMetadata) {
	slices.SortFunc(backups, func(a, b BackupMetadata) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}
