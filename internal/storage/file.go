package storage

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// LineEnding identifies the newline convention a file uses on disk. Buffers
// always hold "\n"-separated text; the store converts on load and save so a
// CRLF file round-trips unchanged.
type LineEnding int

const (
	EndingLF LineEnding = iota
	EndingCRLF
	EndingCR
)

func (e LineEnding) String() string {
	switch e {
	case EndingCRLF:
		return "CRLF"
	case EndingCR:
		return "CR"
	default:
		return "LF"
	}
}

// sequence returns the byte sequence written for one newline.
func (e LineEnding) sequence() string {
	switch e {
	case EndingCRLF:
		return "\r\n"
	case EndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// DetectLineEnding picks the dominant newline convention in data. Mixed files
// go with the majority; ties and files without newlines default to LF.
func DetectLineEnding(data []byte) LineEnding {
	var crlf, lf, cr int
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				crlf++
				i++
			} else {
				cr++
			}
		case '\n':
			lf++
		}
	}

	switch {
	case crlf > 0 && crlf >= lf && crlf >= cr:
		return EndingCRLF
	case cr > lf:
		return EndingCR
	default:
		return EndingLF
	}
}

// Normalize converts any mix of newline conventions in data to "\n".
func Normalize(data []byte) string {
	s := string(data)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// Denormalize converts normalized text back to the given newline convention.
func Denormalize(text string, ending LineEnding) []byte {
	if ending == EndingLF {
		return []byte(text)
	}
	return []byte(strings.ReplaceAll(text, "\n", ending.sequence()))
}

// FileStore handles plain text persistence for one compared file. Besides
// reading and writing it remembers the content as of the last load or save,
// so a buffer can be compared against what is on disk.
type FileStore struct {
	Path     string
	ReadOnly bool

	ending    LineEnding
	lastSaved string
	modTime   time.Time
	backups   *BackupManager
}

// NewFileStore creates a store for the given file path. Nothing is read until
// Load is called.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		Path:     path,
		ReadOnly: IsBackupFile(path),
		ending:   EndingLF,
	}
}

// SetBackupManager makes Save keep a timestamped copy of the previous content
// before overwriting.
func (s *FileStore) SetBackupManager(bm *BackupManager) {
	s.backups = bm
}

// Load reads the file, detects its newline convention and returns the text
// normalized to "\n". The returned text also becomes the last-saved snapshot.
func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	fi, err := os.Stat(s.Path)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}

	s.ending = DetectLineEnding(data)
	s.lastSaved = Normalize(data)
	s.modTime = fi.ModTime()
	if fi.Mode().Perm()&0o200 == 0 {
		s.ReadOnly = true
	} else if !IsBackupFile(s.Path) {
		s.ReadOnly = false
	}

	return s.lastSaved, nil
}

// Save writes normalized text back to disk in the file's original newline
// convention and updates the last-saved snapshot. When a backup manager is
// configured the previous disk content is backed up first.
func (s *FileStore) Save(text string) error {
	if s.ReadOnly {
		return fmt.Errorf("%s is read-only", s.Path)
	}

	if s.backups != nil {
		if err := s.backups.Create(s.Path); err != nil {
			return fmt.Errorf("failed to back up before save: %w", err)
		}
	}

	perm := os.FileMode(0o644)
	if fi, err := os.Stat(s.Path); err == nil {
		perm = fi.Mode().Perm()
	}

	if err := os.WriteFile(s.Path, Denormalize(text, s.ending), perm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.lastSaved = text
	if fi, err := os.Stat(s.Path); err == nil {
		s.modTime = fi.ModTime()
	}

	return nil
}

// LastSaved returns the normalized file content as of the last Load or Save.
// It is the baseline for comparing a buffer against its saved state.
func (s *FileStore) LastSaved() string {
	return s.lastSaved
}

// Ending returns the newline convention detected on the last Load.
func (s *FileStore) Ending() LineEnding {
	return s.ending
}

// ModifiedOnDisk reports whether the file changed on disk since the last Load
// or Save. A missing file counts as modified.
func (s *FileStore) ModifiedOnDisk() bool {
	fi, err := os.Stat(s.Path)
	if err != nil {
		return true
	}
	return fi.ModTime().After(s.modTime)
}
