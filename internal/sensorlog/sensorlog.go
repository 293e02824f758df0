// Package sensorlog writes one text file per ingested sensor reading into
// a per-session directory and serves the listing back to the dashboard.
//
// Files are named sensor_YYYYMMDD_HHMMSS.txt (local time, one-second
// resolution); a second reading within the same second replaces the
// first. Each session gets its own directory so restarts never mix logs.
package sensorlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	dirPermissions  = 0750
	filePermissions = 0640

	filePrefix = "sensor_"
	fileSuffix = ".txt"

	// nameLayout is the timestamp part of a log filename.
	nameLayout = "20060102_150405"
)

var validName = regexp.MustCompile(`^sensor_\d{8}_\d{6}\.txt$`)

var (
	// ErrInvalidName is returned for names that are not sensor log files,
	// including anything that tries to leave the session directory.
	ErrInvalidName = errors.New("sensorlog: invalid log name")

	// ErrNotFound is returned when a well-formed log does not exist.
	ErrNotFound = errors.New("sensorlog: log not found")
)

// Dir is one session's log directory. Safe for concurrent use.
type Dir struct {
	path      string
	sessionID string
	mu        sync.Mutex
}

// NewSession creates root/session_<time>_<id> and returns it.
func NewSession(root string, now time.Time) (*Dir, error) {
	id := uuid.NewString()
	name := fmt.Sprintf("session_%s_%s", now.Format(nameLayout), id[:8])
	path := filepath.Join(root, name)

	if err := os.MkdirAll(path, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating session log directory: %w", err)
	}
	return &Dir{path: path, sessionID: id}, nil
}

// Path returns the session directory.
func (d *Dir) Path() string { return d.path }

// SessionID returns the session's UUID.
func (d *Dir) SessionID() string { return d.sessionID }

// FileName returns the log filename for a reading taken at t.
func FileName(t time.Time) string {
	return filePrefix + t.Format(nameLayout) + fileSuffix
}

// Write stores values as indented JSON in the file for t and returns the
// filename.
func (d *Dir) Write(t time.Time, values map[string]float64) (string, error) {
	body, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding sensor log: %w", err)
	}
	body = append(body, '\n')

	name := FileName(t)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.WriteFile(filepath.Join(d.path, name), body, filePermissions); err != nil {
		return "", fmt.Errorf("writing sensor log %s: %w", name, err)
	}
	return name, nil
}

// List returns log filenames, newest first. Files that do not look like
// sensor logs are skipped.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("listing sensor logs: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !validName.MatchString(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Read returns the contents of one log file.
func (d *Dir) Read(name string) ([]byte, error) {
	if !ValidName(name) {
		return nil, ErrInvalidName
	}

	data, err := os.ReadFile(filepath.Join(d.path, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading sensor log %s: %w", name, err)
	}
	return data, nil
}

// ValidName reports whether name is a bare sensor log filename.
func ValidName(name string) bool {
	return !strings.ContainsAny(name, `/\`) && validName.MatchString(name)
}
