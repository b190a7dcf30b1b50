// Package eventlog records broadcast events as a JSON-Lines transcript.
package eventlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/computer-agent/backend/internal/model"
)

// Entry is one line of a transcript: the offset in seconds since the log was
// opened and the event itself.
type Entry struct {
	Offset float64     `json:"offset"`
	Event  model.Event `json:"event"`
}

// Logger writes a session's event transcript. Writes are best-effort; callers
// are expected to ignore errors rather than fail a broadcast.
type Logger struct {
	writer    io.Writer
	file      *os.File // only set if we own the file
	startTime time.Time
	mu        sync.Mutex
}

// New creates a Logger that writes to the given file path.
func New(filePath string) (*Logger, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript file: %w", err)
	}

	return &Logger{
		writer:    file,
		file:      file,
		startTime: time.Now(),
	}, nil
}

// NewWithWriter creates a Logger that writes to the given writer.
// This is useful for testing.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{
		writer:    w,
		startTime: time.Now(),
	}
}

// Write appends one event line to the transcript.
func (l *Logger) Write(ev model.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Offset: time.Since(l.startTime).Seconds(),
		Event:  ev,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if _, err := l.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}

	return nil
}

// Close closes the transcript file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// StartTime returns the time the transcript was opened.
func (l *Logger) StartTime() time.Time {
	return l.startTime
}
