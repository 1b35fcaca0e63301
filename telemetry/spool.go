package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Spool is a store-and-forward queue for telemetry events. Events recorded
// while offline accumulate here until a flush delivers them.
type Spool struct {
	mu       sync.Mutex
	filePath string
	events   []Event
}

// DefaultSpoolPath returns the spool location under the user's home directory
func DefaultSpoolPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tribe", "spool.json"), nil
}

// NewSpool opens the spool at path, creating the directory when needed.
// A missing or corrupt spool file starts empty.
func NewSpool(path string) (*Spool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}

	s := &Spool{filePath: path}
	s.load()
	return s, nil
}

func (s *Spool) load() {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return
	}
	s.events = events
}

// Append adds events to the queue and persists immediately
func (s *Spool) Append(events ...Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, events...)
	return s.saveLocked()
}

// Pending returns a copy of the queued events
func (s *Spool) Pending() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of queued events
func (s *Spool) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Replace swaps the queue for the given remainder and persists. A flush
// calls this with the events that failed to deliver.
func (s *Spool) Replace(events []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = events
	return s.saveLocked()
}

// Clear drops all queued events
func (s *Spool) Clear() error {
	return s.Replace(nil)
}

// Path returns the backing file location
func (s *Spool) Path() string {
	return s.filePath
}

func (s *Spool) saveLocked() error {
	events := s.events
	if events == nil {
		events = []Event{}
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0644)
}
