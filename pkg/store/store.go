// Package store provides the YAML-file-backed snapshot store the CLI uses
// as its planning data source: staff directory, room directory, per-date
// roster, active pairings, and persisted assignment sets. The planning core
// never touches these files directly; it only sees the loaded snapshots.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/felixbrandt/saalplan/pkg/core/model"
)

// File names inside the data directory.
const (
	staffFile       = "staff.yaml"
	roomsFile       = "rooms.yaml"
	rosterFile      = "roster.yaml"
	pairingsFile    = "pairings.yaml"
	assignmentsFile = "assignments.yaml"
)

// FileStore loads snapshots from a data directory and caches them until
// invalidated. Missing files read as empty snapshots, since upstream data is
// not guaranteed fully populated.
type FileStore struct {
	dir string

	mu          sync.Mutex
	staff       []model.Staff
	rooms       []model.Room
	roster      map[string]map[string]model.RosterEntry
	pairings    []model.Pairing
	assignments map[string][]model.Assignment
	loaded      bool
}

// NewFileStore creates a store over the given data directory.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the data directory the store reads from.
func (s *FileStore) Dir() string {
	return s.dir
}

// Invalidate drops all cached snapshots so the next read reloads from disk.
// The interactive session calls this when the data directory changes.
func (s *FileStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
}

// StaffDirectory returns the staff snapshot.
func (s *FileStore) StaffDirectory(ctx context.Context) ([]model.Staff, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return s.staff, nil
}

// RoomDirectory returns the room snapshot.
func (s *FileStore) RoomDirectory(ctx context.Context) ([]model.Room, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return s.rooms, nil
}

// RosterFor returns the per-staff roster entries for a date (day.month.year
// form). Dates without a roster read as empty.
func (s *FileStore) RosterFor(ctx context.Context, date string) (map[string]model.RosterEntry, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	entries, ok := s.roster[date]
	if !ok {
		return map[string]model.RosterEntry{}, nil
	}
	return entries, nil
}

// ActivePairings returns the pairings with their active flag set.
func (s *FileStore) ActivePairings(ctx context.Context) ([]model.Pairing, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	active := make([]model.Pairing, 0, len(s.pairings))
	for _, pairing := range s.pairings {
		if pairing.Active {
			active = append(active, pairing)
		}
	}
	return active, nil
}

// AssignmentsFor returns the stored assignment set for a date.
func (s *FileStore) AssignmentsFor(ctx context.Context, date string) ([]model.Assignment, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	assignments, ok := s.assignments[date]
	if !ok {
		return []model.Assignment{}, nil
	}
	return assignments, nil
}

// SaveAssignments persists the assignment set for a date.
func (s *FileStore) SaveAssignments(ctx context.Context, date string, assignments []model.Assignment) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.assignments == nil {
		s.assignments = make(map[string][]model.Assignment)
	}
	s.assignments[date] = assignments

	return writeYAML(filepath.Join(s.dir, assignmentsFile), s.assignments)
}

// SaveStaff persists the full staff directory. Used by the preference
// learning step, which replaces whole staff records.
func (s *FileStore) SaveStaff(ctx context.Context, staff []model.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.staff = staff
	return writeYAML(filepath.Join(s.dir, staffFile), staff)
}

// ensureLoaded loads all snapshot files once, defaulting missing files to
// empty data.
func (s *FileStore) ensureLoaded() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}

	if err := readYAML(filepath.Join(s.dir, staffFile), &s.staff); err != nil {
		return err
	}
	if err := readYAML(filepath.Join(s.dir, roomsFile), &s.rooms); err != nil {
		return err
	}
	if err := readYAML(filepath.Join(s.dir, rosterFile), &s.roster); err != nil {
		return err
	}
	if err := readYAML(filepath.Join(s.dir, pairingsFile), &s.pairings); err != nil {
		return err
	}
	if err := readYAML(filepath.Join(s.dir, assignmentsFile), &s.assignments); err != nil {
		return err
	}

	if s.roster == nil {
		s.roster = map[string]map[string]model.RosterEntry{}
	}
	if s.assignments == nil {
		s.assignments = map[string][]model.Assignment{}
	}

	s.loaded = true
	return nil
}

// readYAML unmarshals a YAML file into out. A missing file leaves out at its
// zero value.
func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeYAML(path string, in interface{}) error {
	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
