// Package store persists one snapshot file per exchange.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"cryptorewards-backend/internal/components/assert"
	"cryptorewards-backend/internal/components/telemetry"
	"cryptorewards-backend/internal/rewards"
)

const (
	report_store_save = "store.save"
	report_store_list = "store.list"
)

var ErrNotFound = errors.New("snapshot not found")

// PersistenceError is a failed write, the previous snapshot file is left as
// it was.
type PersistenceError struct {
	ID  string
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist snapshot '%s': %s: %v", e.ID, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

var validID = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

type Store struct {
	dir string
	tel telemetry.API
}

func New(dir string, tel telemetry.API) (*Store, error) {
	assert.NotEmptyStr(dir, "data dir")
	assert.NotNil(tel)

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{
		dir: dir,
		tel: telemetry.NewScopedAPI("store", tel),
	}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file a snapshot id is stored in.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, strings.ToLower(id)+".json")
}

func encode(snapshot rewards.ExchangeSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(snapshot)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save replaces the snapshot of id. The snapshot is written to a temporary
// file in the same directory and renamed over the old one, readers see
// either the old or the new file.
func (s *Store) Save(id string, snapshot rewards.ExchangeSnapshot) error {
	id = strings.ToLower(id)
	fail := func(op string, err error) error {
		perr := &PersistenceError{ID: id, Op: op, Err: err}
		s.tel.ReportBroken(report_store_save, perr)
		return perr
	}

	if !validID.MatchString(id) {
		return fail("validate id", fmt.Errorf("invalid id '%s'", id))
	}
	data, err := encode(snapshot)
	if err != nil {
		return fail("encode", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+id+"-*.tmp")
	if err != nil {
		return fail("create temp", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	_, err = tmp.Write(data)
	if err != nil {
		cleanup()
		return fail("write", err)
	}
	err = tmp.Sync()
	if err != nil {
		cleanup()
		return fail("sync", err)
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmpName)
		return fail("close", err)
	}
	err = os.Chmod(tmpName, 0644)
	if err != nil {
		os.Remove(tmpName)
		return fail("chmod", err)
	}
	err = os.Rename(tmpName, s.Path(id))
	if err != nil {
		os.Remove(tmpName)
		return fail("rename", err)
	}
	return nil
}

func (s *Store) read(path string) (rewards.ExchangeSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rewards.ExchangeSnapshot{}, err
	}
	var snapshot rewards.ExchangeSnapshot
	err = json.Unmarshal(data, &snapshot)
	if err != nil {
		return rewards.ExchangeSnapshot{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return snapshot, nil
}

// Get returns the snapshot of id or ErrNotFound.
func (s *Store) Get(id string) (rewards.ExchangeSnapshot, error) {
	id = strings.ToLower(id)
	if !validID.MatchString(id) {
		return rewards.ExchangeSnapshot{}, fmt.Errorf("%w: '%s'", ErrNotFound, id)
	}
	snapshot, err := s.read(s.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return rewards.ExchangeSnapshot{}, fmt.Errorf("%w: '%s'", ErrNotFound, id)
	}
	if err != nil {
		return rewards.ExchangeSnapshot{}, err
	}
	return snapshot, nil
}

// IDs returns the ids of every stored snapshot, sorted.
func (s *Store) IDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if !validID.MatchString(id) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// List returns every readable snapshot, sorted by id. Unreadable files are
// reported and skipped.
func (s *Store) List() ([]rewards.ExchangeSnapshot, error) {
	ids, err := s.IDs()
	if err != nil {
		return nil, err
	}
	snapshots := []rewards.ExchangeSnapshot{}
	for _, id := range ids {
		snapshot, err := s.read(s.Path(id))
		if err != nil {
			s.tel.ReportWarning(report_store_list, err, id)
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}
