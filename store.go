package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/txtar"
)

const (
	inputExt  = ".in"
	goldenExt = ".out"
)

// fixtureStore gives access to the fixtures of one suite.
type fixtureStore interface {
	// fixtures returns the fixture ids, sorted.
	fixtures() ([]string, error)
	// inputPath is the file handed to the compiler.
	inputPath(id string) string
	readGolden(id string) ([]byte, error)
	writeGolden(id string, data []byte) error
	Close() error
}

// openStore picks the backend from the suite root: a path ending in .txtar
// is read as an archive, anything else as a directory.
func openStore(root string) (fixtureStore, error) {
	if strings.HasSuffix(root, ".txtar") {
		return openArchiveStore(root)
	}
	return &dirStore{root: root}, nil
}

// dirStore keeps fixtures as plain files in one directory.
type dirStore struct {
	root string
}

func (s *dirStore) fixtures() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("listing fixtures: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), inputExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), inputExt))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *dirStore) inputPath(id string) string {
	return filepath.Join(s.root, id+inputExt)
}

func (s *dirStore) goldenPath(id string) string {
	return filepath.Join(s.root, id+goldenExt)
}

func (s *dirStore) readGolden(id string) ([]byte, error) {
	data, err := os.ReadFile(s.goldenPath(id))
	if err != nil {
		return nil, fmt.Errorf("reading golden file: %w", err)
	}
	return data, nil
}

func (s *dirStore) writeGolden(id string, data []byte) error {
	if err := os.WriteFile(s.goldenPath(id), data, 0644); err != nil {
		return fmt.Errorf("writing golden file: %w", err)
	}
	return nil
}

func (s *dirStore) Close() error { return nil }

// archiveStore keeps fixtures as members of a txtar archive. Inputs are
// extracted to a temporary directory for the compiler; updated goldens are
// written back to the archive on Close.
type archiveStore struct {
	path    string
	archive *txtar.Archive
	members map[string]int // member name -> index in archive.Files
	tmpDir  string
	dirty   bool
}

func openArchiveStore(path string) (*archiveStore, error) {
	archive, err := txtar.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture archive: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "harness-fixtures-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	s := &archiveStore{
		path:    path,
		archive: archive,
		members: make(map[string]int),
		tmpDir:  tmpDir,
	}
	for i, f := range archive.Files {
		if strings.Contains(f.Name, "/") {
			continue
		}
		s.members[f.Name] = i
		if !strings.HasSuffix(f.Name, inputExt) {
			continue
		}
		if err := os.WriteFile(filepath.Join(tmpDir, f.Name), f.Data, 0644); err != nil {
			os.RemoveAll(tmpDir)
			return nil, fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return s, nil
}

func (s *archiveStore) fixtures() ([]string, error) {
	var ids []string
	for name := range s.members {
		if strings.HasSuffix(name, inputExt) {
			ids = append(ids, strings.TrimSuffix(name, inputExt))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *archiveStore) inputPath(id string) string {
	return filepath.Join(s.tmpDir, id+inputExt)
}

func (s *archiveStore) readGolden(id string) ([]byte, error) {
	i, ok := s.members[id+goldenExt]
	if !ok {
		return nil, fmt.Errorf("reading golden file: %s: %s: %w", s.path, id+goldenExt, fs.ErrNotExist)
	}
	return s.archive.Files[i].Data, nil
}

// writeGolden refuses output without a final newline: txtar would append
// one, and the stored golden could then never match again.
func (s *archiveStore) writeGolden(id string, data []byte) error {
	name := id + goldenExt
	if len(data) > 0 && data[len(data)-1] != '\n' {
		return fmt.Errorf("writing golden file: %s: %s: output has no trailing newline, use a directory root for this suite", s.path, name)
	}
	if i, ok := s.members[name]; ok {
		s.archive.Files[i].Data = data
	} else {
		s.archive.Files = append(s.archive.Files, txtar.File{Name: name, Data: data})
		s.members[name] = len(s.archive.Files) - 1
	}
	s.dirty = true
	return nil
}

// Close writes the archive back if any golden changed and removes the
// extracted inputs.
func (s *archiveStore) Close() error {
	defer os.RemoveAll(s.tmpDir)
	if !s.dirty {
		return nil
	}
	if err := os.WriteFile(s.path, txtar.Format(s.archive), 0644); err != nil {
		return fmt.Errorf("writing fixture archive: %w", err)
	}
	s.dirty = false
	return nil
}
