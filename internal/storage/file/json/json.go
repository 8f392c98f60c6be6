// Package json is a file-backed artifact archive, one json blob per key.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/edalab/edalab/internal/storage"
)

// BlobStorage writes one json file per key under path/table.
type BlobStorage struct {
	path  string
	table string
}

// NewJsonBlob creates a blob archive for the given table.
// table groups artifacts with the same shape, e.g. "sweep" or "evaluation".
func NewJsonBlob(table string) *BlobStorage {
	return &BlobStorage{
		table: table,
		path:  storage.DefaultDir,
	}
}

// WithPath overrides the archive root, mostly for tests.
func (s *BlobStorage) WithPath(path string) *BlobStorage {
	s.path = path
	return s
}

func (s BlobStorage) Store(k storage.Key, value interface{}) error {
	p := filepath.Join(s.path, s.table)
	if err := save(p, k.Path(), value); err != nil {
		return err
	}
	log.Debug().Str("path", p).Str("file", k.Path()).Msg("stored json blob")
	return nil
}

func (s BlobStorage) Load(k storage.Key, value interface{}) error {
	return load(filepath.Join(s.path, s.table), k.Path(), value)
}

// save marshals the value into path/name.json.
func save(filePath string, fileName string, value interface{}) error {
	info, err := os.Stat(filePath)
	if err != nil {
		if err := os.MkdirAll(filePath, os.ModePerm); err != nil {
			return fmt.Errorf("could not make dir %s: %w", filePath, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("archive path is not a directory: %s", filePath)
	}

	p := filepath.Join(filePath, fmt.Sprintf("%s.json", fileName))
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal value for '%s': %w", p, err)
	}
	if err := os.WriteFile(p, b, 0644); err != nil {
		return fmt.Errorf("could not write file '%s': %w", p, err)
	}
	return nil
}

// load reads path/name.json into the value.
func load(filePath string, fileName string, value interface{}) error {
	p := filepath.Join(filePath, fmt.Sprintf("%s.json", fileName))
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no blob at '%s': %w", p, storage.NotFoundErr)
		}
		return fmt.Errorf("could not read '%s': %w", p, storage.CouldNotLoadErr)
	}
	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("could not unmarshal '%s': %w", p, storage.CouldNotLoadErr)
	}
	return nil
}
