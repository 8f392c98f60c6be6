// Package storage archives run artifacts, so a later run on the same
// dataset can be diffed against the previous one.
package storage

import (
	"errors"
	"fmt"
)

var (
	// DefaultDir is the root of the file-backed archive.
	DefaultDir = "run-archive"

	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key addresses one archived artifact of a dataset run.
type Key struct {
	Dataset string `json:"dataset"`
	Label   string `json:"label"`
}

func (k Key) Path() string {
	return fmt.Sprintf("%s_%s", k.Dataset, k.Label)
}

// Persistence stores and retrieves run artifacts by key.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}

// VoidStorage ignores all stores, for runs that should leave no archive.
type VoidStorage struct {
}

func NewVoidStorage() *VoidStorage {
	return &VoidStorage{}
}

func (d VoidStorage) Store(k Key, value interface{}) error {
	return nil
}

func (d VoidStorage) Load(k Key, value interface{}) error {
	return fmt.Errorf("not found '%v': %w", k, NotFoundErr)
}
