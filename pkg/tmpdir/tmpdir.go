// Package tmpdir provides scoped temporary directories that are removed
// on every exit path.
package tmpdir

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Dir is a temporary directory that exists until Cleanup is called.
type Dir struct {
	path string
	once sync.Once
	err  error
}

// New creates a uniquely named directory under the system temporary root.
func New() (*Dir, error) {
	path, err := os.MkdirTemp("", "tmpdir-"+uuid.NewString()+"-")
	if err != nil {
		return nil, fmt.Errorf("tmpdir: create: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string { return d.path }

// Cleanup removes the directory tree. It is idempotent; repeated calls
// return the first result.
func (d *Dir) Cleanup() error {
	d.once.Do(func() {
		d.err = os.RemoveAll(d.path)
	})
	return d.err
}

// With runs fn against a fresh temporary directory and removes the tree
// afterwards, whether fn returns normally, fails, or panics. A removal
// failure is reported only when fn itself succeeded.
func With(fn func(path string) error) error {
	d, err := New()
	if err != nil {
		return err
	}
	defer d.Cleanup()
	if err := fn(d.path); err != nil {
		return err
	}
	return d.Cleanup()
}
